package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveDocument(t *testing.T) {
	m := New(nil)
	m.ObserveDocument("pdf", OutcomeSuccess, 3, 20*time.Millisecond)
	m.ObserveDocument("pdf", OutcomeSuccess, 5, 30*time.Millisecond)
	m.ObserveDocument("docx", OutcomeFailure, 0, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.documents.WithLabelValues("pdf", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.documents.WithLabelValues("docx", OutcomeFailure)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))
}

func TestObserveDocument_NilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveDocument("pdf", OutcomeSuccess, 1, time.Millisecond)
	})
}

func TestHandler_ExposesCollectors(t *testing.T) {
	depth := 7
	m := New(func() int { return depth })
	m.ObserveDocument("txt", OutcomeSuccess, 1, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `pdfchunk_documents_processed_total{format="txt",outcome="success"} 1`)
	assert.Contains(t, string(body), "pdfchunk_job_queue_depth 7")
	assert.Contains(t, string(body), "pdfchunk_chunks_per_document_count 1")
}
