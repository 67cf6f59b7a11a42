package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/pdfchunk/internal/chunker"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	assert.Equal(t, ContentHashHex(data), ContentHashHex(data))
	// SHA-256 of "hello world" is well-known.
	assert.Equal(t, "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9", ContentHashHex(data))
}

func TestContentHashHex_EmptyInput(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", ContentHashHex([]byte{}))
}

func TestNewJob(t *testing.T) {
	cfg := chunker.Config{WindowSize: 500, Overlap: 50}
	job := NewJob("report.pdf", []byte("hello world"), cfg)

	assert.Len(t, job.ID, 36)
	assert.Equal(t, StatusQueued, job.Status)
	assert.Equal(t, ContentHashHex([]byte("hello world")), job.ContentHash)

	req := job.request()
	assert.Equal(t, "report.pdf", req.Filename)
	assert.Equal(t, []byte("hello world"), req.Data)
	assert.Equal(t, cfg, req.ChunkConfig)

	assert.NotEqual(t, job.ID, NewJob("report.pdf", nil, cfg).ID)
}

func TestJob_StateTransitions(t *testing.T) {
	job := NewJob("a.txt", []byte("x"), chunker.Config{})

	for _, status := range []JobStatus{StatusExtracting, StatusChunking} {
		before := job.Snapshot().UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(status)

		snap := job.Snapshot()
		assert.Equal(t, status, snap.Status)
		assert.False(t, snap.Status.Terminal())
		assert.True(t, snap.UpdatedAt.After(before), "UpdatedAt should advance after SetStatus(%q)", status)
	}

	res := &Result{Success: true, Filename: "a.txt", TotalChunks: 1}
	job.Complete(res)

	snap := job.Snapshot()
	assert.Equal(t, StatusCompleted, snap.Status)
	assert.True(t, snap.Status.Terminal())
	assert.Same(t, res, snap.Result)
	assert.Empty(t, snap.Error)
	assert.Nil(t, job.request().Data)
}

func TestJob_Fail(t *testing.T) {
	job := NewJob("a.txt", []byte("x"), chunker.Config{})
	job.SetStatus(StatusExtracting)
	job.Fail("extract a.txt: boom")

	snap := job.Snapshot()
	assert.Equal(t, StatusFailed, snap.Status)
	assert.Equal(t, "extract a.txt: boom", snap.Error)
	assert.Nil(t, snap.Result)
	assert.Nil(t, job.request().Data)
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	require.NotNil(t, got)
	assert.Equal(t, "store-1", got.ID)
	assert.Equal(t, 1, store.Len())
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	assert.Nil(t, store.Get("nonexistent"))
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(time.Minute)

	stale := time.Now().Add(-2 * time.Minute)
	store.Put(&Job{ID: "old", Status: StatusCompleted, UpdatedAt: stale})
	store.Put(&Job{ID: "old-failed", Status: StatusFailed, UpdatedAt: stale})
	store.Put(&Job{ID: "new", Status: StatusCompleted, UpdatedAt: time.Now()})

	assert.Equal(t, 2, store.Cleanup())
	assert.Nil(t, store.Get("old"))
	assert.Nil(t, store.Get("old-failed"))
	assert.NotNil(t, store.Get("new"))
}

func TestJobStore_CleanupKeepsUnfinishedJobs(t *testing.T) {
	store := NewJobStore(time.Minute)
	stale := time.Now().Add(-2 * time.Minute)
	store.Put(&Job{ID: "queued", Status: StatusQueued, UpdatedAt: stale})
	store.Put(&Job{ID: "extracting", Status: StatusExtracting, UpdatedAt: stale})
	store.Put(&Job{ID: "chunking", Status: StatusChunking, UpdatedAt: stale})

	assert.Equal(t, 0, store.Cleanup())
	assert.Equal(t, 3, store.Len())
}

func TestJobStore_CleanupEmpty(t *testing.T) {
	store := NewJobStore(time.Hour)
	assert.Equal(t, 0, store.Cleanup())
}
