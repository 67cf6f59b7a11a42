package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/pdfchunk/internal/parser"
	"github.com/dgallion1/pdfchunk/internal/pipeline"
)

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	if s.orchestrator == nil {
		jsonError(w, http.StatusServiceUnavailable, "async jobs are disabled")
		return
	}

	filename, data, ok := s.readSingleUpload(w, r)
	if !ok {
		return
	}
	if !parser.IsSupportedExtension(parser.Detect(filename, data)) {
		jsonError(w, http.StatusBadRequest, fmt.Sprintf("%s: %s", parser.ErrUnsupportedFormat, filename))
		return
	}
	cfg, err := s.chunkConfig(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	job := pipeline.NewJob(filename, data, cfg)
	if err := s.orchestrator.Submit(job); err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, pipeline.ErrQueueFull) || errors.Is(err, pipeline.ErrStopped) {
			code = http.StatusServiceUnavailable
		}
		jsonError(w, code, err.Error())
		return
	}

	snap := job.Snapshot()
	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   snap.ID,
		"filename": snap.Filename,
		"status":   snap.Status,
		"poll_url": "/jobs/" + snap.ID,
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	if s.orchestrator == nil {
		jsonError(w, http.StatusServiceUnavailable, "async jobs are disabled")
		return
	}
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}
