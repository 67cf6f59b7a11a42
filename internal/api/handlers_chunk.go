package api

import (
	"encoding/json"
	"net/http"

	"github.com/dgallion1/pdfchunk/internal/chunker"
	"github.com/dgallion1/pdfchunk/internal/document"
)

const maxChunkBody = 16 << 20

type chunkRequest struct {
	Text         string               `json:"text"`
	PageRanges   []document.PageRange `json:"page_ranges"`
	ChunkSize    int                  `json:"chunk_size"`
	ChunkOverlap *int                 `json:"chunk_overlap"`
}

type chunkResponse struct {
	TotalChunks int              `json:"total_chunks"`
	Chunks      []document.Chunk `json:"chunks"`
}

// handleChunk chunks caller-supplied text without any extraction.
// Unlike the upload endpoints an explicit chunk_overlap of 0 is honored.
func (s *Server) handleChunk(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxChunkBody)

	var req chunkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	cfg := s.processor.Defaults()
	if req.ChunkSize > 0 {
		cfg.WindowSize = req.ChunkSize
	}
	if req.ChunkOverlap != nil {
		cfg.Overlap = *req.ChunkOverlap
	}

	ch, err := chunker.New(cfg)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	chunks := ch.Chunk(req.Text, req.PageRanges)
	if chunks == nil {
		chunks = []document.Chunk{}
	}
	writeJSON(w, http.StatusOK, chunkResponse{TotalChunks: len(chunks), Chunks: chunks})
}
