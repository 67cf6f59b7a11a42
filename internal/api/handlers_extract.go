package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/pdfchunk/internal/chunker"
	"github.com/dgallion1/pdfchunk/internal/parser"
	"github.com/dgallion1/pdfchunk/internal/pipeline"
)

const (
	multipartMemory = 32 << 20
	formOverhead    = 1 << 20
	maxBatchFiles   = 20
)

var errFileTooLarge = errors.New("file too large")

func (s *Server) handleExtractPDF(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := s.readSingleUpload(w, r)
	if !ok {
		return
	}
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") || !parser.IsPDF(data) {
		jsonError(w, http.StatusBadRequest, "File must be a PDF document")
		return
	}
	s.extract(w, r, filename, data, "Failed to process PDF")
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := s.readSingleUpload(w, r)
	if !ok {
		return
	}
	s.extract(w, r, filename, data, "Failed to process document")
}

func (s *Server) extract(w http.ResponseWriter, r *http.Request, filename string, data []byte, failure string) {
	cfg, err := s.chunkConfig(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.processor.Process(r.Context(), pipeline.Request{
		Filename:    filename,
		Data:        data,
		ChunkConfig: cfg,
	})
	if err != nil {
		code, detail := processError(err)
		if code == http.StatusInternalServerError {
			detail = failure + ": " + detail
		}
		jsonError(w, code, detail)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleExtractBatch(w http.ResponseWriter, r *http.Request) {
	if !s.parseMultipart(w, r, maxBatchFiles) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, http.StatusBadRequest, "at least one file is required")
		return
	}
	if len(files) > maxBatchFiles {
		jsonError(w, http.StatusBadRequest, fmt.Sprintf("at most %d files per batch", maxBatchFiles))
		return
	}

	cfg, err := s.chunkConfig(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Files that cannot be read are reported alongside the processed ones.
	reqs := make([]pipeline.Request, 0, len(files))
	var rejected []pipeline.BatchItem
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		data, err := s.readFile(fh)
		if err != nil {
			rejected = append(rejected, pipeline.BatchItem{Filename: filename, Error: s.readErrorDetail(err)})
			continue
		}
		reqs = append(reqs, pipeline.Request{Filename: filename, Data: data, ChunkConfig: cfg})
	}

	items := append(s.processor.ProcessBatch(r.Context(), reqs), rejected...)
	failed := 0
	for _, it := range items {
		if it.Error != "" {
			failed++
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_files": len(items),
		"failed":      failed,
		"results":     items,
	})
}

// readSingleUpload parses the form and returns the "file" part. On failure
// it has already written the error response.
func (s *Server) readSingleUpload(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	if !s.parseMultipart(w, r, 1) {
		return "", nil, false
	}
	defer r.MultipartForm.RemoveAll()

	_, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "file is required: "+err.Error())
		return "", nil, false
	}
	filename := sanitizeFilename(header.Filename)

	data, err := s.readFile(header)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, errFileTooLarge) {
			code = http.StatusBadRequest
		}
		jsonError(w, code, s.readErrorDetail(err))
		return "", nil, false
	}
	return filename, data, true
}

func (s *Server) parseMultipart(w http.ResponseWriter, r *http.Request, files int) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes()*int64(files)+formOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, http.StatusBadRequest, s.tooLargeDetail())
			return false
		}
		jsonError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return false
	}
	return true
}

func (s *Server) readFile(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > s.cfg.MaxUploadBytes() {
		return nil, errFileTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes()+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes() {
		return nil, errFileTooLarge
	}
	return data, nil
}

func (s *Server) readErrorDetail(err error) string {
	if errors.Is(err, errFileTooLarge) {
		return s.tooLargeDetail()
	}
	return err.Error()
}

func (s *Server) tooLargeDetail() string {
	return fmt.Sprintf("File size exceeds maximum allowed size of %dMB", s.cfg.MaxFileSizeMB)
}

// chunkConfig reads chunk_size and chunk_overlap. Missing or zero values
// take the configured defaults.
func (s *Server) chunkConfig(r *http.Request) (chunker.Config, error) {
	cfg := s.processor.Defaults()

	size, err := formInt(r, "chunk_size")
	if err != nil {
		return chunker.Config{}, err
	}
	if size > 0 {
		cfg.WindowSize = size
	}
	overlap, err := formInt(r, "chunk_overlap")
	if err != nil {
		return chunker.Config{}, err
	}
	if overlap > 0 {
		cfg.Overlap = overlap
	}

	if err := cfg.Validate(); err != nil {
		return chunker.Config{}, err
	}
	return cfg, nil
}

func formInt(r *http.Request, key string) (int, error) {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", key, v)
	}
	return n, nil
}

// processError maps a processing failure to a status code and detail.
func processError(err error) (int, string) {
	switch {
	case errors.Is(err, chunker.ErrInvalidConfiguration), errors.Is(err, parser.ErrUnsupportedFormat):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, err.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
