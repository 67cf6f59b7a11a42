package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/pdfchunk/internal/chunker"
)

// JobStatus represents the state of an async extraction job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusExtracting JobStatus = "extracting"
	StatusChunking   JobStatus = "chunking"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Terminal reports whether no further transitions follow.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job tracks the state of a single async extraction.
type Job struct {
	mu sync.Mutex

	ID          string
	Filename    string
	ContentHash string
	Status      JobStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Internal: not serialized.
	fileData    []byte
	chunkConfig chunker.Config
	result      *Result
	err         string
}

// NewJob creates a queued job with a fresh ID.
func NewJob(filename string, data []byte, cfg chunker.Config) *Job {
	now := time.Now()
	return &Job{
		ID:          uuid.NewString(),
		Filename:    filename,
		ContentHash: ContentHashHex(data),
		Status:      StatusQueued,
		CreatedAt:   now,
		UpdatedAt:   now,
		fileData:    data,
		chunkConfig: cfg,
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.UpdatedAt = time.Now()
}

// Complete stores the result and releases the upload bytes.
func (j *Job) Complete(res *Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = res
	j.fileData = nil
	j.Status = StatusCompleted
	j.UpdatedAt = time.Now()
}

// Fail records the error and releases the upload bytes.
func (j *Job) Fail(msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.err = msg
	j.fileData = nil
	j.Status = StatusFailed
	j.UpdatedAt = time.Now()
}

func (j *Job) request() Request {
	j.mu.Lock()
	defer j.mu.Unlock()
	return Request{Filename: j.Filename, Data: j.fileData, ChunkConfig: j.chunkConfig}
}

func (j *Job) state() (JobStatus, time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.Status, j.UpdatedAt
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	Filename    string    `json:"filename"`
	ContentHash string    `json:"content_sha256"`
	Status      JobStatus `json:"status"`
	Error       string    `json:"error,omitempty"`
	Result      *Result   `json:"result,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobSnapshot{
		ID:          j.ID,
		Filename:    j.Filename,
		ContentHash: j.ContentHash,
		Status:      j.Status,
		Error:       j.err,
		Result:      j.result,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes finished jobs not updated within the TTL and returns how
// many were dropped. Queued and running jobs are kept however old they are.
func (s *JobStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	removed := 0
	for id, job := range s.jobs {
		status, updated := job.state()
		if status.Terminal() && now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
