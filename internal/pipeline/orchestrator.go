package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var (
	// ErrQueueFull is returned by Submit when the job queue has no room.
	ErrQueueFull = errors.New("job queue is full")
	// ErrStopped is returned by Submit after Stop.
	ErrStopped = errors.New("pipeline stopped")
)

const cleanupInterval = 5 * time.Minute

// Orchestrator runs async extraction jobs on a fixed worker pool.
type Orchestrator struct {
	jobs      *JobStore
	queue     chan *Job
	processor *Processor
	workers   int
	log       *slog.Logger

	mu      sync.RWMutex
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(proc *Processor, workers, queueSize int, jobTTL time.Duration, log *slog.Logger) *Orchestrator {
	if workers <= 0 {
		workers = 1
	}
	return &Orchestrator{
		jobs:      NewJobStore(jobTTL),
		queue:     make(chan *Job, queueSize),
		processor: proc,
		workers:   workers,
		log:       log,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for w := 0; w < o.workers; w++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					o.process(workerCtx, job)
				}
			}
		}()
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				if n := o.jobs.Cleanup(); n > 0 {
					o.log.Debug("expired jobs removed", "count", n)
				}
			}
		}
	}()
}

func (o *Orchestrator) process(ctx context.Context, job *Job) {
	log := o.log.With("job_id", job.ID)
	log.Info("job started", "filename", job.Filename)

	res, err := o.processor.run(ctx, job.request(), job.SetStatus)
	if err != nil {
		log.Error("job failed", "error", err)
		job.Fail(err.Error())
		return
	}
	job.Complete(res)
	log.Info("job completed", "chunks", res.TotalChunks)
}

// Stop cancels in-flight work and waits for the workers to exit.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.queue)
	o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// Submit registers the job and queues it for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.stopped {
		return ErrStopped
	}

	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.Fail("queue_full")
		return fmt.Errorf("%w (%d)", ErrQueueFull, cap(o.queue))
	}
}

// GetJob returns a job by ID, or nil.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}
