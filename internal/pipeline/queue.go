package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sistema-stock/ocr-service/internal/common"
	"github.com/sistema-stock/ocr-service/internal/entity"
)

// Queue runs extraction jobs on a fixed worker pool and delivers results to
// their callback URLs when set.
type Queue struct {
	proc     *Processor
	notifier *Notifier
	logger   *slog.Logger
	workers  int
	timeout  time.Duration

	ch   chan *entity.ExtractionJob
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*Queue)

func WithWorkers(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.ch = make(chan *entity.ExtractionJob, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewQueue(proc *Processor, notifier *Notifier, logger *slog.Logger, opts ...Option) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{
		proc:     proc,
		notifier: notifier,
		logger:   logger,
		workers:  4,
		timeout:  3 * time.Minute,
		ch:       make(chan *entity.ExtractionJob, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *Queue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for job := range q.ch {
					q.process(workerID, job)
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *Queue) process(workerID int, job *entity.ExtractionJob) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	ctx = common.WithProcessingID(ctx, job.ID.String())

	resp := q.proc.ProcessJob(ctx, job)
	if !resp.Success {
		q.logger.Error("processing failed", "worker_id", workerID, "job_id", job.ID, "error", resp.Error)
	}

	if job.CallbackURL == nil {
		return
	}
	if err := q.notifier.Send(ctx, *job.CallbackURL, resp); err != nil {
		q.logger.Error("callback failed", "worker_id", workerID, "job_id", job.ID, "error", err)
	}
}

// Enqueue hands the job to the pool, blocking for backpressure when full.
// Enqueueing after Shutdown is a silent no-op.
func (q *Queue) Enqueue(_ context.Context, job *entity.ExtractionJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "job_id", job.ID)
		return nil
	}
	select {
	case q.ch <- job:
		q.logger.Info("job queued", "job_id", job.ID)
	default:
		q.logger.Warn("queue full, applying backpressure", "job_id", job.ID)
		q.ch <- job
	}
	return nil
}

// Shutdown stops intake and waits for in-flight jobs until ctx expires.
func (q *Queue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
