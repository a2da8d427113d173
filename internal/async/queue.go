// Package async runs file pipelines on a bounded worker pool.
package async

import (
	"context"
	"sync"

	"log/slog"

	"github.com/docuflow/invoice-extractor/internal/pipeline"
)

// PipelineQueue feeds uploaded files to the orchestrator from a fixed
// pool of workers. Jobs carry no deadline; a pipeline runs until its
// stages finish or fail.
type PipelineQueue struct {
	orch    *pipeline.Orchestrator
	logger  *slog.Logger
	workers int

	ch   chan pipeline.FileInput
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*PipelineQueue)

func WithWorkers(n int) Option {
	return func(q *PipelineQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *PipelineQueue) {
		if n > 0 {
			q.ch = make(chan pipeline.FileInput, n)
		}
	}
}

func NewPipelineQueue(orch *pipeline.Orchestrator, logger *slog.Logger, opts ...Option) *PipelineQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &PipelineQueue{
		orch:    orch,
		logger:  logger,
		workers: 4,
		ch:      make(chan pipeline.FileInput, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *PipelineQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("queue.worker.started", "worker_id", workerID)

				for in := range q.ch {
					// Process records any failure on the file itself;
					// nothing to do here beyond logging.
					if err := q.orch.Process(context.Background(), in); err != nil {
						q.logger.Error("queue.job.failed", "worker_id", workerID, "file_id", in.ID, "error", err)
					} else {
						q.logger.Info("queue.job.done", "worker_id", workerID, "file_id", in.ID)
					}
				}

				q.logger.Info("queue.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// Enqueue submits a file for processing. When the buffer is full the
// call blocks, applying backpressure to the upload endpoint.
func (q *PipelineQueue) Enqueue(_ context.Context, in pipeline.FileInput) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("queue.enqueue.rejected", "file_id", in.ID)
		return nil
	}
	select {
	case q.ch <- in:
		q.logger.Info("queue.enqueued", "file_id", in.ID, "name", in.Name)
	default:
		q.logger.Warn("queue.full", "file_id", in.ID)
		q.ch <- in
	}
	return nil
}

// Shutdown stops intake and waits for in-flight jobs, bounded by ctx.
func (q *PipelineQueue) Shutdown(ctx context.Context) {
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
		q.logger.Warn("queue.shutdown.interrupted")
	case <-done:
		q.logger.Info("queue.shutdown.complete")
	}
}
