package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	"mediamatrixhub/internal/logger"
	"mediamatrixhub/internal/metrics"
	"mediamatrixhub/internal/services"
	"mediamatrixhub/internal/services/dto"

	"gorm.io/gorm"
)

var (
	ErrQueueFull     = errors.New("media queue is full")
	ErrWorkerStopped = errors.New("media worker is stopped")
)

// MediaProcessor runs the save hooks of one record.
type MediaProcessor interface {
	Process(ctx context.Context, db *gorm.DB, job services.MediaJob) (*dto.ProcessReport, error)
}

// MediaWorker runs media hooks on a fixed pool of goroutines fed by a
// buffered queue.
type MediaWorker struct {
	db        *gorm.DB
	processor MediaProcessor
	jobs      chan services.MediaJob
	workers   int
	timeout   time.Duration

	stopped chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

func NewMediaWorker(db *gorm.DB, processor MediaProcessor, workers, queueSize int, timeout time.Duration) *MediaWorker {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 16
	}
	return &MediaWorker{
		db:        db,
		processor: processor,
		jobs:      make(chan services.MediaJob, queueSize),
		workers:   workers,
		timeout:   timeout,
		stopped:   make(chan struct{}),
	}
}

// Enqueue never blocks; it fails when the queue is full or the worker is
// stopping.
func (w *MediaWorker) Enqueue(job services.MediaJob) error {
	select {
	case <-w.stopped:
		return ErrWorkerStopped
	default:
	}
	select {
	case w.jobs <- job:
		metrics.MediaQueueDepth.Set(float64(len(w.jobs)))
		return nil
	default:
		return ErrQueueFull
	}
}

// Start launches the pool; it stops when ctx is cancelled.
func (w *MediaWorker) Start(ctx context.Context) {
	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go w.loop(ctx, i)
	}
	go func() {
		<-ctx.Done()
		w.once.Do(func() { close(w.stopped) })
	}()
	logger.Info("media worker started", "workers", w.workers, "queue", cap(w.jobs))
}

// Wait blocks until every goroutine has returned.
func (w *MediaWorker) Wait() {
	w.wg.Wait()
}

func (w *MediaWorker) loop(ctx context.Context, n int) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			logger.WorkerLog("media", "stop", nil, "worker", n, "pending", len(w.jobs))
			return
		case job := <-w.jobs:
			metrics.MediaQueueDepth.Set(float64(len(w.jobs)))
			w.run(ctx, job)
		}
	}
}

func (w *MediaWorker) run(ctx context.Context, job services.MediaJob) {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("media job panicked", "kind", job.Kind, "id", job.ID, "panic", r)
		}
	}()
	if _, err := w.processor.Process(ctx, w.db.WithContext(ctx), job); err != nil {
		logger.WorkerLog("media", "process", err, "kind", job.Kind, "id", job.ID)
	}
}
