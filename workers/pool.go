package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/friendsonlinesolution/file-converter-backend1/models"
)

// ErrPoolStopped is returned by Submit once Stop has been called.
var ErrPoolStopped = errors.New("worker pool stopped")

// Engine performs one conversion. *converters.Converter satisfies it.
type Engine interface {
	Convert(ctx context.Context, req models.ConversionRequest) (*models.ConversionResult, error)
}

type WorkerPool struct {
	JobQueue chan models.Job
	workers  int
	engine   Engine
	log      zerolog.Logger
	wg       sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

func NewWorkerPool(workers, queueSize int, engine Engine, log zerolog.Logger) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	return &WorkerPool{
		JobQueue: make(chan models.Job, queueSize),
		workers:  workers,
		engine:   engine,
		log:      log,
	}
}

func (p *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func(workerID int) {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job, ok := <-p.JobQueue:
					if !ok {
						return
					}
					p.run(workerID, job)
				}
			}
		}(i)
	}
	p.log.Info().Int("workers", p.workers).Int("queue", cap(p.JobQueue)).Msg("worker pool started")
}

func (p *WorkerPool) run(workerID int, job models.Job) {
	// ResultChan is buffered; a requester that gave up never blocks the worker.
	if err := job.Ctx.Err(); err != nil {
		job.ResultChan <- models.JobResult{Error: err}
		return
	}

	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Str("req_id", job.ID).Int("worker", workerID).Interface("panic", r).Msg("converter panicked")
			job.ResultChan <- models.JobResult{Error: &models.ConversionError{
				Type: job.Request.Type,
				Err:  fmt.Errorf("internal error: %v", r),
			}}
		}
	}()

	res, err := p.engine.Convert(job.Ctx, job.Request)
	job.ResultChan <- models.JobResult{Result: res, Error: err}
}

// Submit queues req and waits for its result or for ctx to end.
func (p *WorkerPool) Submit(ctx context.Context, id string, req models.ConversionRequest) (*models.ConversionResult, error) {
	resultChan := make(chan models.JobResult, 1)
	job := models.Job{
		ID:         id,
		Ctx:        ctx,
		Request:    req,
		ResultChan: resultChan,
	}

	p.mu.RLock()
	if p.stopped {
		p.mu.RUnlock()
		return nil, ErrPoolStopped
	}
	select {
	case p.JobQueue <- job:
		p.mu.RUnlock()
	case <-ctx.Done():
		p.mu.RUnlock()
		return nil, ctx.Err()
	}

	select {
	case result := <-resultChan:
		return result.Result, result.Error
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Stop closes the queue and waits for in-flight jobs to finish.
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.JobQueue)
	p.mu.Unlock()

	p.wg.Wait()
	p.log.Info().Msg("worker pool stopped")
}
