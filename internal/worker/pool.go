package worker

import (
	"context"
	"sync"

	"github.com/osse101/CycleVars_Go/internal/logger"
)

// Job represents a task to be executed by a worker
type Job interface {
	Process(ctx context.Context) error
}

// Discarder is implemented by jobs that must release resources when the pool
// stops before running them
type Discarder interface {
	Discard()
}

// Pool is a fixed set of workers reading from a bounded queue
type Pool struct {
	workers  int
	jobQueue chan Job
	wg       sync.WaitGroup
	quit     chan struct{}
	stopOnce sync.Once
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewPool creates a new worker pool
func NewPool(workers int, queueSize int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	return &Pool{
		workers:  workers,
		jobQueue: make(chan Job, queueSize),
		quit:     make(chan struct{}),
		ctx:      context.Background(),
		cancel:   func() {},
	}
}

// Start starts the workers. Jobs receive a child of ctx that Stop cancels.
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// worker is the worker loop
func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		// Prefer quitting over picking up more work
		select {
		case <-p.quit:
			return
		default:
		}

		select {
		case job := <-p.jobQueue:
			p.run(job)
		case <-p.quit:
			return
		}
	}
}

// run processes one job. A panicking job is logged and the worker survives.
func (p *Pool) run(job Job) {
	defer func() {
		if r := recover(); r != nil {
			logger.FromContext(p.ctx).Error(LogMsgWorkerJobPanicked, "panic", r)
		}
	}()
	if err := job.Process(p.ctx); err != nil {
		logger.FromContext(p.ctx).Error(LogMsgWorkerJobFailed, "error", err)
	}
}

// Enqueue adds a job to the queue, blocking while it is full.
// It returns false once the pool is stopped.
func (p *Pool) Enqueue(job Job) bool {
	select {
	case <-p.quit:
		return false
	default:
	}

	select {
	case p.jobQueue <- job:
		return true
	case <-p.quit:
		return false
	}
}

// TryEnqueue adds a job without blocking. It returns false if the queue is full
// or the pool is stopped.
func (p *Pool) TryEnqueue(job Job) bool {
	select {
	case <-p.quit:
		return false
	default:
	}

	select {
	case p.jobQueue <- job:
		return true
	default:
		return false
	}
}

// Stop cancels the jobs' context and waits for the workers to return from
// their current job. Queued jobs that never ran are discarded.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		close(p.quit)
		p.cancel()
		p.wg.Wait()

		discarded := 0
		for {
			select {
			case job := <-p.jobQueue:
				discarded++
				if d, ok := job.(Discarder); ok {
					d.Discard()
				}
			default:
				if discarded > 0 {
					logger.FromContext(p.ctx).Info(LogMsgJobsDiscarded, "count", discarded)
				}
				return
			}
		}
	})
}
