// Package fanout provides a worker-pool-backed, non-blocking sender for
// callback datagrams and Hooks notifications, so a slow subscriber or a
// stalled observer can never back up the listener goroutine. Adapted,
// close to its original structure, from the teacher's worker_pool.go
// (same Task/WorkerPool/Submit/panic-recovering worker shape), repurposed
// from queuing WebSocket broadcast writes to queuing UDP callback sends
// and Hooks calls.
package fanout

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/oddbank/rpcbankd/internal/observability"
)

// Task is one unit of fire-and-forget work: a callback datagram send or a
// Hooks notification.
type Task func()

// Pool is a fixed-size worker pool draining a bounded task queue. Unlike
// the teacher's WorkerPool, which took an externally-owned context in
// Start, Pool owns its own cancellation so Stop is self-contained and a
// caller can't forget to cancel the context it passed in.
type Pool struct {
	workerCount  int
	taskQueue    chan Task
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	droppedTasks int64
	logger       zerolog.Logger
}

// NewPool creates a pool with workerCount goroutines draining a
// queueSize-deep buffered channel.
func NewPool(workerCount, queueSize int, logger zerolog.Logger) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		workerCount: workerCount,
		taskQueue:   make(chan Task, queueSize),
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
	}
}

// Start spawns the worker goroutines. Call once before Submit.
func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case task := <-p.taskQueue:
			if task != nil {
				p.runTask(task)
			}
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Pool) runTask(task Task) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().
				Interface("panic_value", r).
				Str("stack_trace", string(debug.Stack())).
				Msg("fanout worker panic recovered")
		}
	}()
	task()
}

// Submit enqueues task for asynchronous execution. If the queue is full,
// the task is dropped and the drop counter incremented rather than
// blocking the caller — spec.md §5 requires sends be fire-and-forget and
// non-blocking on the listener goroutine.
func (p *Pool) Submit(task Task) {
	select {
	case p.taskQueue <- task:
	default:
		atomic.AddInt64(&p.droppedTasks, 1)
		observability.FanOutDroppedTotal.Inc()
	}
}

// Stop cancels the pool's context and waits for every worker to exit.
func (p *Pool) Stop() {
	p.cancel()
	p.wg.Wait()
}

// DroppedTasks reports how many tasks were dropped because the queue was
// full, for observability.
func (p *Pool) DroppedTasks() int64 {
	return atomic.LoadInt64(&p.droppedTasks)
}

// QueueDepth reports the number of tasks currently buffered.
func (p *Pool) QueueDepth() int {
	return len(p.taskQueue)
}
