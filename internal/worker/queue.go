// Package worker runs reconciliation units of work: an in-process task
// queue feeding a fixed-size goroutine pool, and the periodic fan-out that
// enqueues one unit per product.
package worker

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/panjf2000/ants/v2"

	syncsvc "catalog-sync/internal/service/sync"
)

// Task is one named, idempotent unit of work. Delivery is at-least-once:
// Run may execute again after a transient failure, so it must be safe to
// repeat.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Queue buffers tasks and executes them on a bounded worker pool. Each task
// gets a bounded retry budget with exponential backoff; a task that exhausts
// it is abandoned and logged, never rescheduled by the queue itself.
type Queue struct {
	logger       *log.Logger
	tasks        chan Task
	pool         *ants.Pool
	wg           sync.WaitGroup
	maxAttempts  int
	firstBackoff time.Duration

	// mu serializes Enqueue against Stop: the closed check, the channel
	// send, and the wg accounting must be atomic with respect to the
	// channel close, or a late Enqueue panics on the closed channel.
	mu     sync.Mutex
	closed bool

	processed atomic.Uint64
	abandoned atomic.Uint64
}

// NewQueue builds a queue backed by a pool of the given size.
func NewQueue(workers, buffer, maxAttempts int, logger *log.Logger) (*Queue, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if workers <= 0 {
		workers = 1
	}
	if buffer <= 0 {
		buffer = 256
	}
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("init worker pool: %w", err)
	}
	return &Queue{
		logger:       logger,
		tasks:        make(chan Task, buffer),
		pool:         pool,
		maxAttempts:  maxAttempts,
		firstBackoff: time.Second,
	}, nil
}

// Start launches the dispatcher. Tasks run until ctx is cancelled or Stop
// drains the queue.
func (q *Queue) Start(ctx context.Context) {
	go func() {
		for task := range q.tasks {
			t := task
			if err := q.pool.Submit(func() {
				defer q.wg.Done()
				q.execute(ctx, t)
			}); err != nil {
				q.wg.Done()
				q.logger.Printf("worker: submit %s failed: %v", t.Name, err)
			}
		}
	}()
}

// Enqueue adds a task; it reports false when the queue is shut down or the
// buffer is full. The task is counted as pending from here, so Stop waits
// for every accepted task even before the dispatcher has picked it up.
func (q *Queue) Enqueue(task Task) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.wg.Add(1)
	select {
	case q.tasks <- task:
		return true
	default:
		q.wg.Done()
		q.logger.Printf("worker: queue full, dropping %s", task.Name)
		return false
	}
}

// Stop closes intake, waits for accepted tasks up to the ctx deadline, and
// releases the pool.
func (q *Queue) Stop(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.tasks)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		q.logger.Printf("worker: shutdown deadline reached with tasks in flight")
	}
	q.pool.Release()
}

// Stats reports processed and abandoned task counts.
func (q *Queue) Stats() (processed, abandoned uint64) {
	return q.processed.Load(), q.abandoned.Load()
}

func (q *Queue) execute(ctx context.Context, task Task) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = q.firstBackoff

	attempts := 0
	operation := func() (struct{}, error) {
		attempts++
		if err := task.Run(ctx); err != nil {
			q.logger.Printf("worker: %s attempt=%d error=%v", task.Name, attempts, err)
			return struct{}{}, err
		}
		return struct{}{}, nil
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(q.maxAttempts)),
	)
	if err != nil {
		q.abandoned.Add(1)
		q.logger.Printf("worker: %s abandoned after %d attempts: %v", task.Name, attempts, err)
		return
	}
	q.processed.Add(1)
}

// Dispatcher binds the queue to the reconciliation engine and names the
// per-product unit of work.
type Dispatcher struct {
	Queue  *Queue
	Syncer Syncer
}

// Syncer runs one reconciliation pass for a product.
type Syncer interface {
	SyncProduct(ctx context.Context, productID string) (syncsvc.Result, error)
}

// EnqueueReconcile schedules "reconcile offers for product X".
func (d *Dispatcher) EnqueueReconcile(productID string) bool {
	return d.Queue.Enqueue(Task{
		Name: "reconcile-offers " + productID,
		Run: func(ctx context.Context) error {
			_, err := d.Syncer.SyncProduct(ctx, productID)
			return err
		},
	})
}
