// Package queue hands enriched records from the Telegram handlers to the
// storage consumer.
package queue

import (
	"context"
	"errors"
	"sync"

	"github.com/knowbot/knowbot/internal/storage"
)

// ErrClosed is returned by Get once the queue is closed and drained.
var ErrClosed = errors.New("queue is closed")

// Queue is an unbounded in-memory FIFO. Put never blocks and never drops;
// if the consumer stalls, the backlog grows without limit, and records
// still queued at shutdown are lost.
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []*storage.Record
	closed bool
}

// New creates an empty queue.
func New() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Put enqueues a record. It is safe for concurrent use and never blocks.
func (q *Queue) Put(rec *storage.Record) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, rec)
	q.cond.Signal()
}

// Get blocks until a record is available, the context is canceled, or the
// queue is closed and empty. Records come out in Put order.
func (q *Queue) Get(ctx context.Context) (*storage.Record, error) {
	stop := context.AfterFunc(ctx, func() {
		// Broadcast under the mutex so the wakeup cannot land between a
		// waiter's cancellation check and its Wait.
		q.mu.Lock()
		defer q.mu.Unlock()
		q.cond.Broadcast()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if q.closed {
			return nil, ErrClosed
		}
		q.cond.Wait()
	}

	rec := q.items[0]
	q.items = q.items[1:]
	return rec, nil
}

// Len reports the current backlog size.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops accepting records. Blocked Gets return ErrClosed once the
// backlog is drained.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}
