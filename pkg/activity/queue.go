// Package activity delivers per-submission events to a bounded in-memory
// queue with a single drain worker. Delivery is best effort: when the
// queue is full the event is dropped and counted, never blocking the
// submission path.
package activity

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"huntd/pkg/models"
)

const defaultCapacity = 4096
const fallbackCapacity = 256

var (
	ErrQueueFull   = errors.New("activity queue full")
	ErrQueueClosed = errors.New("activity queue closed")
)

// Queue is a threadsafe, fixed-size in-memory queue of activity events.
type Queue struct {
	ch       chan models.ActivityEvent
	capacity int
	enqueued uint64
	dropped  uint64
	closed   int32

	enqWg     sync.WaitGroup
	closeOnce sync.Once
}

// NewQueue creates a bounded Queue of given capacity (>0).
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = fallbackCapacity
	}
	return &Queue{ch: make(chan models.ActivityEvent, capacity), capacity: capacity}
}

// Out exposes events for the drain worker (do not close).
func (q *Queue) Out() <-chan models.ActivityEvent { return q.ch }

// TryEnqueue enqueues an event without blocking. A full or closed queue
// drops the event and reports why.
func (q *Queue) TryEnqueue(ev models.ActivityEvent) error {
	if atomic.LoadInt32(&q.closed) == 1 {
		atomic.AddUint64(&q.dropped, 1)
		droppedTotal.Inc()
		return ErrQueueClosed
	}

	q.enqWg.Add(1)
	defer q.enqWg.Done()

	if atomic.LoadInt32(&q.closed) == 1 {
		atomic.AddUint64(&q.dropped, 1)
		droppedTotal.Inc()
		return ErrQueueClosed
	}

	select {
	case q.ch <- ev:
		atomic.AddUint64(&q.enqueued, 1)
		enqueuedTotal.Inc()
		return nil
	default:
		atomic.AddUint64(&q.dropped, 1)
		droppedTotal.Inc()
		return ErrQueueFull
	}
}

// Close marks the queue closed, waits for in-flight enqueues and closes
// the channel so the drain worker can finish the backlog and exit.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		atomic.StoreInt32(&q.closed, 1)
		q.enqWg.Wait()
		close(q.ch)
	})
}

// Dropped returns the number of events lost to a full or closed queue.
func (q *Queue) Dropped() uint64 { return atomic.LoadUint64(&q.dropped) }

// Enqueued returns the number of events accepted so far.
func (q *Queue) Enqueued() uint64 { return atomic.LoadUint64(&q.enqueued) }

// Sink consumes drained events.
type Sink interface {
	Consume(ev models.ActivityEvent)
}

// RunWorker drains the queue into sink until the queue closes and empties
// or ctx is cancelled. Intended to run as a single goroutine.
func RunWorker(ctx context.Context, q *Queue, sink Sink) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-q.Out():
			if !ok {
				return
			}
			sink.Consume(ev)
		}
	}
}
