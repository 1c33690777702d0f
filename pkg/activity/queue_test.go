package activity

import (
	"context"
	"sync"
	"testing"
	"time"

	"huntd/pkg/models"
)

type collectSink struct {
	mu     sync.Mutex
	events []models.ActivityEvent
}

func (c *collectSink) Consume(ev models.ActivityEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *collectSink) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func TestTryEnqueueFullDrops(t *testing.T) {
	q := NewQueue(2)
	ev := models.ActivityEvent{UserID: "u"}

	if err := q.TryEnqueue(ev); err != nil {
		t.Fatalf("first enqueue: %v", err)
	}
	if err := q.TryEnqueue(ev); err != nil {
		t.Fatalf("second enqueue: %v", err)
	}
	if err := q.TryEnqueue(ev); err != ErrQueueFull {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if q.Dropped() != 1 {
		t.Fatalf("Dropped: expected 1, got %d", q.Dropped())
	}
	if q.Enqueued() != 2 {
		t.Fatalf("Enqueued: expected 2, got %d", q.Enqueued())
	}
}

func TestEnqueueAfterClose(t *testing.T) {
	q := NewQueue(4)
	q.Close()
	if err := q.TryEnqueue(models.ActivityEvent{UserID: "u"}); err != ErrQueueClosed {
		t.Fatalf("expected ErrQueueClosed, got %v", err)
	}
	// Close is idempotent.
	q.Close()
}

func TestWorkerDrainsBacklogOnClose(t *testing.T) {
	q := NewQueue(16)
	for i := 0; i < 5; i++ {
		if err := q.TryEnqueue(models.ActivityEvent{UserID: "u", Ordinal: i}); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	q.Close()

	sink := &collectSink{}
	done := make(chan struct{})
	go func() {
		RunWorker(context.Background(), q, sink)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("worker did not exit after queue close")
	}
	if sink.len() != 5 {
		t.Fatalf("expected 5 drained events, got %d", sink.len())
	}
}

func TestWorkerStopsOnContext(t *testing.T) {
	q := NewQueue(4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunWorker(ctx, q, &collectSink{})
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("worker did not stop on context cancel")
	}
}

func TestRecorderNeverBlocks(t *testing.T) {
	q := NewQueue(1)
	r := NewRecorder(q)
	doneBy := time.Now().Add(time.Second)
	for i := 0; i < 100; i++ {
		r.Record(models.ActivityEvent{UserID: "u", Ordinal: i})
	}
	if time.Now().After(doneBy) {
		t.Fatalf("recording against a full queue blocked")
	}
	if q.Dropped() == 0 {
		t.Fatalf("expected drops against a capacity-1 queue")
	}

	// A recorder with no queue silently discards.
	NewRecorder(nil).Record(models.ActivityEvent{UserID: "u"})
}
