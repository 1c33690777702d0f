package hunt

import (
	"context"
	"sync"
	"testing"
	"time"

	"huntd/pkg/models"
	"huntd/pkg/store"
)

type captureRecorder struct {
	mu     sync.Mutex
	events []models.ActivityEvent
}

func (c *captureRecorder) Record(ev models.ActivityEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func openTestStore(t *testing.T) {
	t.Helper()
	if err := store.Open(t.TempDir()); err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("closing store: %v", err)
		}
	})
}

func TestSubmitPersistsProgress(t *testing.T) {
	openTestStore(t)
	seq := testSequence(t)
	store.SetFirstOrdinal(seq.First())
	rec := &captureRecorder{}
	s := NewSession(seq, testWindow(), rec)
	now := time.Unix(2000, 0)

	out, err := s.Submit(context.Background(), "alice", "dog", now)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if out.Kind != models.OutcomeAccepted {
		t.Fatalf("expected accepted, got %s", out.Kind)
	}

	p, err := store.GetProgress("alice")
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if p.CurrentOrdinal != 2 || p.TotalAttempts != 1 || p.Version != 1 {
		t.Fatalf("persisted record wrong: %+v", p)
	}
	if len(rec.events) != 1 || !rec.events[0].Correct {
		t.Fatalf("expected one correct activity event, got %+v", rec.events)
	}
}

func TestSubmitInactiveDoesNotPersist(t *testing.T) {
	openTestStore(t)
	seq := testSequence(t)
	store.SetFirstOrdinal(seq.First())
	s := NewSession(seq, testWindow(), nil)

	out, err := s.Submit(context.Background(), "bob", "dog", time.Unix(10, 0))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if out.Kind != models.OutcomeHuntNotActive {
		t.Fatalf("expected hunt_not_active, got %s", out.Kind)
	}
	if _, err := store.GetProgress("bob"); err != store.ErrNotFound {
		t.Fatalf("pre-start submission must not create a record, got %v", err)
	}
}

func TestSubmitConcurrentSameAnswer(t *testing.T) {
	openTestStore(t)
	seq := testSequence(t)
	store.SetFirstOrdinal(seq.First())
	s := NewSession(seq, testWindow(), nil)
	now := time.Unix(2000, 0)

	const workers = 50
	outcomes := make([]models.Outcome, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := s.Submit(context.Background(), "carol", "dog", now)
			if err != nil {
				t.Errorf("worker %d: %v", i, err)
				return
			}
			outcomes[i] = out
		}(i)
	}
	wg.Wait()

	accepted := 0
	for _, out := range outcomes {
		if out.Correct() {
			accepted++
		}
	}
	if accepted != 1 {
		t.Fatalf("expected exactly one accepted submission, got %d", accepted)
	}

	p, err := store.GetProgress("carol")
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if p.CurrentOrdinal != 2 || len(p.SolvedOrdinals) != 1 {
		t.Fatalf("user advanced more than one step: %+v", p)
	}
	if p.TotalAttempts != workers {
		t.Fatalf("TotalAttempts: expected %d, got %d", workers, p.TotalAttempts)
	}
}

func TestSubmitStoreFailureYieldsTryAgain(t *testing.T) {
	// No store opened: every load fails until the retry budget runs out.
	seq := testSequence(t)
	s := NewSession(seq, testWindow(), nil)

	out, err := s.Submit(context.Background(), "grace", "dog", time.Unix(2000, 0))
	if err == nil {
		t.Fatalf("expected an error once retries are exhausted")
	}
	if out.Kind != models.OutcomeTryAgain {
		t.Fatalf("store failure must surface as try_again, got %s", out.Kind)
	}
}

func TestSubmitEmptyUser(t *testing.T) {
	openTestStore(t)
	seq := testSequence(t)
	s := NewSession(seq, testWindow(), nil)

	out, err := s.Submit(context.Background(), "", "dog", time.Unix(2000, 0))
	if err == nil {
		t.Fatalf("expected an error for an empty user id")
	}
	if out.Kind != models.OutcomeTryAgain {
		t.Fatalf("expected try_again, got %s", out.Kind)
	}
}

func TestStatusAndCodes(t *testing.T) {
	openTestStore(t)
	seq := testSequence(t)
	store.SetFirstOrdinal(seq.First())
	s := NewSession(seq, testWindow(), nil)
	now := time.Unix(2000, 0)

	if _, err := s.Submit(context.Background(), "dave", "dog", now); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := s.Submit(context.Background(), "dave", "cat", now); err != nil {
		t.Fatalf("submit: %v", err)
	}

	view, err := s.Status("dave")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if view.SolvedCount != 2 || view.TotalCount != 3 {
		t.Fatalf("status counts wrong: %+v", view)
	}
	if view.CurrentClue != "behind the clock" {
		t.Fatalf("current clue: got %q", view.CurrentClue)
	}
	if len(view.CodesFound) != 2 || view.CodesFound[0] != "ALPHA" || view.CodesFound[1] != "BRAVO" {
		t.Fatalf("codes found: %v", view.CodesFound)
	}
	if view.Completed {
		t.Fatalf("two of three keys must not read as completed")
	}
}

func TestStatusUnknownUser(t *testing.T) {
	openTestStore(t)
	seq := testSequence(t)
	store.SetFirstOrdinal(seq.First())
	s := NewSession(seq, testWindow(), nil)

	view, err := s.Status("nobody")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if view.SolvedCount != 0 || view.CurrentOrdinal != seq.First() {
		t.Fatalf("unknown user must see the first-key view: %+v", view)
	}
	if view.StartedAt != 0 {
		t.Fatalf("unknown user has no start time: %+v", view)
	}
	if _, err := store.GetProgress("nobody"); err != store.ErrNotFound {
		t.Fatalf("status query must not create a record, got %v", err)
	}
}

func TestFinalize(t *testing.T) {
	openTestStore(t)
	seq := testSequence(t)
	store.SetFirstOrdinal(seq.First())
	s := NewSession(seq, testWindow(), nil)
	now := time.Unix(2000, 0)

	for _, answer := range []string{"dog", "cat", "bird"} {
		if _, err := s.Submit(context.Background(), "erin", answer, now); err != nil {
			t.Fatalf("submit %q: %v", answer, err)
		}
	}

	p, err := s.Finalize("erin", time.Unix(3000, 0))
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if p.FinalizedAt != 3000 {
		t.Fatalf("FinalizedAt: expected 3000, got %d", p.FinalizedAt)
	}
	if p.CompletedAt != now.Unix() {
		t.Fatalf("CompletedAt must keep the solve time, got %d", p.CompletedAt)
	}

	if _, err := s.Finalize("unknown", time.Unix(3000, 0)); err == nil {
		t.Fatalf("finalizing an unknown user must fail")
	}
}

func TestReset(t *testing.T) {
	openTestStore(t)
	seq := testSequence(t)
	store.SetFirstOrdinal(seq.First())
	s := NewSession(seq, testWindow(), nil)

	if _, err := s.Submit(context.Background(), "frank", "dog", time.Unix(2000, 0)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := s.Reset("frank"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := store.GetProgress("frank"); err != store.ErrNotFound {
		t.Fatalf("record must be gone after reset, got %v", err)
	}

	view, err := s.Status("frank")
	if err != nil {
		t.Fatalf("status after reset: %v", err)
	}
	if view.SolvedCount != 0 || view.CurrentOrdinal != seq.First() {
		t.Fatalf("reset user must start over: %+v", view)
	}
}
