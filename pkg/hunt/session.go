package hunt

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"huntd/pkg/keys"
	"huntd/pkg/logger"
	"huntd/pkg/models"
	"huntd/pkg/stats"
	"huntd/pkg/store"
)

// maxSaveAttempts bounds the load-evaluate-save loop. Version conflicts
// are expected under same-user races and retried; anything left after the
// budget surfaces as a try-again outcome.
const maxSaveAttempts = 3

// Recorder receives outcome events. Delivery is best effort: a slow or
// failing recorder must never roll back a committed submission.
type Recorder interface {
	Record(ev models.ActivityEvent)
}

// Session runs submissions end to end against the active hunt.
type Session struct {
	seq *keys.Sequence
	win Window
	rec Recorder

	mu      sync.Mutex
	userMus map[string]*sync.Mutex
}

// NewSession builds a Session for the given catalog and window. rec may
// be nil when no activity sink is configured.
func NewSession(seq *keys.Sequence, win Window, rec Recorder) *Session {
	return &Session{seq: seq, win: win, rec: rec, userMus: make(map[string]*sync.Mutex)}
}

// userLock returns the mutex serializing submissions for one user.
// Submissions from distinct users proceed fully in parallel.
func (s *Session) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	mu, ok := s.userMus[userID]
	if !ok {
		mu = &sync.Mutex{}
		s.userMus[userID] = mu
	}
	return mu
}

// Submit evaluates one submission and persists its result. Outcomes are
// values; the returned error is non-nil only for store failures that
// exhausted the retry budget (the outcome is then OutcomeTryAgain).
func (s *Session) Submit(ctx context.Context, userID, text string, now time.Time) (models.Outcome, error) {
	if userID == "" {
		return models.Outcome{Kind: models.OutcomeTryAgain}, fmt.Errorf("empty user id")
	}

	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		// Abandoning before the save commits leaves no side effects.
		if err := ctx.Err(); err != nil {
			return models.Outcome{Kind: models.OutcomeTryAgain}, err
		}

		progress, err := store.LoadProgress(userID, now)
		if err != nil {
			lastErr = err
			continue
		}
		attempted := progress.CurrentOrdinal

		outcome, next := Evaluate(now, progress, text, s.seq, s.win)
		if !mutated(outcome.Kind) {
			submissionsTotal.WithLabelValues(string(outcome.Kind)).Inc()
			s.emit(userID, now, attempted, outcome, false)
			return outcome, nil
		}
		wrongOrder := next.WrongOrderGuesses > progress.WrongOrderGuesses

		next.Flagged = next.Flagged || stats.Suspicious(next)

		err = store.CompareAndSaveProgress(userID, progress.Version, next)
		if err == nil {
			// Committed: the outcome is final and must reach whoever is
			// waiting, even if the transport has moved on.
			submissionsTotal.WithLabelValues(string(outcome.Kind)).Inc()
			s.emit(userID, now, attempted, outcome, wrongOrder)
			logger.Info("submission_committed",
				"user", userID, "outcome", string(outcome.Kind), "ordinal", attempted)
			return outcome, nil
		}
		if errors.Is(err, store.ErrVersionConflict) {
			saveConflictsTotal.Inc()
			lastErr = err
			continue
		}
		lastErr = err
	}

	logger.Error("submission_not_committed", "user", userID, "error", lastErr)
	submissionsTotal.WithLabelValues(string(models.OutcomeTryAgain)).Inc()
	return models.Outcome{Kind: models.OutcomeTryAgain}, fmt.Errorf("submit for %s: %w", userID, lastErr)
}

func (s *Session) emit(userID string, now time.Time, ordinal int, outcome models.Outcome, wrongOrder bool) {
	if s.rec == nil {
		return
	}
	s.rec.Record(models.ActivityEvent{
		UserID:     userID,
		TS:         now.Unix(),
		Ordinal:    ordinal,
		Outcome:    outcome.Kind,
		Correct:    outcome.Correct(),
		WrongOrder: wrongOrder,
	})
}

// Status returns the read-only view of a user's progress. It never
// mutates state; an unknown user sees the default first-key view.
func (s *Session) Status(userID string) (models.StatusView, error) {
	progress, err := store.LoadProgress(userID, time.Now())
	if err != nil {
		return models.StatusView{}, err
	}

	view := models.StatusView{
		UserID:         userID,
		CurrentOrdinal: progress.CurrentOrdinal,
		SolvedCount:    progress.SolvedCount(),
		TotalCount:     s.seq.Total(),
		Completed:      progress.Completed(),
		Finalized:      progress.FinalizedAt != 0,
	}
	if progress.Version != 0 {
		view.StartedAt = progress.CreatedAt
	}
	if cur, ok := s.seq.Lookup(progress.CurrentOrdinal); ok {
		view.CurrentClue = cur.Clue
	}
	for _, o := range progress.SolvedOrdinals {
		if d, ok := s.seq.Lookup(o); ok && d.Code != "" {
			view.CodesFound = append(view.CodesFound, d.Code)
		}
	}
	return view, nil
}

// Finalize marks a user's decoded answer as verified by staff. It also
// completes a user still sitting on the terminal key, mirroring the
// champion role grant that used to close out hunts.
func (s *Session) Finalize(userID string, now time.Time) (*models.Progress, error) {
	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		progress, err := store.GetProgress(userID)
		if err != nil {
			return nil, err
		}
		next := progress.Clone()
		next.FinalizedAt = now.Unix()
		if next.CompletedAt == 0 {
			next.CompletedAt = now.Unix()
		}
		err = store.CompareAndSaveProgress(userID, progress.Version, next)
		if err == nil {
			logger.Info("hunt_finalized", "user", userID)
			return next, nil
		}
		if !errors.Is(err, store.ErrVersionConflict) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("finalize %s: too many conflicting writes", userID)
}

// Reset removes a user's record entirely. Staff action; the user starts
// over on their next submission.
func (s *Session) Reset(userID string) error {
	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()
	return store.DeleteProgress(userID)
}
