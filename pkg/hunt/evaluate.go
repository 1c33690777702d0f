// Package hunt implements the progression engine: the pure evaluation of
// a submission against the key sequence, and the session orchestration
// that makes its result durable.
package hunt

import (
	"time"

	"huntd/pkg/keys"
	"huntd/pkg/models"
)

// Window bounds the hunt in time. Submissions outside it are rejected
// without touching progress.
type Window struct {
	Start time.Time
	End   time.Time
}

// Evaluate decides the outcome of one submission. It is a pure function:
// it never blocks, never touches the store, and returns a fresh progress
// record; the input record is not mutated. Callers persist the returned
// record iff the outcome mutated it.
func Evaluate(now time.Time, progress *models.Progress, submission string, seq *keys.Sequence, win Window) (models.Outcome, *models.Progress) {
	if now.Before(win.Start) {
		return models.Outcome{Kind: models.OutcomeHuntNotActive, Reason: models.ReasonNotStarted}, progress
	}
	// A user who finished before the window closed still gets
	// AlreadyCompleted when re-querying afterwards.
	if now.After(win.End) && !progress.Completed() {
		return models.Outcome{Kind: models.OutcomeHuntNotActive, Reason: models.ReasonEnded}, progress
	}
	if progress.Completed() {
		return models.Outcome{Kind: models.OutcomeAlreadyCompleted}, progress
	}

	target, ok := seq.Lookup(progress.CurrentOrdinal)
	if !ok {
		// Record points at an ordinal the active catalog does not know.
		// Treat as a miss rather than crash; staff can reset the user.
		return models.Outcome{Kind: models.OutcomeIncorrect}, progress
	}

	next := progress.Clone()
	next.TotalAttempts++

	if target.Terminal() {
		// The terminal key takes no answer; re-serve the decoding
		// instructions without evaluating the text.
		return models.Outcome{Kind: models.OutcomeAlreadyOnFinal, NextClue: target.Clue}, next
	}

	normalized := keys.Normalize(submission)
	if normalized != target.Answer {
		if next.AttemptCounts == nil {
			next.AttemptCounts = make(map[int]int)
		}
		next.AttemptCounts[target.Ordinal]++
		wrongOrder := seq.MatchesAny(normalized)
		if wrongOrder {
			next.WrongOrderGuesses++
		}
		// Never hint at partial matches; a miss is just a miss.
		return models.Outcome{Kind: models.OutcomeIncorrect}, next
	}

	next.SolvedOrdinals = append(next.SolvedOrdinals, target.Ordinal)
	if next.SolvedAt == nil {
		next.SolvedAt = make(map[int]int64)
	}
	next.SolvedAt[target.Ordinal] = now.Unix()

	advanced, _ := seq.Next(target.Ordinal)
	next.CurrentOrdinal = advanced

	if seq.IsTerminal(advanced) {
		next.CompletedAt = now.Unix()
		return models.Outcome{
			Kind:     models.OutcomeAcceptedFinal,
			NextClue: seq.Terminal().Clue,
			Code:     target.Code,
		}, next
	}

	nextKey, _ := seq.Lookup(advanced)
	return models.Outcome{
		Kind:     models.OutcomeAccepted,
		NextClue: nextKey.Clue,
		Code:     target.Code,
	}, next
}

// mutated reports whether an outcome carries progress changes that must
// be persisted.
func mutated(kind models.OutcomeKind) bool {
	switch kind {
	case models.OutcomeAccepted, models.OutcomeAcceptedFinal, models.OutcomeIncorrect, models.OutcomeAlreadyOnFinal:
		return true
	}
	return false
}
