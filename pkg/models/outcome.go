package models

// OutcomeKind tags the result of a single submission. Outcomes are values,
// not errors: a wrong guess or a closed hunt is a normal, typed result.
type OutcomeKind string

const (
	// OutcomeAccepted means the guess matched the current key and the user
	// advanced to a regular next key.
	OutcomeAccepted OutcomeKind = "accepted"
	// OutcomeAcceptedFinal means the guess matched the last regular key and
	// the user advanced onto the terminal key.
	OutcomeAcceptedFinal OutcomeKind = "accepted_final"
	// OutcomeIncorrect means the guess did not match the current key.
	OutcomeIncorrect OutcomeKind = "incorrect"
	// OutcomeAlreadyCompleted means the user had already finished the hunt.
	OutcomeAlreadyCompleted OutcomeKind = "already_completed"
	// OutcomeAlreadyOnFinal means the user sits on the terminal key, which
	// takes no answer; the terminal clue is re-served.
	OutcomeAlreadyOnFinal OutcomeKind = "already_on_final"
	// OutcomeHuntNotActive means the submission arrived outside the hunt
	// window.
	OutcomeHuntNotActive OutcomeKind = "hunt_not_active"
	// OutcomeTryAgain means the store kept failing and the submission was
	// not evaluated to a durable result.
	OutcomeTryAgain OutcomeKind = "try_again"
)

// InactiveReason qualifies OutcomeHuntNotActive.
type InactiveReason string

const (
	ReasonNotStarted InactiveReason = "not_started"
	ReasonEnded      InactiveReason = "ended"
)

// Outcome is the structured result of one submission. Produced fresh per
// submission and returned to the caller; never persisted.
type Outcome struct {
	Kind OutcomeKind `json:"kind"`
	// NextClue is set for Accepted (clue of the new current key) and for
	// AcceptedFinal / AlreadyOnFinal (the terminal clue).
	NextClue string `json:"next_clue,omitempty"`
	// Code is the unlock code of the key just solved, when it has one.
	Code string `json:"code,omitempty"`
	// Reason is set for HuntNotActive.
	Reason InactiveReason `json:"reason,omitempty"`
}

// Correct reports whether the outcome represents an accepted guess.
func (o Outcome) Correct() bool {
	return o.Kind == OutcomeAccepted || o.Kind == OutcomeAcceptedFinal
}

// ActivityEvent is the one-way notification emitted after each submission.
// Delivery is best effort; hunt-state durability never depends on it.
type ActivityEvent struct {
	UserID  string      `json:"user_id"`
	TS      int64       `json:"ts"`
	Ordinal int         `json:"ordinal"`
	Outcome OutcomeKind `json:"outcome"`
	Correct bool        `json:"correct"`
	// WrongOrder is set when an incorrect guess matched some other key's
	// answer.
	WrongOrder bool `json:"wrong_order,omitempty"`
}
