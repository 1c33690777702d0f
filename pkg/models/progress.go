package models

// TerminalOrdinal is the sentinel ordinal of the final key. It carries the
// decoding instructions and has no answer of its own.
const TerminalOrdinal = -1

// Progress is the persisted per-user hunt record. One record per user,
// keyed by the opaque user id; created lazily on first contact.
type Progress struct {
	UserID string `json:"user_id"`
	// CurrentOrdinal is the ordinal of the next key the user must solve.
	CurrentOrdinal int `json:"current_ordinal"`
	// SolvedOrdinals is always a gap-free prefix of the key sequence.
	SolvedOrdinals []int `json:"solved_ordinals,omitempty"`
	// SolvedAt maps a solved ordinal to the unix second it was solved.
	SolvedAt map[int]int64 `json:"solved_at,omitempty"`
	// AttemptCounts maps an ordinal to the number of wrong guesses made
	// while it was the current target.
	AttemptCounts map[int]int `json:"attempt_counts,omitempty"`
	// TotalAttempts counts every submission the user ever made.
	TotalAttempts int `json:"total_attempts"`
	// WrongOrderGuesses counts correct answers submitted for a key that
	// was not the current target.
	WrongOrderGuesses int `json:"wrong_order_guesses,omitempty"`
	// Flagged marks the user for staff review (solving implausibly fast
	// or guessing too many keys out of order).
	Flagged bool `json:"flagged,omitempty"`

	CreatedAt   int64 `json:"created_at"`
	CompletedAt int64 `json:"completed_at,omitempty"`
	// FinalizedAt is set by the staff finalize action once the user's
	// decoded message has been verified.
	FinalizedAt int64 `json:"finalized_at,omitempty"`

	// Version increments on every successful save and backs the
	// conditional-write check in the store.
	Version uint64 `json:"version"`
}

// Completed reports whether the user has found every key.
func (p *Progress) Completed() bool { return p.CompletedAt != 0 }

// SolvedCount returns the number of regular keys the user has solved.
func (p *Progress) SolvedCount() int { return len(p.SolvedOrdinals) }

// Clone returns a deep copy so evaluation can build a new record without
// mutating the loaded one.
func (p *Progress) Clone() *Progress {
	cp := *p
	if p.SolvedOrdinals != nil {
		cp.SolvedOrdinals = append([]int(nil), p.SolvedOrdinals...)
	}
	if p.SolvedAt != nil {
		cp.SolvedAt = make(map[int]int64, len(p.SolvedAt))
		for k, v := range p.SolvedAt {
			cp.SolvedAt[k] = v
		}
	}
	if p.AttemptCounts != nil {
		cp.AttemptCounts = make(map[int]int, len(p.AttemptCounts))
		for k, v := range p.AttemptCounts {
			cp.AttemptCounts[k] = v
		}
	}
	return &cp
}

// StatusView is the read-only projection returned by status queries.
type StatusView struct {
	UserID         string   `json:"user_id"`
	CurrentClue    string   `json:"current_clue"`
	CurrentOrdinal int      `json:"current_ordinal"`
	SolvedCount    int      `json:"solved_count"`
	TotalCount     int      `json:"total_count"`
	CodesFound     []string `json:"codes_found,omitempty"`
	Completed      bool     `json:"completed"`
	Finalized      bool     `json:"finalized"`
	StartedAt      int64    `json:"started_at,omitempty"`
}
