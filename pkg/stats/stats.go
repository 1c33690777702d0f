// Package stats derives staff-facing aggregates from persisted progress
// records. Everything here is computed on demand from a full scan; hunts
// top out at a few thousand participants.
package stats

import (
	"sort"
	"strconv"

	"huntd/pkg/models"
)

// Suspicion thresholds: three keys solved inside six minutes, or more
// than six correct-but-out-of-order guesses, are implausible for a fair
// player.
const (
	fastSolveWindow      = 3
	fastSolveSpanSeconds = 360
	wrongOrderLimit      = 6
)

// Suspicious reports whether a record shows signs of answer sharing.
func Suspicious(p *models.Progress) bool {
	if p.WrongOrderGuesses > wrongOrderLimit {
		return true
	}
	if len(p.SolvedAt) >= fastSolveWindow {
		times := make([]int64, 0, len(p.SolvedAt))
		for _, ts := range p.SolvedAt {
			times = append(times, ts)
		}
		sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })
		for i := 0; i+fastSolveWindow-1 < len(times); i++ {
			if times[i+fastSolveWindow-1]-times[i] < fastSolveSpanSeconds {
				return true
			}
		}
	}
	return false
}

// Global summarizes the whole hunt for the staff dashboard.
type Global struct {
	TotalUsers        int             `json:"total_users"`
	UsersWithProgress int             `json:"users_with_progress"`
	TotalGuesses      int             `json:"total_guesses"`
	Finished          int             `json:"finished"`
	Flagged           int             `json:"flagged"`
	// UsersPerKey counts users whose current target is each ordinal;
	// completed users are counted under "completed" instead of the
	// terminal ordinal.
	UsersPerKey map[string]int `json:"users_per_key"`
	// AvgMinutesToNext maps an ordinal to the average minutes users took
	// between solving it and solving the following key.
	AvgMinutesToNext map[int]float64 `json:"avg_minutes_to_next,omitempty"`
}

// Compute builds the global summary from every persisted record.
func Compute(records []*models.Progress, firstOrdinal int) Global {
	g := Global{UsersPerKey: make(map[string]int)}
	transitions := make(map[int][]float64)

	for _, p := range records {
		g.TotalUsers++
		g.TotalGuesses += p.TotalAttempts
		if p.CurrentOrdinal != firstOrdinal || p.SolvedCount() > 0 {
			g.UsersWithProgress++
		}
		if p.Flagged {
			g.Flagged++
		}
		switch {
		case p.Completed() && p.FinalizedAt != 0:
			g.Finished++
			g.UsersPerKey["completed"]++
		case p.CurrentOrdinal == models.TerminalOrdinal:
			g.Finished++
			g.UsersPerKey["decoding"]++
		default:
			g.UsersPerKey[strconv.Itoa(p.CurrentOrdinal)]++
		}

		ordinals := append([]int(nil), p.SolvedOrdinals...)
		sort.Ints(ordinals)
		for i := 0; i+1 < len(ordinals); i++ {
			from, to := ordinals[i], ordinals[i+1]
			delta := p.SolvedAt[to] - p.SolvedAt[from]
			if delta > 0 {
				transitions[from] = append(transitions[from], float64(delta)/60)
			}
		}
	}

	if len(transitions) > 0 {
		g.AvgMinutesToNext = make(map[int]float64, len(transitions))
		for ord, mins := range transitions {
			var sum float64
			for _, m := range mins {
				sum += m
			}
			g.AvgMinutesToNext[ord] = sum / float64(len(mins))
		}
	}
	return g
}
