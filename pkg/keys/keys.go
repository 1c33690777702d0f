// Package keys holds the immutable ordered catalog of hunt keys. The
// catalog is built once at startup from configuration and shared read-only
// afterwards; it needs no synchronization.
package keys

import (
	"fmt"
	"sort"
	"strings"

	"huntd/pkg/models"
)

// Definition is one entry of the hunt: a clue, the answer that unlocks the
// next clue and an optional code revealed on solve. The terminal entry
// (ordinal -1) has a clue only.
type Definition struct {
	Ordinal int
	Clue    string
	// Answer is lowercase-normalized at load time. Empty only for the
	// terminal key.
	Answer string
	Code   string
}

// Terminal reports whether this is the terminal (decoding) key.
func (d Definition) Terminal() bool { return d.Ordinal == models.TerminalOrdinal }

// Sequence is the validated, ordered key catalog.
type Sequence struct {
	byOrdinal map[int]Definition
	ordinals  []int // regular ordinals 1..N in order
}

// Entry mirrors the configuration surface: one key as it appears in the
// config file before validation.
type Entry struct {
	Ordinal int    `yaml:"ordinal"`
	Clue    string `yaml:"clue"`
	Answer  string `yaml:"answer,omitempty"`
	Code    string `yaml:"code,omitempty"`
}

// ConfigError reports a malformed key catalog. It is fatal at startup and
// never produced at runtime.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string { return "hunt keys: " + e.msg }

func cfgErrf(format string, args ...any) error {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}

// New validates entries and builds a Sequence. Regular ordinals must be
// exactly 1..N with no gaps or duplicates; exactly one terminal entry must
// exist and it must not carry an answer.
func New(entries []Entry) (*Sequence, error) {
	if len(entries) == 0 {
		return nil, cfgErrf("no keys configured")
	}

	byOrdinal := make(map[int]Definition, len(entries))
	var ordinals []int
	terminals := 0
	for _, e := range entries {
		if _, dup := byOrdinal[e.Ordinal]; dup {
			return nil, cfgErrf("duplicate ordinal %d", e.Ordinal)
		}
		if strings.TrimSpace(e.Clue) == "" {
			return nil, cfgErrf("key %d has no clue", e.Ordinal)
		}
		switch {
		case e.Ordinal == models.TerminalOrdinal:
			if strings.TrimSpace(e.Answer) != "" {
				return nil, cfgErrf("terminal key must not have an answer")
			}
			terminals++
		case e.Ordinal >= 1:
			if strings.TrimSpace(e.Answer) == "" {
				return nil, cfgErrf("key %d has no answer", e.Ordinal)
			}
			ordinals = append(ordinals, e.Ordinal)
		default:
			return nil, cfgErrf("invalid ordinal %d", e.Ordinal)
		}
		byOrdinal[e.Ordinal] = Definition{
			Ordinal: e.Ordinal,
			Clue:    e.Clue,
			Answer:  Normalize(e.Answer),
			Code:    e.Code,
		}
	}

	if terminals == 0 {
		return nil, cfgErrf("missing terminal key (ordinal %d)", models.TerminalOrdinal)
	}
	if len(ordinals) == 0 {
		return nil, cfgErrf("no regular keys configured")
	}
	sort.Ints(ordinals)
	for i, o := range ordinals {
		if o != i+1 {
			return nil, cfgErrf("ordinals are not contiguous: expected %d, found %d", i+1, o)
		}
	}

	return &Sequence{byOrdinal: byOrdinal, ordinals: ordinals}, nil
}

// Lookup returns the definition for an ordinal.
func (s *Sequence) Lookup(ordinal int) (Definition, bool) {
	d, ok := s.byOrdinal[ordinal]
	return d, ok
}

// First returns the ordinal every new user starts on.
func (s *Sequence) First() int { return s.ordinals[0] }

// Next returns the ordinal that follows the given one. After the highest
// regular ordinal comes the terminal key; the terminal key has no next and
// reports ok=false.
func (s *Sequence) Next(ordinal int) (int, bool) {
	if ordinal == models.TerminalOrdinal {
		return 0, false
	}
	if ordinal == s.ordinals[len(s.ordinals)-1] {
		return models.TerminalOrdinal, true
	}
	if _, ok := s.byOrdinal[ordinal+1]; ok {
		return ordinal + 1, true
	}
	return 0, false
}

// IsTerminal reports whether the ordinal names the terminal key.
func (s *Sequence) IsTerminal(ordinal int) bool { return ordinal == models.TerminalOrdinal }

// Terminal returns the terminal key definition.
func (s *Sequence) Terminal() Definition { return s.byOrdinal[models.TerminalOrdinal] }

// Total returns the number of regular keys.
func (s *Sequence) Total() int { return len(s.ordinals) }

// MatchesAny reports whether the normalized submission equals the answer
// of any regular key. Used to spot correct guesses made out of order.
func (s *Sequence) MatchesAny(normalized string) bool {
	if normalized == "" {
		return false
	}
	for _, o := range s.ordinals {
		if s.byOrdinal[o].Answer == normalized {
			return true
		}
	}
	return false
}

// strippedChars are removed from submissions before comparison; users DM
// answers with stray quoting and punctuation around them.
const strippedChars = ".,!?-/>`\"'"

// Normalize prepares a raw submission (or configured answer) for
// comparison: trim, drop common punctuation, lowercase. Comparison is
// exact after normalization; no partial-match hints are ever derived.
func Normalize(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(strippedChars, r) {
			return -1
		}
		return r
	}, raw)
	return strings.ToLower(strings.TrimSpace(cleaned))
}
