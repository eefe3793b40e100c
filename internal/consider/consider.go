// Package consider enumerates and scores potential actions for a
// piece. This mainly drives enemy logic; the heuristics are
// intentionally very rough estimations, trading accuracy for low cost
// since scoring runs once per non-player turn.
package consider

import (
	"errors"

	"github.com/google/uuid"

	"github.com/gridfall/gridfall-server/internal/game"
)

// ErrExhausted reports a Considerations list consumed more than once.
// That is a programmer (or script) error and fails loudly rather than
// silently re-scoring.
var ErrExhausted = errors.New("considerations list has been exhausted")

// HeuristicKind discriminates the Heuristic union.
type HeuristicKind string

const (
	// Estimated HP loss inflicted on a target.
	HeuristicDamage HeuristicKind = "damage"
	// Rough measure of lasting stat loss from a debuff; a bleed stack
	// counts as 1 even though its real effect is more variable.
	HeuristicDebuff HeuristicKind = "debuff"
	// Destination of a movement candidate.
	HeuristicMove HeuristicKind = "move"
)

// Heuristic is one rough approximation of an action's outcome.
type Heuristic struct {
	Kind   HeuristicKind
	Target uuid.UUID
	Amount int
	X, Y   int
}

// Consider is one scored candidate: an immediately legal action plus
// its outcome estimates. Never mutated after creation.
type Consider struct {
	Action     game.Action
	Heuristics []Heuristic
}

// DamageTotal sums the damage estimates.
func (c Consider) DamageTotal() int {
	total := 0
	for _, h := range c.Heuristics {
		if h.Kind == HeuristicDamage {
			total += h.Amount
		}
	}
	return total
}

// DebuffTotal sums the debuff estimates.
func (c Consider) DebuffTotal() int {
	total := 0
	for _, h := range c.Heuristics {
		if h.Kind == HeuristicDebuff {
			total += h.Amount
		}
	}
	return total
}

// Movement returns the destination of a move candidate.
func (c Consider) Movement() (x, y int, ok bool) {
	for _, h := range c.Heuristics {
		if h.Kind == HeuristicMove {
			return h.X, h.Y, true
		}
	}
	return 0, 0, false
}

// Considerations is a one-shot list: a decision policy receives it
// exactly once and must consume it completely.
type Considerations struct {
	list     []Consider
	consumed bool
}

func NewConsiderations(list []Consider) *Considerations {
	return &Considerations{list: list}
}

// Len reports the number of candidates without consuming the list.
func (cs *Considerations) Len() int { return len(cs.list) }

// ForEach consumes the list, invoking fn for every candidate. A second
// call returns ErrExhausted.
func (cs *Considerations) ForEach(fn func(Consider) error) error {
	if cs.consumed {
		return ErrExhausted
	}
	cs.consumed = true
	for _, c := range cs.list {
		if err := fn(c); err != nil {
			return err
		}
	}
	return nil
}
