package game

import "sort"

// StatusDuration controls when an effect is shed.
type StatusDuration string

const (
	// Cleared when the bearer's next turn begins.
	DurationTurn StatusDuration = "turn"
	// Cleared when the bearer rests.
	DurationRest StatusDuration = "rest"
)

// StatusDef is the immutable definition of a status effect.
type StatusDef struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Duration StatusDuration `json:"duration"`

	// Flat stat loss applied while the status is active.
	Flat Stats `json:"flat,omitzero"`
	// Additional stat loss per point of accumulated magnitude. The
	// bleed effect, for example, loses one defense per stack.
	PerMagnitude Stats `json:"per_magnitude,omitzero"`
}

// Status is one active effect on a piece. Re-inflicting the same
// status accumulates magnitude instead of duplicating the entry.
type Status struct {
	Def       *StatusDef `json:"-"`
	ID        string     `json:"id"`
	Magnitude int        `json:"magnitude"`
}

// AddMagnitude stacks additional magnitude onto the effect.
func (s *Status) AddMagnitude(amount int) {
	s.Magnitude += amount
}

// Debuff reports the total stat loss this effect currently applies.
func (s *Status) Debuff() Stats {
	return s.Def.Flat.Add(s.Def.PerMagnitude.Scale(s.Magnitude))
}

// sortedStatuses returns a piece's statuses in id order so snapshots
// serialize deterministically.
func sortedStatuses(m map[string]*Status) []*Status {
	out := make([]*Status, 0, len(m))
	for _, s := range m {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
