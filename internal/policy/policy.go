// Package policy selects one consideration per non-player turn.
// Policies are resolved by name from a character sheet; the
// consideration engine knows nothing about any of them.
package policy

import (
	"github.com/gridfall/gridfall-server/internal/consider"
	"github.com/gridfall/gridfall-server/internal/game"
)

// Policy picks an action from a scored candidate list. It is invoked
// exactly once per non-player turn and must consume the full list; the
// list cannot be presented twice.
type Policy interface {
	Choose(cs *consider.Considerations) (game.Action, error)
}

// Set resolves sheet policy names to implementations, with a fallback
// for unnamed or unknown policies.
type Set struct {
	policies map[string]Policy
	fallback Policy
}

func NewSet(fallback Policy) *Set {
	return &Set{
		policies: make(map[string]Policy),
		fallback: fallback,
	}
}

func (s *Set) Register(name string, p Policy) {
	s.policies[name] = p
}

// For returns the policy registered under name, or the fallback.
func (s *Set) For(name string) Policy {
	if p, ok := s.policies[name]; ok {
		return p
	}
	return s.fallback
}

// Names lists the registered policy names.
func (s *Set) Names() []string {
	out := make([]string, 0, len(s.policies))
	for name := range s.policies {
		out = append(out, name)
	}
	return out
}
