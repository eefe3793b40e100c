package policy

import (
	"github.com/gridfall/gridfall-server/internal/consider"
	"github.com/gridfall/gridfall-server/internal/game"
)

// Aggressive is the built-in fallback policy: deal the most estimated
// damage, close distance otherwise, wait as a last resort.
type Aggressive struct{}

func (Aggressive) Choose(cs *consider.Considerations) (game.Action, error) {
	var (
		best      game.Action
		bestScore = -1
		move      game.Action
		hasMove   bool
	)

	err := cs.ForEach(func(c consider.Consider) error {
		switch c.Action.Kind {
		case game.ActionAttack, game.ActionCast:
			score := c.DamageTotal()*2 + c.DebuffTotal()
			if score > bestScore {
				best, bestScore = c.Action, score
			}
		case game.ActionMove:
			// The engine lists the distance-closing step first.
			if !hasMove {
				move, hasMove = c.Action, true
			}
		}
		return nil
	})
	if err != nil {
		return game.Wait(), err
	}

	if bestScore > 0 {
		return best, nil
	}
	if hasMove {
		return move, nil
	}
	if bestScore == 0 {
		return best, nil
	}
	return game.Wait(), nil
}
