package server

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/gridfall/gridfall-server/internal/game"
	"github.com/gridfall/gridfall-server/pkg/protocol"
)

// toGameAction converts a wire action into an engine action.
func toGameAction(a protocol.Action) (game.Action, error) {
	switch a.Kind {
	case protocol.ActWait:
		return game.Wait(), nil
	case protocol.ActMove:
		return game.MoveAction(a.DX, a.DY), nil
	case protocol.ActAttack:
		target, err := uuid.Parse(a.Target)
		if err != nil {
			return game.Action{}, fmt.Errorf("attack target: %w", err)
		}
		return game.AttackAction(a.Attack, target), nil
	case protocol.ActCast:
		target, err := uuid.Parse(a.Target)
		if err != nil {
			return game.Action{}, fmt.Errorf("cast target: %w", err)
		}
		return game.CastAction(a.Spell, target), nil
	default:
		return game.Action{}, fmt.Errorf("unknown action kind %q", a.Kind)
	}
}
