// Package sim advances the world one actor-turn at a time, routing
// control to either the client input path or the consideration engine.
package sim

import (
	"errors"
	"fmt"

	"github.com/gridfall/gridfall-server/internal/consider"
	"github.com/gridfall/gridfall-server/internal/console"
	"github.com/gridfall/gridfall-server/internal/game"
	"github.com/gridfall/gridfall-server/internal/policy"
)

// State is where the scheduler currently is.
type State int

const (
	// The ready piece is player controlled; the loop idles on client
	// I/O until a valid Action packet arrives for it.
	AwaitingInput State = iota
	// The ready piece is not player controlled; its turn resolves
	// synchronously.
	Resolving
)

// ErrWrongTurn rejects a player action when the ready piece is not
// player controlled.
var ErrWrongTurn = errors.New("not a player-controlled turn")

// Scheduler owns "whose turn is it". It must only be driven from the
// single authority goroutine.
type Scheduler struct {
	world    *game.World
	engine   consider.Engine
	policies *policy.Set
	console  console.Handle

	state State
}

func NewScheduler(w *game.World, policies *policy.Set, con console.Handle) *Scheduler {
	return &Scheduler{
		world:    w,
		policies: policies,
		console:  con,
	}
}

func (s *Scheduler) State() State { return s.state }

func (s *Scheduler) World() *game.World { return s.world }

// Ready returns the piece eligible for the next turn.
func (s *Scheduler) Ready() *game.Piece { return s.world.NextPiece() }

// Step advances the simulation by at most one actor-turn. It reports
// whether observable state changed. A player-controlled ready piece
// parks the scheduler in AwaitingInput and changes nothing.
//
// A decision failure (a script consuming the considerations twice, or
// erroring out) is returned for the operator's benefit, but the turn
// still resolves with a safe Wait so one broken script cannot stall
// the world.
func (s *Scheduler) Step() (bool, error) {
	ready := s.world.NextPiece()
	if ready == nil {
		return false, nil
	}
	if ready.PlayerControlled {
		s.state = AwaitingInput
		return false, nil
	}
	s.state = Resolving

	var decisionErr error
	cs := s.engine.Score(s.world, ready)
	pol := s.policies.For(ready.Sheet.OnConsider)
	action, err := pol.Choose(cs)
	if err != nil {
		decisionErr = fmt.Errorf("decision policy for %s: %w", ready.Sheet.Name, err)
		action = game.Wait()
	}

	if err := s.world.Perform(s.console, action); err != nil {
		// The engine only emits legal actions, so this is a policy
		// inventing its own. Burn the turn instead of looping.
		decisionErr = errors.Join(decisionErr, fmt.Errorf("apply %s action: %w", ready.Sheet.Name, err))
		if err := s.world.Perform(s.console, game.Wait()); err != nil {
			return false, errors.Join(decisionErr, err)
		}
	}
	return true, decisionErr
}

// PerformPlayer applies a client-submitted action for the ready piece.
// Ownership is the server's concern; the scheduler only checks that
// the world is actually awaiting player input.
func (s *Scheduler) PerformPlayer(action game.Action) error {
	ready := s.world.NextPiece()
	if ready == nil || !ready.PlayerControlled {
		return ErrWrongTurn
	}
	if err := s.world.Perform(s.console, action); err != nil {
		return err
	}
	s.state = Resolving
	return nil
}
