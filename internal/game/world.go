package game

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gridfall/gridfall-server/internal/console"
)

// Rule violations recovered by ignoring the action and resyncing the
// offending client. None of them mutate world state.
var (
	ErrNoPieces       = errors.New("no live pieces")
	ErrBlocked        = errors.New("destination is blocked")
	ErrBadStep        = errors.New("move must be a single step")
	ErrUnknownAbility = errors.New("piece does not know that ability")
	ErrNoTarget       = errors.New("no such target")
	ErrOutOfRange     = errors.New("target out of range")
	ErrInsufficientSP = errors.New("not enough soul points")
	ErrUncastable     = errors.New("spell does not match caster's skillset")
)

// World owns every piece and the board. All mutation funnels through
// Perform on a single goroutine; everything else sees read-only
// snapshots or piece ids.
type World struct {
	Board *Board

	pieces []*Piece
	byID   map[uuid.UUID]*Piece

	// Monotonic count of applied actions.
	Turn uint64

	statuses map[string]*StatusDef
}

// NewWorld wraps a generated board. Status definitions are needed at
// apply time for attack infliction.
func NewWorld(board *Board, statuses map[string]*StatusDef) *World {
	return &World{
		Board:    board,
		byID:     make(map[uuid.UUID]*Piece),
		statuses: statuses,
	}
}

// AddPiece registers a piece at the given position. Insertion order is
// the tie-break for turn scheduling, so callers should add pieces in a
// stable order.
func (w *World) AddPiece(p *Piece, x, y int) {
	p.X, p.Y = x, y
	w.pieces = append(w.pieces, p)
	w.byID[p.ID] = p
}

// RemovePiece drops a piece from the arena. References by id simply
// stop resolving.
func (w *World) RemovePiece(id uuid.UUID) {
	delete(w.byID, id)
	for i, p := range w.pieces {
		if p.ID == id {
			w.pieces = append(w.pieces[:i], w.pieces[i+1:]...)
			return
		}
	}
}

// Piece resolves an id to a live piece, or nil.
func (w *World) Piece(id uuid.UUID) *Piece {
	return w.byID[id]
}

// Pieces returns the live pieces in insertion order. Callers must not
// reorder the slice.
func (w *World) Pieces() []*Piece { return w.pieces }

// PieceAt returns the piece standing on a tile, or nil.
func (w *World) PieceAt(x, y int) *Piece {
	for _, p := range w.pieces {
		if p.X == x && p.Y == y {
			return p
		}
	}
	return nil
}

// NextPiece is the ready actor: lowest delay, ties broken by insertion
// order so repeated runs are deterministic.
func (w *World) NextPiece() *Piece {
	var next *Piece
	for _, p := range w.pieces {
		if next == nil || p.Delay < next.Delay {
			next = p
		}
	}
	return next
}

// Perform applies one action for the currently ready piece. This is
// the single application path shared by player input and AI turns.
// Validation happens before any mutation; a returned error means the
// world is unchanged.
func (w *World) Perform(out console.Handle, action Action) error {
	actor := w.NextPiece()
	if actor == nil {
		return ErrNoPieces
	}

	var apply func()
	cost := actor.Sheet.Speed

	switch action.Kind {
	case ActionWait:
		cost /= 2
		apply = func() {}

	case ActionMove:
		if action.DX < -1 || action.DX > 1 || action.DY < -1 || action.DY > 1 ||
			(action.DX == 0 && action.DY == 0) {
			return ErrBadStep
		}
		nx, ny := actor.X+action.DX, actor.Y+action.DY
		if !w.Board.Walkable(nx, ny) || w.PieceAt(nx, ny) != nil {
			return fmt.Errorf("%w: (%d, %d)", ErrBlocked, nx, ny)
		}
		apply = func() {
			actor.X, actor.Y = nx, ny
		}

	case ActionAttack:
		attack := actor.AttackByID(action.Attack)
		if attack == nil {
			return fmt.Errorf("%w: attack %q", ErrUnknownAbility, action.Attack)
		}
		target := w.Piece(action.Target)
		if target == nil || target == actor {
			return ErrNoTarget
		}
		if chebyshev(actor.X, actor.Y, target.X, target.Y) > 1 {
			return ErrOutOfRange
		}
		if attack.Cost > 0 {
			cost = attack.Cost
		}
		apply = func() {
			damage := maxInt(0, attack.Magnitude+actor.Stats().Power-target.Stats().Defense)
			target.HP -= damage
			if attack.Inflicts != "" {
				if def, ok := w.statuses[attack.Inflicts]; ok {
					target.Inflict(def, attack.InflictMagnitude)
				}
			}
			out.SendMessage(console.Message{
				Kind: console.KindCombat,
				Text: fmt.Sprintf("%s hits %s for %d", actor.Sheet.Name, target.Sheet.Name, damage),
			})
			w.reap(out, target)
		}

	case ActionCast:
		spell := actor.SpellByID(action.Spell)
		if spell == nil {
			return fmt.Errorf("%w: spell %q", ErrUnknownAbility, action.Spell)
		}
		if !spell.CastableBy(actor) {
			return ErrInsufficientSP
		}
		affinity := actor.Sheet.Skillset.Affinity(spell.Energy, spell.Harmony)
		if affinity == AffinityUncastable {
			return ErrUncastable
		}
		target := w.Piece(action.Target)
		if target == nil {
			return ErrNoTarget
		}
		if chebyshev(actor.X, actor.Y, target.X, target.Y) > spell.Range {
			return ErrOutOfRange
		}
		if spell.Cost > 0 {
			cost = spell.Cost
		}
		apply = func() {
			actor.SP -= spell.Level
			magnitude := affinity.Magnitude(spell.Magnitude + actor.Stats().Magic)
			damage := magnitude - target.Stats().Resistance
			if damage < spell.PierceThreshold || damage <= 0 {
				out.SendMessage(console.Message{
					Kind: console.KindCombat,
					Text: fmt.Sprintf("%s's %s fizzles against %s", actor.Sheet.Name, spell.Name, target.Sheet.Name),
				})
				return
			}
			target.HP -= damage
			out.SendMessage(console.Message{
				Kind: console.KindCombat,
				Text: fmt.Sprintf("%s's %s strikes %s for %d", actor.Sheet.Name, spell.Name, target.Sheet.Name, damage),
			})
			w.reap(out, target)
		}

	default:
		return fmt.Errorf("%w: action kind %q", ErrUnknownAbility, action.Kind)
	}

	// Past this point the action is committed.
	actor.NextAction = &action
	actor.NewTurn()
	apply()
	actor.NextAction = nil
	actor.Delay += cost
	w.normalizeDelays()
	w.Turn++
	return nil
}

// reap removes a piece whose HP dropped to zero.
func (w *World) reap(out console.Handle, p *Piece) {
	if p.HP > 0 {
		return
	}
	out.SendMessage(console.Message{
		Kind: console.KindSystem,
		Text: fmt.Sprintf("%s falls", p.Sheet.Name),
	})
	w.RemovePiece(p.ID)
}

// normalizeDelays keeps delays relative by flooring the minimum at
// zero. Only relative order matters to the scheduler.
func (w *World) normalizeDelays() {
	if len(w.pieces) == 0 {
		return
	}
	min := w.pieces[0].Delay
	for _, p := range w.pieces[1:] {
		if p.Delay < min {
			min = p.Delay
		}
	}
	if min <= 0 {
		return
	}
	for _, p := range w.pieces {
		p.Delay -= min
	}
}

func chebyshev(x1, y1, x2, y2 int) int {
	dx := absInt(x1 - x2)
	dy := absInt(y1 - y2)
	return maxInt(dx, dy)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// StatusView is the serialized form of one active effect.
type StatusView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Magnitude int    `json:"magnitude"`
}

// PieceView is the serialized form of one piece.
type PieceView struct {
	ID               uuid.UUID    `json:"id"`
	Name             string       `json:"name"`
	X                int          `json:"x"`
	Y                int          `json:"y"`
	HP               int          `json:"hp"`
	SP               int          `json:"sp"`
	MaxHP            int          `json:"max_hp"`
	MaxSP            int          `json:"max_sp"`
	Delay            Aut          `json:"delay"`
	PlayerControlled bool         `json:"player_controlled"`
	Alliance         Alliance     `json:"alliance"`
	Statuses         []StatusView `json:"statuses,omitempty"`
}

// BoardView is the serialized board layout.
type BoardView struct {
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Rows   []string `json:"rows"`
}

// Snapshot is the full, read-only projection of the world sent to
// clients. Pieces appear in insertion order and statuses in id order,
// so identical worlds serialize to identical bytes.
type Snapshot struct {
	Turn   uint64      `json:"turn"`
	Board  BoardView   `json:"board"`
	Ready  uuid.UUID   `json:"ready"`
	Pieces []PieceView `json:"pieces"`
}

// Snapshot projects the current world state.
func (w *World) Snapshot() Snapshot {
	snap := Snapshot{
		Turn: w.Turn,
		Board: BoardView{
			Width:  w.Board.Width,
			Height: w.Board.Height,
			Rows:   w.Board.Rows(),
		},
		Pieces: make([]PieceView, 0, len(w.pieces)),
	}
	if next := w.NextPiece(); next != nil {
		snap.Ready = next.ID
	}
	for _, p := range w.pieces {
		stats := p.Stats()
		view := PieceView{
			ID:               p.ID,
			Name:             p.Sheet.Name,
			X:                p.X,
			Y:                p.Y,
			HP:               p.HP,
			SP:               p.SP,
			MaxHP:            stats.Heart,
			MaxSP:            stats.Soul,
			Delay:            p.Delay,
			PlayerControlled: p.PlayerControlled,
			Alliance:         p.Alliance,
		}
		for _, s := range sortedStatuses(p.Statuses) {
			view.Statuses = append(view.Statuses, StatusView{
				ID:        s.ID,
				Name:      s.Def.Name,
				Magnitude: s.Magnitude,
			})
		}
		snap.Pieces = append(snap.Pieces, view)
	}
	return snap
}

// SnapshotJSON serializes the snapshot for a World packet.
func (w *World) SnapshotJSON() (json.RawMessage, error) {
	data, err := json.Marshal(w.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("marshal world snapshot: %w", err)
	}
	return data, nil
}
