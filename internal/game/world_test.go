package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridfall/gridfall-server/internal/console"
)

func openBoard(width, height int) *Board {
	b := &Board{Width: width, Height: height, Tiles: make([]Tile, width*height)}
	for i := range b.Tiles {
		b.Tiles[i] = TileFloor
	}
	return b
}

func testSheet(name string, speed Aut) Sheet {
	return Sheet{
		ID:    name,
		Name:  name,
		Level: 10,
		Bases: Stats{Heart: 20, Soul: 10, Power: 3, Defense: 1, Magic: 4, Resistance: 1},
		Skillset: Skillset{
			MajorEnergy:  EnergyNegative,
			MinorHarmony: HarmonyChaos,
		},
		Speed: speed,
	}
}

var (
	scratch = &Attack{ID: "scratch", Name: "Scratch", Magnitude: 4}
	venom   = &Attack{ID: "venom", Name: "Venom", Magnitude: 2, Inflicts: "bleed", InflictMagnitude: 2}
	chill   = &Spell{ID: "chill", Name: "Chill", Energy: EnergyNegative, Harmony: HarmonyChaos, Level: 1, Magnitude: 8, Range: 4}
)

var bleedDef = &StatusDef{
	ID:           "bleed",
	Name:         "Bleed",
	Duration:     DurationRest,
	PerMagnitude: Stats{Defense: 1},
}

func testWorld(t *testing.T) (*World, *Piece, *Piece) {
	t.Helper()
	w := NewWorld(openBoard(8, 8), map[string]*StatusDef{"bleed": bleedDef})

	hero := NewPiece(testSheet("hero", 120), []*Attack{scratch, venom}, []*Spell{chill})
	hero.PlayerControlled = true
	hero.Alliance = AllianceFriendly
	w.AddPiece(hero, 2, 2)

	rat := NewPiece(testSheet("rat", 120), []*Attack{scratch}, nil)
	w.AddPiece(rat, 3, 2)
	return w, hero, rat
}

func TestNextPieceOrdering(t *testing.T) {
	w, hero, rat := testWorld(t)

	// Equal delays resolve in insertion order.
	require.Same(t, hero, w.NextPiece())

	hero.Delay = 50
	require.Same(t, rat, w.NextPiece())

	rat.Delay = 50
	require.Same(t, hero, w.NextPiece())
}

func TestPerformWaitHalvesCost(t *testing.T) {
	w, hero, rat := testWorld(t)

	require.NoError(t, w.Perform(console.Nop{}, Wait()))
	assert.Equal(t, Aut(60), hero.Delay)
	assert.Equal(t, Aut(0), rat.Delay)
	assert.Equal(t, uint64(1), w.Turn)
	require.Same(t, rat, w.NextPiece())
}

func TestPerformMove(t *testing.T) {
	tests := []struct {
		name   string
		dx, dy int
		err    error
	}{
		{name: "step left", dx: -1, dy: 0},
		{name: "step diagonal", dx: -1, dy: 1},
		{name: "no step", dx: 0, dy: 0, err: ErrBadStep},
		{name: "two tiles", dx: 2, dy: 0, err: ErrBadStep},
		{name: "onto occupied tile", dx: 1, dy: 0, err: ErrBlocked},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, hero, _ := testWorld(t)
			before := w.Snapshot()

			err := w.Perform(console.Nop{}, MoveAction(tc.dx, tc.dy))
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				assert.Equal(t, before, w.Snapshot(), "rejected action must not mutate")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 2+tc.dx, hero.X)
			assert.Equal(t, 2+tc.dy, hero.Y)
		})
	}
}

func TestPerformMoveIntoWall(t *testing.T) {
	w, hero, _ := testWorld(t)
	w.Board.Tiles[2*w.Board.Width+1] = TileWall

	err := w.Perform(console.Nop{}, MoveAction(-1, 0))
	require.ErrorIs(t, err, ErrBlocked)
	assert.Equal(t, 2, hero.X)
}

func TestPerformAttack(t *testing.T) {
	w, hero, rat := testWorld(t)
	bus := console.NewBus()

	require.NoError(t, w.Perform(bus, AttackAction("scratch", rat.ID)))

	// magnitude 4 + power 3 - defense 1
	assert.Equal(t, rat.Stats().Heart-6, rat.HP)
	assert.Equal(t, hero.Sheet.Speed, hero.Delay)

	msgs := bus.Drain()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Text, "hero hits rat for 6")
}

func TestPerformAttackValidation(t *testing.T) {
	w, hero, rat := testWorld(t)

	err := w.Perform(console.Nop{}, AttackAction("headbutt", rat.ID))
	require.ErrorIs(t, err, ErrUnknownAbility)

	err = w.Perform(console.Nop{}, AttackAction("scratch", uuid.New()))
	require.ErrorIs(t, err, ErrNoTarget)

	err = w.Perform(console.Nop{}, AttackAction("scratch", hero.ID))
	require.ErrorIs(t, err, ErrNoTarget)

	rat.X, rat.Y = 6, 6
	err = w.Perform(console.Nop{}, AttackAction("scratch", rat.ID))
	require.ErrorIs(t, err, ErrOutOfRange)

	assert.Equal(t, uint64(0), w.Turn)
}

func TestAttackInflictsAndMergesStatus(t *testing.T) {
	w, hero, rat := testWorld(t)

	require.NoError(t, w.Perform(console.Nop{}, AttackAction("venom", rat.ID)))
	require.Contains(t, rat.Statuses, "bleed")
	assert.Equal(t, 2, rat.Statuses["bleed"].Magnitude)
	assert.Equal(t, 0, rat.Stats().Defense, "debuffs floor stats at zero")

	// The hero acts again before the rat; reset delays to force it.
	hero.Delay = 0
	require.NoError(t, w.Perform(console.Nop{}, AttackAction("venom", rat.ID)))
	require.Contains(t, rat.Statuses, "bleed")
	assert.Equal(t, 4, rat.Statuses["bleed"].Magnitude, "magnitude accumulates, no duplicate entry")
	assert.Len(t, rat.Statuses, 1)
}

func TestPerformCast(t *testing.T) {
	w, hero, rat := testWorld(t)
	rat.X, rat.Y = 5, 2

	require.NoError(t, w.Perform(console.Nop{}, CastAction("chill", rat.ID)))

	// Strong affinity: magnitude 8 + magic 4, minus resistance 1.
	assert.Equal(t, rat.Stats().Heart-11, rat.HP)
	assert.Equal(t, hero.SP, hero.Stats().Soul-chill.Level)
}

func TestPerformCastValidation(t *testing.T) {
	w, hero, rat := testWorld(t)

	hero.SP = 0
	err := w.Perform(console.Nop{}, CastAction("chill", rat.ID))
	require.ErrorIs(t, err, ErrInsufficientSP)
	hero.SP = 10

	rat.X, rat.Y = 7, 7
	err = w.Perform(console.Nop{}, CastAction("chill", rat.ID))
	require.ErrorIs(t, err, ErrOutOfRange)
	rat.X, rat.Y = 3, 2

	hero.Sheet.Skillset = Skillset{MajorEnergy: EnergyPositive}
	err = w.Perform(console.Nop{}, CastAction("chill", rat.ID))
	require.ErrorIs(t, err, ErrUncastable)

	assert.Equal(t, uint64(0), w.Turn)
	assert.Equal(t, 10, hero.SP)
}

func TestCastFizzlesBelowPierceThreshold(t *testing.T) {
	w, hero, rat := testWorld(t)
	rat.Sheet.Bases.Resistance = 50
	hpBefore := rat.HP

	bus := console.NewBus()
	require.NoError(t, w.Perform(bus, CastAction("chill", rat.ID)))

	assert.Equal(t, hpBefore, rat.HP)
	assert.Equal(t, hero.Stats().Soul-chill.Level, hero.SP, "fizzled casts still spend SP")
	msgs := bus.Drain()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Text, "fizzles")
}

func TestReapRemovesDeadPieces(t *testing.T) {
	w, _, rat := testWorld(t)
	rat.HP = 1
	bus := console.NewBus()

	require.NoError(t, w.Perform(bus, AttackAction("scratch", rat.ID)))

	assert.Nil(t, w.Piece(rat.ID))
	assert.Len(t, w.Pieces(), 1)
	msgs := bus.Drain()
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[1].Text, "rat falls")
}

func TestDelayNormalization(t *testing.T) {
	w, hero, rat := testWorld(t)
	hero.Delay = 100
	rat.Delay = 100

	require.NoError(t, w.Perform(console.Nop{}, Wait()))

	// hero 160, rat 100 before normalization; minimum floors at zero.
	assert.Equal(t, Aut(60), hero.Delay)
	assert.Equal(t, Aut(0), rat.Delay)
}

func TestSnapshotDeterministic(t *testing.T) {
	build := func() *World {
		w := NewWorld(openBoard(6, 6), map[string]*StatusDef{"bleed": bleedDef})
		a := NewPiece(testSheet("a", 100), []*Attack{scratch}, nil)
		a.ID = uuid.MustParse("00000000-0000-0000-0000-000000000001")
		w.AddPiece(a, 1, 1)
		b := NewPiece(testSheet("b", 100), nil, nil)
		b.ID = uuid.MustParse("00000000-0000-0000-0000-000000000002")
		b.Inflict(bleedDef, 3)
		w.AddPiece(b, 4, 4)
		return w
	}

	first, err := build().SnapshotJSON()
	require.NoError(t, err)
	second, err := build().SnapshotJSON()
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestSnapshotReadyAndOrder(t *testing.T) {
	w, hero, rat := testWorld(t)
	rat.Delay = 10

	snap := w.Snapshot()
	assert.Equal(t, hero.ID, snap.Ready)
	require.Len(t, snap.Pieces, 2)
	assert.Equal(t, "hero", snap.Pieces[0].Name)
	assert.Equal(t, "rat", snap.Pieces[1].Name)
	assert.Equal(t, w.Board.Rows(), snap.Board.Rows)
}
