package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateBoardDeterministic(t *testing.T) {
	a := GenerateBoard("seed", 24, 16)
	b := GenerateBoard("seed", 24, 16)
	assert.Equal(t, a.Tiles, b.Tiles)

	c := GenerateBoard("other", 24, 16)
	assert.NotEqual(t, a.Tiles, c.Tiles)
}

func TestGenerateBoardBordered(t *testing.T) {
	b := GenerateBoard("seed", 10, 8)
	for x := 0; x < b.Width; x++ {
		assert.False(t, b.Walkable(x, 0))
		assert.False(t, b.Walkable(x, b.Height-1))
	}
	for y := 0; y < b.Height; y++ {
		assert.False(t, b.Walkable(0, y))
		assert.False(t, b.Walkable(b.Width-1, y))
	}
}

func TestBoardWalkable(t *testing.T) {
	b := openBoard(4, 4)
	b.Tiles[1*b.Width+2] = TileWall

	assert.True(t, b.Walkable(1, 1))
	assert.False(t, b.Walkable(2, 1))
	assert.False(t, b.Walkable(-1, 0))
	assert.False(t, b.Walkable(4, 0))
}

func TestBoardRows(t *testing.T) {
	b := openBoard(3, 2)
	b.Tiles[0] = TileWall
	rows := b.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "#..", rows[0])
	assert.Equal(t, "...", rows[1])
}
