package game

import (
	"hash/fnv"
	"math/rand"
)

// Tile is one cell of the board.
type Tile byte

const (
	TileFloor Tile = '.'
	TileWall  Tile = '#'
)

// Board is the static floor layout. Pieces are tracked by the world,
// not the board.
type Board struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Tiles  []Tile `json:"-"`
}

// GenerateBoard builds a bordered floor with scattered walls. The same
// seed always produces the same layout, which keeps replays and tests
// reproducible. Proper vault-based generation lives outside this core.
func GenerateBoard(seed string, width, height int) *Board {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	b := &Board{Width: width, Height: height, Tiles: make([]Tile, width*height)}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			t := TileFloor
			if x == 0 || y == 0 || x == width-1 || y == height-1 {
				t = TileWall
			} else if rng.Intn(12) == 0 {
				t = TileWall
			}
			b.Tiles[y*width+x] = t
		}
	}
	return b
}

// InBounds reports whether the coordinate is on the board.
func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.Width && y < b.Height
}

// Walkable reports whether a piece may stand on the tile.
func (b *Board) Walkable(x, y int) bool {
	return b.InBounds(x, y) && b.Tiles[y*b.Width+x] == TileFloor
}

// Rows renders the layout as strings, one per row. Used by the world
// snapshot so clients get a compact, self-describing board.
func (b *Board) Rows() []string {
	rows := make([]string, b.Height)
	for y := 0; y < b.Height; y++ {
		rows[y] = string(b.Tiles[y*b.Width : (y+1)*b.Width])
	}
	return rows
}
