package content

import (
	"fmt"

	"github.com/gridfall/gridfall-server/internal/game"
)

// Board size for generated floors. Vault-driven layouts are produced
// outside this core and would replace GenerateBoard wholesale.
const (
	boardWidth  = 24
	boardHeight = 16
)

// BuildWorld generates a floor and places the party (player controlled,
// friendly) from the top-left and the enemies from the bottom-right.
// Placement scans walkable tiles in a fixed order, so a given seed and
// roster always produce the same world.
func (c *Catalogue) BuildWorld(seed string, party, enemies []string) (*game.World, error) {
	board := game.GenerateBoard(seed, boardWidth, boardHeight)
	w := game.NewWorld(board, c.Statuses)

	spawn := func(sheetID string, player bool, fromTop bool) error {
		p, err := c.NewPiece(sheetID)
		if err != nil {
			return err
		}
		p.PlayerControlled = player
		if player {
			p.Alliance = game.AllianceFriendly
		}
		x, y, ok := freeTile(w, fromTop)
		if !ok {
			return fmt.Errorf("no free tile for %q", sheetID)
		}
		w.AddPiece(p, x, y)
		return nil
	}

	for _, id := range party {
		if err := spawn(id, true, true); err != nil {
			return nil, err
		}
	}
	for _, id := range enemies {
		if err := spawn(id, false, false); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func freeTile(w *game.World, fromTop bool) (int, int, bool) {
	b := w.Board
	for i := 0; i < b.Width*b.Height; i++ {
		idx := i
		if !fromTop {
			idx = b.Width*b.Height - 1 - i
		}
		x, y := idx%b.Width, idx/b.Width
		if b.Walkable(x, y) && w.PieceAt(x, y) == nil {
			return x, y, true
		}
	}
	return 0, 0, false
}
