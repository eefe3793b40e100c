// Package content is the read-only catalogue of game data: attack,
// spell, status and character sheet definitions. It is loaded once at
// startup; nothing in the hot path mutates it.
package content

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gridfall/gridfall-server/internal/game"
)

//go:embed data/*.json
var defaults embed.FS

// ErrNotFound reports a lookup for an id the catalogue doesn't carry.
var ErrNotFound = errors.New("content: not found")

// Catalogue holds every definition keyed by id.
type Catalogue struct {
	Attacks  map[string]*game.Attack
	Spells   map[string]*game.Spell
	Statuses map[string]*game.StatusDef
	Sheets   map[string]*game.Sheet
}

// Default loads the embedded definitions.
func Default() (*Catalogue, error) {
	c := &Catalogue{
		Attacks:  make(map[string]*game.Attack),
		Spells:   make(map[string]*game.Spell),
		Statuses: make(map[string]*game.StatusDef),
		Sheets:   make(map[string]*game.Sheet),
	}
	if err := c.loadFS(defaults.ReadFile); err != nil {
		return nil, err
	}
	return c, nil
}

// Load starts from the embedded defaults and overlays definitions from
// a directory, file by file. Missing files are fine.
func Load(dir string) (*Catalogue, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return c, nil
	}
	read := func(name string) ([]byte, error) {
		return os.ReadFile(filepath.Join(dir, filepath.Base(name)))
	}
	if err := c.loadFS(func(name string) ([]byte, error) {
		data, err := read(name)
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return data, err
	}); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalogue) loadFS(read func(string) ([]byte, error)) error {
	if err := loadInto(read, "data/attacks.json", c.Attacks, func(a *game.Attack) string { return a.ID }); err != nil {
		return err
	}
	if err := loadInto(read, "data/spells.json", c.Spells, func(s *game.Spell) string { return s.ID }); err != nil {
		return err
	}
	if err := loadInto(read, "data/statuses.json", c.Statuses, func(s *game.StatusDef) string { return s.ID }); err != nil {
		return err
	}
	return loadInto(read, "data/sheets.json", c.Sheets, func(s *game.Sheet) string { return s.ID })
}

func loadInto[T any](read func(string) ([]byte, error), name string, dst map[string]*T, id func(*T) string) error {
	data, err := read(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if data == nil {
		return nil
	}
	var defs []*T
	if err := json.Unmarshal(data, &defs); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	for _, def := range defs {
		dst[id(def)] = def
	}
	return nil
}

// NewPiece instantiates a piece from a sheet id, resolving its attack
// and spell lists.
func (c *Catalogue) NewPiece(sheetID string) (*game.Piece, error) {
	sheet, ok := c.Sheets[sheetID]
	if !ok {
		return nil, fmt.Errorf("%w: sheet %q", ErrNotFound, sheetID)
	}
	attacks := make([]*game.Attack, 0, len(sheet.Attacks))
	for _, id := range sheet.Attacks {
		a, ok := c.Attacks[id]
		if !ok {
			return nil, fmt.Errorf("%w: attack %q (sheet %q)", ErrNotFound, id, sheetID)
		}
		attacks = append(attacks, a)
	}
	spells := make([]*game.Spell, 0, len(sheet.Spells))
	for _, id := range sheet.Spells {
		s, ok := c.Spells[id]
		if !ok {
			return nil, fmt.Errorf("%w: spell %q (sheet %q)", ErrNotFound, id, sheetID)
		}
		spells = append(spells, s)
	}
	return game.NewPiece(*sheet, attacks, spells), nil
}
