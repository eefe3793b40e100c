package game

import "github.com/google/uuid"

// Alliance groups pieces into sides.
type Alliance string

const (
	AllianceFriendly Alliance = "friendly"
	AllianceEnemy    Alliance = "enemy"
)

// Piece is one mutable actor on the board. The world owns every piece;
// everything else refers to pieces by id.
type Piece struct {
	ID    uuid.UUID `json:"id"`
	Sheet Sheet     `json:"sheet"`

	HP int `json:"hp"`
	SP int `json:"sp"`

	X int `json:"x"`
	Y int `json:"y"`

	// Time units until this piece may act again; the scheduler picks
	// the live piece with the lowest delay.
	Delay Aut `json:"delay"`

	PlayerControlled bool     `json:"player_controlled"`
	Alliance         Alliance `json:"alliance"`

	Statuses map[string]*Status `json:"-"`

	Attacks []*Attack `json:"-"`
	Spells  []*Spell  `json:"-"`

	// Transient slot used only while an action is being resolved.
	NextAction *Action `json:"-"`
}

// NewPiece builds a piece from a sheet, resolving its attack and spell
// ids against the provided lookups.
func NewPiece(sheet Sheet, attacks []*Attack, spells []*Spell) *Piece {
	stats := sheet.Stats()
	return &Piece{
		ID:       uuid.New(),
		Sheet:    sheet,
		HP:       stats.Heart,
		SP:       stats.Soul,
		Alliance: AllianceEnemy,
		Statuses: make(map[string]*Status),
		Attacks:  attacks,
		Spells:   spells,
	}
}

// Stats reports the piece's effective stat block after debuffs.
func (p *Piece) Stats() Stats {
	var debuffs Stats
	for _, s := range p.Statuses {
		debuffs = debuffs.Add(s.Debuff())
	}
	return p.Sheet.Stats().SubFloor(debuffs)
}

// Inflict applies a status effect, merging magnitude into an existing
// instance rather than duplicating it.
func (p *Piece) Inflict(def *StatusDef, magnitude int) {
	if s, ok := p.Statuses[def.ID]; ok {
		s.AddMagnitude(magnitude)
		return
	}
	p.Statuses[def.ID] = &Status{Def: def, ID: def.ID, Magnitude: magnitude}
}

// NewTurn sheds effects that only last until the piece acts again.
func (p *Piece) NewTurn() {
	for id, s := range p.Statuses {
		if s.Def.Duration == DurationTurn {
			delete(p.Statuses, id)
		}
	}
}

// Rest restores half heart, full soul, and sheds rest-duration effects.
func (p *Piece) Rest() {
	stats := p.Stats()
	p.RestoreHP(stats.Heart / 2)
	p.RestoreSP(stats.Soul)
	for id, s := range p.Statuses {
		if s.Def.Duration == DurationRest {
			delete(p.Statuses, id)
		}
	}
}

// RestoreHP heals up to the stat-derived maximum.
func (p *Piece) RestoreHP(amount int) {
	p.HP = minInt(p.HP+amount, p.Stats().Heart)
}

// RestoreSP recovers soul points up to the stat-derived maximum.
func (p *Piece) RestoreSP(amount int) {
	p.SP = minInt(p.SP+amount, p.Stats().Soul)
}

// Hostile reports whether two pieces are on opposing sides.
func (p *Piece) Hostile(o *Piece) bool {
	return p.Alliance != o.Alliance
}

// AttackByID finds one of the piece's own attacks.
func (p *Piece) AttackByID(id string) *Attack {
	for _, a := range p.Attacks {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// SpellByID finds one of the piece's own spells.
func (p *Piece) SpellByID(id string) *Spell {
	for _, s := range p.Spells {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
