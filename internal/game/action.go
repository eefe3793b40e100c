package game

import "github.com/google/uuid"

// ActionKind discriminates the Action union.
type ActionKind string

const (
	ActionWait   ActionKind = "wait"
	ActionMove   ActionKind = "move"
	ActionAttack ActionKind = "attack"
	ActionCast   ActionKind = "cast"
)

// Action is anything a piece can do with its turn. It is the only way
// player input or character logic communicates with pieces; AI and
// human actions flow through the same application path.
type Action struct {
	Kind ActionKind `json:"kind"`

	// Move: relative step.
	DX int `json:"dx,omitempty"`
	DY int `json:"dy,omitempty"`

	// Attack / Cast.
	Attack string    `json:"attack,omitempty"`
	Spell  string    `json:"spell,omitempty"`
	Target uuid.UUID `json:"target,omitempty"`
}

// Wait is the universal fallback action.
func Wait() Action { return Action{Kind: ActionWait} }

func MoveAction(dx, dy int) Action {
	return Action{Kind: ActionMove, DX: dx, DY: dy}
}

func AttackAction(attackID string, target uuid.UUID) Action {
	return Action{Kind: ActionAttack, Attack: attackID, Target: target}
}

func CastAction(spellID string, target uuid.UUID) Action {
	return Action{Kind: ActionCast, Spell: spellID, Target: target}
}
