package game

// Aut is the engine's abstract time unit. A piece with a lower delay
// is closer to being ready to act.
type Aut int64

// Stats is the full stat block shared by sheets, buffs and debuffs.
type Stats struct {
	// Heart points: maximum HP.
	Heart int `json:"heart"`
	// Soul points: maximum SP.
	Soul int `json:"soul"`
	// Bonus damage on physical attacks.
	Power int `json:"power"`
	// Damage reduction against physical attacks.
	Defense int `json:"defense"`
	// Bonus damage on spells.
	Magic int `json:"magic"`
	// Damage reduction against spells; also resists harmful casts.
	Resistance int `json:"resistance"`
}

func (s Stats) Add(o Stats) Stats {
	return Stats{
		Heart:      s.Heart + o.Heart,
		Soul:       s.Soul + o.Soul,
		Power:      s.Power + o.Power,
		Defense:    s.Defense + o.Defense,
		Magic:      s.Magic + o.Magic,
		Resistance: s.Resistance + o.Resistance,
	}
}

func (s Stats) Scale(n int) Stats {
	return Stats{
		Heart:      s.Heart * n,
		Soul:       s.Soul * n,
		Power:      s.Power * n,
		Defense:    s.Defense * n,
		Magic:      s.Magic * n,
		Resistance: s.Resistance * n,
	}
}

// SubFloor subtracts o from s, clamping every stat at zero.
func (s Stats) SubFloor(o Stats) Stats {
	return Stats{
		Heart:      maxInt(0, s.Heart-o.Heart),
		Soul:       maxInt(0, s.Soul-o.Soul),
		Power:      maxInt(0, s.Power-o.Power),
		Defense:    maxInt(0, s.Defense-o.Defense),
		Magic:      maxInt(0, s.Magic-o.Magic),
		Resistance: maxInt(0, s.Resistance-o.Resistance),
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
