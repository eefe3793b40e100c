package game

// Attack is an innate physical attack definition.
type Attack struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Base damage before the attacker's power and the defender's
	// defense are applied.
	Magnitude int `json:"magnitude"`
	// Time cost in Aut; zero means the attacker's sheet speed.
	Cost Aut `json:"cost,omitempty"`
	// Status inflicted on hit, if any.
	Inflicts         string `json:"inflicts,omitempty"`
	InflictMagnitude int    `json:"inflict_magnitude,omitempty"`

	// Combat message template; {target} is replaced with the
	// defender's name.
	Message string `json:"message,omitempty"`
}

// Spell is a castable spell definition. Casting costs SP equal to the
// spell's level.
type Spell struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	Energy  Energy  `json:"energy"`
	Harmony Harmony `json:"harmony"`

	Level     int `json:"level"`
	Magnitude int `json:"magnitude"`
	// Chebyshev casting range in tiles.
	Range int `json:"range"`
	// Minimum post-resistance damage for the spell to land. Negative
	// values counteract the target's resistance.
	PierceThreshold int `json:"pierce_threshold,omitempty"`
	// Time cost in Aut; zero means the caster's sheet speed.
	Cost Aut `json:"cost,omitempty"`
}

// CastableBy reports whether the piece can pay the spell's SP cost.
func (s *Spell) CastableBy(p *Piece) bool {
	return p.SP >= s.Level
}
