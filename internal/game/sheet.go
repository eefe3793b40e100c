package game

// Energy is one axis of a spell's nature.
type Energy string

const (
	// Positive energy, like heat.
	EnergyPositive Energy = "positive"
	// Negative energy, like cold.
	EnergyNegative Energy = "negative"
)

// Harmony is the other axis.
type Harmony string

const (
	// Unpredictable, unconventional effects.
	HarmonyChaos Harmony = "chaos"
	// Simple, predictable effects.
	HarmonyOrder Harmony = "order"
)

// Skillset is a character's magical aptitude: one major skill and an
// optional minor skill from the opposite axis. Exactly one of
// MajorEnergy and MajorHarmony is set.
type Skillset struct {
	MajorEnergy  Energy  `json:"major_energy,omitempty"`
	MajorHarmony Harmony `json:"major_harmony,omitempty"`
	MinorEnergy  Energy  `json:"minor_energy,omitempty"`
	MinorHarmony Harmony `json:"minor_harmony,omitempty"`
}

// Affinity grades how well a skillset matches a spell.
type Affinity int

const (
	// No skill matches; the spell cannot be cast.
	AffinityUncastable Affinity = iota
	// Only the minor skill matches.
	AffinityWeak
	// Only the major skill matches.
	AffinityAverage
	// Both skills match.
	AffinityStrong
)

// Magnitude scales a spell magnitude by the affinity grade.
func (a Affinity) Magnitude(magnitude int) int {
	switch a {
	case AffinityWeak:
		return magnitude / 2
	case AffinityAverage:
		return magnitude * 3 / 4
	case AffinityStrong:
		return magnitude
	default:
		return 0
	}
}

// Sheet is the immutable character definition a piece is built from.
type Sheet struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level int    `json:"level"`

	Bases   Stats `json:"bases"`
	Growths Stats `json:"growths"`

	Skillset Skillset `json:"skillset"`
	// Base time cost of this character's turns, in Aut.
	Speed Aut `json:"speed"`

	Attacks []string `json:"attacks"`
	Spells  []string `json:"spells"`

	// Name of the decision policy script used for non-player turns.
	// Empty means the built-in policy.
	OnConsider string `json:"on_consider,omitempty"`
}

// Stats derives the sheet's stat block: bases + growths*level/100.
func (s Sheet) Stats() Stats {
	g := s.Growths.Scale(s.Level)
	return s.Bases.Add(Stats{
		Heart:      g.Heart / 100,
		Soul:       g.Soul / 100,
		Power:      g.Power / 100,
		Defense:    g.Defense / 100,
		Magic:      g.Magic / 100,
		Resistance: g.Resistance / 100,
	})
}

// Affinity grades a spell's castability under this skillset.
func (s Skillset) Affinity(energy Energy, harmony Harmony) Affinity {
	switch {
	case s.MajorEnergy != "":
		minor := s.MinorHarmony != "" && s.MinorHarmony == harmony
		if s.MajorEnergy == energy {
			if minor {
				return AffinityStrong
			}
			return AffinityAverage
		}
		if minor {
			return AffinityWeak
		}
		return AffinityUncastable
	case s.MajorHarmony != "":
		minor := s.MinorEnergy != "" && s.MinorEnergy == energy
		if s.MajorHarmony == harmony {
			if minor {
				return AffinityStrong
			}
			return AffinityAverage
		}
		if minor {
			return AffinityWeak
		}
		return AffinityUncastable
	default:
		return AffinityUncastable
	}
}
