package consider

import "github.com/gridfall/gridfall-server/internal/game"

// Engine scores candidate actions. It neither ranks nor chooses;
// selection belongs to the actor's decision policy.
type Engine struct{}

// Score enumerates every feasible action source for the actor: steps
// toward the nearest hostile, each known attack against each adjacent
// hostile, each castable spell against each hostile in range, and the
// innate wait. Every emitted action is legal to apply immediately.
func (Engine) Score(w *game.World, actor *game.Piece) *Considerations {
	var out []Consider

	out = append(out, scoreAttacks(w, actor)...)
	out = append(out, scoreSpells(w, actor)...)
	out = append(out, scoreMoves(w, actor)...)
	out = append(out, Consider{Action: game.Wait()})

	return NewConsiderations(out)
}

func scoreAttacks(w *game.World, actor *game.Piece) []Consider {
	var out []Consider
	for _, attack := range actor.Attacks {
		for _, target := range w.Pieces() {
			if !actor.Hostile(target) {
				continue
			}
			if chebyshev(actor.X, actor.Y, target.X, target.Y) > 1 {
				continue
			}
			estimate := attack.Magnitude + actor.Stats().Power - target.Stats().Defense
			if estimate < 0 {
				estimate = 0
			}
			heuristics := []Heuristic{{
				Kind:   HeuristicDamage,
				Target: target.ID,
				Amount: estimate,
			}}
			if attack.Inflicts != "" {
				heuristics = append(heuristics, Heuristic{
					Kind:   HeuristicDebuff,
					Target: target.ID,
					Amount: attack.InflictMagnitude,
				})
			}
			out = append(out, Consider{
				Action:     game.AttackAction(attack.ID, target.ID),
				Heuristics: heuristics,
			})
		}
	}
	return out
}

func scoreSpells(w *game.World, actor *game.Piece) []Consider {
	var out []Consider
	for _, spell := range actor.Spells {
		if !spell.CastableBy(actor) {
			continue
		}
		affinity := actor.Sheet.Skillset.Affinity(spell.Energy, spell.Harmony)
		if affinity == game.AffinityUncastable {
			continue
		}
		for _, target := range w.Pieces() {
			if !actor.Hostile(target) {
				continue
			}
			if chebyshev(actor.X, actor.Y, target.X, target.Y) > spell.Range {
				continue
			}
			estimate := affinity.Magnitude(spell.Magnitude+actor.Stats().Magic) - target.Stats().Resistance
			if estimate < 0 {
				estimate = 0
			}
			out = append(out, Consider{
				Action: game.CastAction(spell.ID, target.ID),
				Heuristics: []Heuristic{{
					Kind:   HeuristicDamage,
					Target: target.ID,
					Amount: estimate,
				}},
			})
		}
	}
	return out
}

// scoreMoves emits single steps that close distance to the nearest
// hostile. Blocked steps are skipped, not emitted.
func scoreMoves(w *game.World, actor *game.Piece) []Consider {
	target := nearestHostile(w, actor)
	if target == nil {
		return nil
	}

	dx := sign(target.X - actor.X)
	dy := sign(target.Y - actor.Y)
	var out []Consider
	seen := map[[2]int]bool{}
	for _, step := range [][2]int{{dx, dy}, {dx, 0}, {0, dy}} {
		if step[0] == 0 && step[1] == 0 {
			continue
		}
		if seen[step] {
			continue
		}
		seen[step] = true
		nx, ny := actor.X+step[0], actor.Y+step[1]
		if !w.Board.Walkable(nx, ny) || w.PieceAt(nx, ny) != nil {
			continue
		}
		out = append(out, Consider{
			Action:     game.MoveAction(step[0], step[1]),
			Heuristics: []Heuristic{{Kind: HeuristicMove, X: nx, Y: ny}},
		})
	}
	return out
}

func nearestHostile(w *game.World, actor *game.Piece) *game.Piece {
	var nearest *game.Piece
	best := 0
	for _, p := range w.Pieces() {
		if !actor.Hostile(p) {
			continue
		}
		d := chebyshev(actor.X, actor.Y, p.X, p.Y)
		if nearest == nil || d < best {
			nearest, best = p, d
		}
	}
	return nearest
}

func chebyshev(x1, y1, x2, y2 int) int {
	dx := x1 - x2
	if dx < 0 {
		dx = -dx
	}
	dy := y1 - y2
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
