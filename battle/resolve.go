// Package battle decides VS challenges between two cats and paces the reveal.
package battle

import "brawlers/game"

// Rand is the source of score jitter. *math/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// Competitor is one side of a challenge. It is read-only for the battle.
type Competitor struct {
	Address  string        `json:"address"`
	Name     string        `json:"name"`
	Avatar   string        `json:"avatar,omitempty"`
	CatName  string        `json:"catName"`
	Category game.Category `json:"category"`
	Clothed  bool          `json:"clothed,omitempty"`
	Stats    game.Stats    `json:"stats"`
}

// Score is the stat total plus a fresh draw from [0, jitter).
func Score(c Competitor, jitter float64, r Rand) float64 {
	return float64(c.Stats.Total()) + r.Float64()*jitter
}

// Decide scores both sides once and returns the winner. The challenger has
// to strictly beat the challenged side; a tie goes to b.
func Decide(a, b Competitor, jitter float64, r Rand) Competitor {
	sa := Score(a, jitter, r)
	sb := Score(b, jitter, r)
	if sa > sb {
		return a
	}
	return b
}
