package game

import "math"

// Step advances one cat by one tick. It only reads c, b and r.
func Step(c Cat, b Bounds, r Rand) Cat {
	if !c.Moving {
		if r.Float64() < StartChance {
			c.Moving = true
			c.retarget(b, r)
		}
		return c
	}

	dx := c.TargetX - c.X
	dy := c.TargetY - c.Y
	if math.Hypot(dx, dy) < ArriveDistance {
		c.retarget(b, r)
	}

	c.X += (c.TargetX - c.X) * StepFraction
	c.Y += (c.TargetY - c.Y) * StepFraction
	c.X = clamp(c.X, 0, b.MaxX())
	c.Y = clamp(c.Y, 0, b.MaxY())

	if r.Float64() < StopChance {
		c.Moving = false
	}
	return c
}

// StepAll steps every cat in place. Cats do not see each other, so order
// does not matter.
func StepAll(cats []Cat, b Bounds, r Rand) {
	for i := range cats {
		cats[i] = Step(cats[i], b, r)
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
