package battle

import (
	"math/rand"
	"testing"

	"brawlers/game"

	"github.com/stretchr/testify/assert"
)

type fixedRand []float64

func (f *fixedRand) Float64() float64 {
	v := (*f)[0]
	if len(*f) > 1 {
		*f = (*f)[1:]
	}
	return v
}

func competitor(name string, v int) Competitor {
	return Competitor{Name: name, CatName: name + "'s cat", Stats: game.Stats{Attack: v, Defence: v, Speed: v, Health: v}}
}

func TestScoreAddsJitter(t *testing.T) {
	r := fixedRand{0.5}
	assert.InDelta(t, 170.0, Score(competitor("a", 40), 20, &r), 1e-9)
}

func TestDecideStrongerAlwaysWins(t *testing.T) {
	weak, strong := competitor("weak", 40), competitor("strong", 90)
	r := rand.New(rand.NewSource(11))
	for i := 0; i < 10000; i++ {
		assert.Equal(t, "strong", Decide(weak, strong, 20, r).Name)
		assert.Equal(t, "strong", Decide(strong, weak, 20, r).Name)
	}

	// worst case for the strong side: maximum jitter for weak, none for strong
	r2 := fixedRand{0.999999, 0}
	assert.Equal(t, "strong", Decide(weak, strong, 20, &r2).Name)
}

func TestDecideEqualStatsPicksOneSide(t *testing.T) {
	a, b := competitor("a", 50), competitor("b", 50)
	r := rand.New(rand.NewSource(99))
	wins := map[string]int{}
	for i := 0; i < 2000; i++ {
		w := Decide(a, b, 20, r)
		wins[w.Name]++
	}
	assert.Equal(t, 2000, wins["a"]+wins["b"])
	assert.Positive(t, wins["a"])
	assert.Positive(t, wins["b"])
}

func TestDecideTieGoesToChallenged(t *testing.T) {
	a, b := competitor("a", 50), competitor("b", 50)
	r := fixedRand{0.25}
	assert.Equal(t, "b", Decide(a, b, 20, &r).Name)
}
