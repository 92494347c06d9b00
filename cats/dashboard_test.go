package cats

import (
	"testing"

	"brawlers/game"

	"github.com/stretchr/testify/assert"
)

func TestHearts(t *testing.T) {
	assert.Equal(t, []Heart{HeartFull, HeartFull, HeartFull, HeartFull, HeartFull}, Hearts(100))
	assert.Equal(t, []Heart{HeartFull, HeartFull, HeartHalf, HeartEmpty, HeartEmpty}, Hearts(50))
	assert.Equal(t, []Heart{HeartFull, HeartFull, HeartEmpty, HeartEmpty, HeartEmpty}, Hearts(49))
	assert.Equal(t, []Heart{HeartEmpty, HeartEmpty, HeartEmpty, HeartEmpty, HeartEmpty}, Hearts(0))
}

func TestStatBand(t *testing.T) {
	assert.Equal(t, BandHigh, StatBand(80))
	assert.Equal(t, BandGood, StatBand(79))
	assert.Equal(t, BandFair, StatBand(40))
	assert.Equal(t, BandLow, StatBand(39))
}

func TestNewDashboard(t *testing.T) {
	d := NewDashboard(Metadata{Name: "Soot", Color: game.Black, Stats: game.Stats{Attack: 85, Health: 60}})
	assert.Equal(t, "Soot", d.DisplayName)
	assert.Equal(t, "/cats/black/normal/black-sitting.gif", d.Portrait)
	assert.Equal(t, BandHigh, d.Bands["attack"])
	assert.Equal(t, BandLow, d.Bands["speed"])
	assert.Len(t, d.Hearts, 5)
}
