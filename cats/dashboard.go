package cats

import "brawlers/game"

type Heart string

const (
	HeartFull  Heart = "full"
	HeartHalf  Heart = "half"
	HeartEmpty Heart = "empty"
)

const hearts = 5

// Hearts renders health (0..100) as five hearts, in steps of half a heart.
func Hearts(health int) []Heart {
	per := 100 / hearts
	out := make([]Heart, 0, hearts)
	for i := 0; i < hearts; i++ {
		v := (i + 1) * per
		switch {
		case health >= v:
			out = append(out, HeartFull)
		case health >= v-per/2:
			out = append(out, HeartHalf)
		default:
			out = append(out, HeartEmpty)
		}
	}
	return out
}

type Band string

const (
	BandHigh Band = "high"
	BandGood Band = "good"
	BandFair Band = "fair"
	BandLow  Band = "low"
)

func StatBand(v int) Band {
	switch {
	case v >= 80:
		return BandHigh
	case v >= 60:
		return BandGood
	case v >= 40:
		return BandFair
	}
	return BandLow
}

// Dashboard is the detail dialog for one cat.
type Dashboard struct {
	Metadata
	DisplayName string          `json:"displayName"`
	Portrait    string          `json:"portrait"`
	Hearts      []Heart         `json:"hearts"`
	Bands       map[string]Band `json:"bands"`
}

func NewDashboard(m Metadata) Dashboard {
	return Dashboard{
		Metadata:    m,
		DisplayName: m.DisplayName(),
		Portrait:    game.Portrait(m.Color, m.Clothed),
		Hearts:      Hearts(m.Stats.Health),
		Bands: map[string]Band{
			"attack":  StatBand(m.Stats.Attack),
			"defence": StatBand(m.Stats.Defence),
			"speed":   StatBand(m.Stats.Speed),
			"health":  StatBand(m.Stats.Health),
		},
	}
}
