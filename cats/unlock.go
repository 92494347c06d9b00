package cats

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"brawlers/game"
)

const (
	MaxNameLen = 20
	statBase   = 30
	statSpread = 40 // stats land in [30, 70)
)

var (
	ErrNoOwner      = errors.New("no connected wallet")
	ErrNameRequired = errors.New("cat name is required")
	ErrNameTooLong  = errors.New("cat name is too long")
	ErrUnknownColor = errors.New("unknown cat color")
	ErrColorLocked  = errors.New("cat color is locked")
	ErrNoFighter    = errors.New("no cat to fight with")
	ErrNotOwner     = errors.New("cat belongs to someone else")
	ErrNotFound     = errors.New("cat not found")
)

// Unlock is one entry of the unlock ladder.
type Unlock struct {
	Color game.Category `json:"color"`
	Level int           `json:"level"`
	Label string        `json:"label"`
}

// Ladder is the order colors unlock in, with the owner level each needs.
type Ladder []Unlock

func DefaultLadder() Ladder {
	return Ladder{
		{Color: game.Grey, Level: 1, Label: "Grey"},
		{Color: game.Black, Level: 3, Label: "Black"},
		{Color: game.Pink, Level: 5, Label: "Pink"},
		{Color: game.Siamese, Level: 7, Label: "Siamese"},
		{Color: game.Yellow, Level: 10, Label: "Yellow"},
	}
}

// Required returns the level a color unlocks at.
func (l Ladder) Required(c game.Category) (int, bool) {
	for _, u := range l {
		if u.Color == c {
			return u.Level, true
		}
	}
	return 0, false
}

// Available lists the colors open to an owner of the given level.
func (l Ladder) Available(level int) []game.Category {
	var out []game.Category
	for _, u := range l {
		if level >= u.Level {
			out = append(out, u.Color)
		}
	}
	return out
}

// UnlockRequest is what the unlock dialog submits.
type UnlockRequest struct {
	Name      string `json:"name"`
	Color     string `json:"color"`
	ENSDomain string `json:"ensDomain,omitempty"`
}

// validate checks everything that can be checked without the collection.
func (l Ladder) validate(owner string, req UnlockRequest, level int) (MintRequest, error) {
	if owner == "" {
		return MintRequest{}, ErrNoOwner
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return MintRequest{}, ErrNameRequired
	}
	if utf8.RuneCountInString(name) > MaxNameLen {
		return MintRequest{}, fmt.Errorf("%w: max %d characters", ErrNameTooLong, MaxNameLen)
	}
	color, ok := game.ParseCategory(strings.ToLower(strings.TrimSpace(req.Color)))
	if !ok {
		return MintRequest{}, fmt.Errorf("%w: %q", ErrUnknownColor, req.Color)
	}
	need, ok := l.Required(color)
	if !ok {
		return MintRequest{}, fmt.Errorf("%w: %q", ErrUnknownColor, req.Color)
	}
	if level < need {
		return MintRequest{}, fmt.Errorf("%w: %s unlocks at level %d", ErrColorLocked, color, need)
	}
	return MintRequest{
		Name:      name,
		ENSDomain: strings.TrimSpace(req.ENSDomain),
		Color:     color,
	}, nil
}

// rollStats draws fresh stats for a newly unlocked cat.
func rollStats(r Rand) game.Stats {
	return game.Stats{
		Attack:  statBase + r.Intn(statSpread),
		Defence: statBase + r.Intn(statSpread),
		Speed:   statBase + r.Intn(statSpread),
		Health:  statBase + r.Intn(statSpread),
	}
}
