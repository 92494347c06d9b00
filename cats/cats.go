// Package cats is the owner-facing side of the cat collection: unlocking
// (minting) new cats, reading an owner's roster and picking a default
// fighter. The collection itself lives behind the Collection port.
package cats

import (
	"context"
	"strings"
	"time"
	"unicode"

	"brawlers/game"
)

// Metadata is one token as the collection reports it.
type Metadata struct {
	TokenID     int64         `json:"tokenId"`
	Owner       string        `json:"owner"`
	Name        string        `json:"name"`
	ENSDomain   string        `json:"ensDomain,omitempty"`
	Level       int           `json:"level"`
	BattlesWon  int           `json:"battlesWon"`
	BattlesLost int           `json:"battlesLost"`
	CreatedAt   time.Time     `json:"createdAt"`
	Stats       game.Stats    `json:"stats"`
	Color       game.Category `json:"color"`
	Clothed     bool          `json:"isClothed"`
}

// MintRequest is what the collection needs to create a token.
type MintRequest struct {
	Name      string
	ENSDomain string
	Color     game.Category
	Clothed   bool
	Stats     game.Stats
}

// Collection is the cat contract. Mint returns the new token id.
type Collection interface {
	Mint(ctx context.Context, owner string, req MintRequest) (int64, error)
	CatsOf(ctx context.Context, owner string) ([]Metadata, error)
	Cat(ctx context.Context, tokenID int64) (Metadata, error)
}

// KV is per-owner string storage.
type KV interface {
	Get(ctx context.Context, owner, key string) (string, bool, error)
	Put(ctx context.Context, owner, key, value string) error
}

// DisplayName falls back to "<Color> Cat" for unnamed tokens.
func (m Metadata) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	c := []rune(m.Color.String())
	c[0] = unicode.ToUpper(c[0])
	return string(c) + " Cat"
}

// Traits is the playground view of the token.
func (m Metadata) Traits() game.Traits {
	return game.Traits{
		ID:       m.TokenID,
		Name:     m.DisplayName(),
		Category: m.Color,
		Clothed:  m.Clothed,
		Stats:    m.Stats,
	}
}

// Roster converts a feed into playground traits, one per token.
func Roster(feed []Metadata) []game.Traits {
	out := make([]game.Traits, 0, len(feed))
	for _, m := range feed {
		out = append(out, m.Traits())
	}
	return out
}

func normalizeOwner(owner string) string {
	return strings.ToLower(strings.TrimSpace(owner))
}
