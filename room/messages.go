package room

import "brawlers/game"

type Conn interface {
	Send([]byte) error
	Close() error
}

// Join: issued once after hello parsed
type Join struct {
	Conn  Conn
	Name  string
	Reply chan<- JoinResult // buffered; the room does not wait on it

	// Welcome, if set, builds the first message sent to the joiner, ahead
	// of the current state.
	Welcome func(playerID string) []byte
}

type JoinResult struct {
	PlayerID string
}

// Leave: issued on disconnect
type Leave struct {
	PlayerID string
}

// Resize: the client measured a new viewport. Every cat is reseeded.
type Resize struct {
	W, H float64
}

// SetRoster: the upstream feed changed.
type SetRoster struct {
	Roster []game.Traits
}

// Inspect: look up one cat for the detail dialog.
type Inspect struct {
	CatID int64
	Reply chan<- InspectResult
}

type InspectResult struct {
	Cat   game.Cat
	Found bool
}
