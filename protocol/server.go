package protocol

import (
	"brawlers/battle"
	"brawlers/cats"
)

type Welcome struct {
	PlayerID    string  `json:"playerId"`
	Address     string  `json:"address,omitempty"`
	Room        string  `json:"room"`
	TickHz      int     `json:"tickHz"`
	BroadcastHz int     `json:"broadcastHz"`
	SpriteSize  float64 `json:"spriteSize"`
}

type State struct {
	Tick int           `json:"tick"`
	W    float64       `json:"w"`
	H    float64       `json:"h"`
	Cats []CatSnapshot `json:"cats"`
}

type CatSnapshot struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name,omitempty"`
	Category string  `json:"category"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Dir      int     `json:"dir"`
	Moving   bool    `json:"moving"`
	Sprite   string  `json:"sprite"`
}

type CatDetail struct {
	cats.Dashboard
}

// Fighter is a battle side as the client draws it.
type Fighter struct {
	battle.Competitor
	Portrait string `json:"portrait"`
}

type BattleStart struct {
	BattleID   string  `json:"battleId"`
	Challenger Fighter `json:"challenger"`
	Challenged Fighter `json:"challenged"`
}

type BattleEvent struct {
	BattleID string   `json:"battleId"`
	Phase    string   `json:"phase"`
	Progress int      `json:"progress"`
	Winner   *Fighter `json:"winner,omitempty"`
}

type BattleFinished struct {
	BattleID  string   `json:"battleId"`
	Winner    *Fighter `json:"winner,omitempty"`
	Cancelled bool     `json:"cancelled,omitempty"`
}

// Error codes sent in Error envelopes.
const (
	CodeBadRequest   = "BAD_REQUEST"
	CodeUnauthorized = "NOT_CONNECTED"
	CodeNoFighter    = "NO_FIGHTER"
	CodeUnresolved   = "UNRESOLVED"
	CodeNotFound     = "NOT_FOUND"
	CodeBattleBusy   = "BATTLE_IN_PROGRESS"
	CodeNoBattle     = "NO_BATTLE"
	CodeNotResolved  = "NOT_RESOLVED"
	CodeInternal     = "INTERNAL"
)

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
