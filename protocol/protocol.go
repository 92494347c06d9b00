package protocol

import (
	"encoding/json"
)

const (
	MsgHello          = "hello"
	MsgWelcome        = "welcome"
	MsgState          = "state"
	MsgResize         = "resize"
	MsgInspect        = "inspect"
	MsgCatDetail      = "cat_detail"
	MsgChallenge      = "challenge"
	MsgBattleStart    = "battle_start"
	MsgBattleEvent    = "battle_event"
	MsgBattleAck      = "battle_ack"
	MsgBattleClose    = "battle_close"
	MsgBattleFinished = "battle_finished"
	MsgError          = "error"
)

// Defaults for the sim pacing. The server config can override both.
const (
	SimTickHz   = 60
	BroadcastHz = 20
)

type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p"` // raw payload bytes
}
