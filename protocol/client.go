package protocol

//input structs coming in from the client.

type Hello struct {
	V int     `json:"v"`           // version
	W float64 `json:"w,omitempty"` // measured viewport, 0 if unknown
	H float64 `json:"h,omitempty"`
}

type Resize struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type Inspect struct {
	CatID int64 `json:"catId"`
}

// Challenge names the opponent by ENS name or address.
type Challenge struct {
	Query string `json:"query"`
}

type BattleAck struct {
	BattleID string `json:"battleId"`
}

type BattleClose struct {
	BattleID string `json:"battleId"`
}
