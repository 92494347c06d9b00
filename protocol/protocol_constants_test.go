package protocol

import "testing"

func TestMessageConstants(t *testing.T) {
	want := map[string]string{
		MsgHello:          "hello",
		MsgWelcome:        "welcome",
		MsgState:          "state",
		MsgResize:         "resize",
		MsgInspect:        "inspect",
		MsgCatDetail:      "cat_detail",
		MsgChallenge:      "challenge",
		MsgBattleStart:    "battle_start",
		MsgBattleEvent:    "battle_event",
		MsgBattleAck:      "battle_ack",
		MsgBattleClose:    "battle_close",
		MsgBattleFinished: "battle_finished",
		MsgError:          "error",
	}
	for got, w := range want {
		if got != w {
			t.Fatalf("message constant = %q, want %q", got, w)
		}
	}
}

func TestTimingConstants(t *testing.T) {
	if SimTickHz != 60 {
		t.Fatalf("SimTickHz = %d, want %d", SimTickHz, 60)
	}
	if BroadcastHz != 20 {
		t.Fatalf("BroadcastHz = %d, want %d", BroadcastHz, 20)
	}
}

func TestTimingSanity(t *testing.T) {
	if SimTickHz <= 0 || BroadcastHz <= 0 {
		t.Fatalf("timing constants must be > 0")
	}
	if SimTickHz%BroadcastHz != 0 {
		t.Fatalf("SimTickHz %% BroadcastHz != 0 (%d %% %d)", SimTickHz, BroadcastHz)
	}
}
