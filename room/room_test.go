package room

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"brawlers/game"
	"brawlers/protocol"
)

const tickPeriod = time.Second / 60

type fakeConn struct {
	sendCh chan []byte
	closed chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{sendCh: make(chan []byte, 256), closed: make(chan struct{}, 1)}
}

func (f *fakeConn) Send(b []byte) error {
	cp := make([]byte, len(b))
	copy(cp, b)
	f.sendCh <- cp
	return nil
}

func (f *fakeConn) Close() error {
	select {
	case f.closed <- struct{}{}:
	default:
	}
	return nil
}

// brokenConn accepts sends until broken is set, then fails every one.
type brokenConn struct {
	broken atomic.Bool
	closed chan struct{}
}

func newBrokenConn() *brokenConn {
	return &brokenConn{closed: make(chan struct{}, 1)}
}

func (b *brokenConn) Send([]byte) error {
	if b.broken.Load() {
		return errors.New("connection closed")
	}
	return nil
}

func (b *brokenConn) Close() error {
	select {
	case b.closed <- struct{}{}:
	default:
	}
	return nil
}

// tickUntilDone advances the mock clock one tick at a time until r stops.
func tickUntilDone(t *testing.T, clk *clock.Mock, r *Room) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-r.Done():
			return
		case <-deadline:
			t.Fatalf("room kept running after its last client was dropped")
		default:
		}
		clk.Add(tickPeriod)
		time.Sleep(time.Millisecond)
	}
}

func roster(n int) []game.Traits {
	out := make([]game.Traits, n)
	for i := range out {
		out[i] = game.Traits{ID: int64(i + 1), Name: "cat", Category: game.CategoryFromIndex(i % 5)}
	}
	return out
}

func newTestRoom(t *testing.T, n int) (*Room, *clock.Mock) {
	t.Helper()
	clk := clock.NewMock()
	r := New(Config{
		TickHz:      60,
		BroadcastHz: 20,
		Bounds:      game.Bounds{W: 800, H: 600},
		Roster:      roster(n),
		Clock:       clk,
		Seed:        1,
	})
	r.Start()
	t.Cleanup(r.Stop)
	return r, clk
}

func join(t *testing.T, r *Room, fc *fakeConn) string {
	t.Helper()
	reply := make(chan JoinResult, 1)
	if !r.Send(Join{Conn: fc, Name: "test", Reply: reply}) {
		t.Fatalf("room stopped before join")
	}
	select {
	case res := <-reply:
		return res.PlayerID
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for join")
	}
	return ""
}

// nextState returns the next state snapshot matching ok, advancing the mock
// clock one tick at a time while waiting.
func nextState(t *testing.T, clk *clock.Mock, fc *fakeConn, ok func(protocol.State) bool) protocol.State {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case b := <-fc.sendCh:
			env, err := protocol.DecodeEnvelope(b)
			if err != nil {
				t.Fatalf("decode envelope: %v", err)
			}
			if env.T != protocol.MsgState {
				continue
			}
			st, err := protocol.DecodePayload[protocol.State](env)
			if err != nil {
				t.Fatalf("decode state: %v", err)
			}
			if ok(st) {
				return st
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state")
		case <-time.After(5 * time.Millisecond):
			if clk != nil {
				clk.Add(tickPeriod)
			}
		}
	}
}

func anyState(protocol.State) bool { return true }

func TestRoomJoinSendsCurrentState(t *testing.T) {
	r, _ := newTestRoom(t, 4)
	fc := newFakeConn()
	if id := join(t, r, fc); id == "" {
		t.Fatalf("expected player id, got empty")
	}

	st := nextState(t, nil, fc, anyState)
	if st.Tick != 0 {
		t.Fatalf("tick = %d before any tick fired", st.Tick)
	}
	if len(st.Cats) != 4 {
		t.Fatalf("got %d cats, want 4", len(st.Cats))
	}
	for _, c := range st.Cats {
		if c.Sprite == "" || c.Category == "" {
			t.Fatalf("cat %d missing sprite or category: %+v", c.ID, c)
		}
	}
	if r.NumPlayers() != 1 {
		t.Fatalf("NumPlayers = %d, want 1", r.NumPlayers())
	}
}

func TestRoomTwoClientsGetUniqueIDs(t *testing.T) {
	r, _ := newTestRoom(t, 1)
	a := join(t, r, newFakeConn())
	b := join(t, r, newFakeConn())
	if a == "" || b == "" || a == b {
		t.Fatalf("expected distinct ids, got %q and %q", a, b)
	}
}

func TestRoomBroadcastsEveryThirdTick(t *testing.T) {
	r, clk := newTestRoom(t, 2)
	fc := newFakeConn()
	join(t, r, fc)
	nextState(t, nil, fc, anyState)

	for i := 0; i < 3; i++ {
		st := nextState(t, clk, fc, func(s protocol.State) bool { return s.Tick > 0 })
		if st.Tick%3 != 0 {
			t.Fatalf("broadcast at tick %d, want a multiple of 3", st.Tick)
		}
	}
}

func TestRoomBroadcastShowsMovement(t *testing.T) {
	r, clk := newTestRoom(t, 12)
	fc := newFakeConn()
	join(t, r, fc)
	first := nextState(t, nil, fc, anyState)
	later := nextState(t, clk, fc, func(s protocol.State) bool { return s.Tick >= 30 })

	moved := false
	for i, c := range later.Cats {
		if c.X != first.Cats[i].X || c.Y != first.Cats[i].Y {
			moved = true
		}
		if c.X < 0 || c.X > 800-game.SpriteSize || c.Y < 0 || c.Y > 600-game.SpriteSize {
			t.Fatalf("cat %d out of bounds: (%f, %f)", c.ID, c.X, c.Y)
		}
	}
	if !moved {
		t.Fatalf("expected at least one cat to move in 30 ticks")
	}
}

func TestRoomResizeReseedsInsideNewBounds(t *testing.T) {
	r, _ := newTestRoom(t, 12)
	fc := newFakeConn()
	join(t, r, fc)

	r.Send(Resize{W: 300, H: 200})
	st := nextState(t, nil, fc, func(s protocol.State) bool { return s.W == 300 })
	if st.H != 200 {
		t.Fatalf("H = %f, want 200", st.H)
	}
	for _, c := range st.Cats {
		if c.X > 300-game.SpriteSize || c.Y > 200-game.SpriteSize {
			t.Fatalf("cat %d outside resized viewport: (%f, %f)", c.ID, c.X, c.Y)
		}
	}
}

func TestRoomSetRosterReplacesCats(t *testing.T) {
	r, _ := newTestRoom(t, 5)
	fc := newFakeConn()
	join(t, r, fc)

	r.Send(SetRoster{Roster: []game.Traits{{ID: 77, Name: "Mochi", Category: game.Pink}}})
	st := nextState(t, nil, fc, func(s protocol.State) bool { return len(s.Cats) == 1 })
	if st.Cats[0].ID != 77 || st.Cats[0].Name != "Mochi" || st.Cats[0].Category != "pink" {
		t.Fatalf("unexpected cat %+v", st.Cats[0])
	}
}

func TestRoomInspect(t *testing.T) {
	r, _ := newTestRoom(t, 3)
	reply := make(chan InspectResult, 1)

	r.Send(Inspect{CatID: 2, Reply: reply})
	res := <-reply
	if !res.Found || res.Cat.ID != 2 {
		t.Fatalf("inspect 2 = %+v", res)
	}

	r.Send(Inspect{CatID: 99, Reply: reply})
	if res := <-reply; res.Found {
		t.Fatalf("inspect 99 found %+v", res.Cat)
	}
}

func TestRoomLastLeaveEmptiesRoom(t *testing.T) {
	r, _ := newTestRoom(t, 1)
	emptied := make(chan string, 1)
	r.Code = "ROOM01"
	r.OnEmpty = func(code string) { emptied <- code }

	fc := newFakeConn()
	id := join(t, r, fc)
	r.Send(Leave{PlayerID: id})

	select {
	case code := <-emptied:
		if code != "ROOM01" {
			t.Fatalf("OnEmpty(%q), want ROOM01", code)
		}
	case <-time.After(time.Second):
		t.Fatalf("OnEmpty not called")
	}
	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatalf("room kept running after emptying")
	}
	select {
	case <-fc.closed:
	default:
		t.Fatalf("leaving conn was not closed")
	}
	if r.Send(Resize{W: 1, H: 1}) {
		t.Fatalf("Send succeeded on a stopped room")
	}
}

func TestRoomStopHaltsTicksAndSends(t *testing.T) {
	r, clk := newTestRoom(t, 3)
	fc := newFakeConn()
	join(t, r, fc)
	nextState(t, clk, fc, func(s protocol.State) bool { return s.Tick >= 3 })

	r.Stop()
	for len(fc.sendCh) > 0 {
		<-fc.sendCh
	}
	for i := 0; i < 10; i++ {
		clk.Add(tickPeriod)
	}
	select {
	case <-fc.sendCh:
		t.Fatalf("room sent after Stop")
	case <-time.After(20 * time.Millisecond):
	}
	r.Stop() // second Stop is a no-op
}

type slowConn struct {
	sendCh chan []byte
	block  chan struct{}
}

func (s *slowConn) Send(b []byte) error {
	cp := append([]byte(nil), b...)
	s.sendCh <- cp
	<-s.block // block until released
	return nil
}
func (s *slowConn) Close() error { return nil }

func TestRoomBroadcastDoesNotDeadlockOnSlowConn(t *testing.T) {
	r, clk := newTestRoom(t, 1)

	sc := &slowConn{
		sendCh: make(chan []byte, 1),
		block:  make(chan struct{}),
	}
	reply := make(chan JoinResult, 1)
	r.Send(Join{Conn: sc, Name: "slow", Reply: reply})
	<-reply

	select {
	case <-sc.sendCh:
		close(sc.block)
	case <-time.After(time.Second):
		t.Fatalf("expected at least one state send; possible deadlock")
	}

	deadline := time.After(time.Second)
	for {
		clk.Add(tickPeriod)
		select {
		case <-sc.sendCh:
			return
		case <-deadline:
			t.Fatalf("room stopped ticking after a slow send")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestRoomJoinWelcomeComesFirst(t *testing.T) {
	r, _ := newTestRoom(t, 1)
	fc := newFakeConn()
	reply := make(chan JoinResult, 1)
	r.Send(Join{Conn: fc, Reply: reply, Welcome: func(id string) []byte {
		b, _ := protocol.Encode(protocol.MsgWelcome, protocol.Welcome{PlayerID: id})
		return b
	}})
	res := <-reply

	env, err := protocol.DecodeEnvelope(<-fc.sendCh)
	if err != nil || env.T != protocol.MsgWelcome {
		t.Fatalf("first message = %q (%v), want welcome", env.T, err)
	}
	w, _ := protocol.DecodePayload[protocol.Welcome](env)
	if w.PlayerID != res.PlayerID {
		t.Fatalf("welcome for %q, joined as %q", w.PlayerID, res.PlayerID)
	}
	env, _ = protocol.DecodeEnvelope(<-fc.sendCh)
	if env.T != protocol.MsgState {
		t.Fatalf("second message = %q, want state", env.T)
	}
}

func TestRoomFailedSendOfLastClientEmptiesRoom(t *testing.T) {
	r, clk := newTestRoom(t, 2)
	emptied := make(chan string, 1)
	r.Code = "ROOM02"
	r.OnEmpty = func(code string) { emptied <- code }

	bc := newBrokenConn()
	reply := make(chan JoinResult, 1)
	r.Send(Join{Conn: bc, Name: "gone", Reply: reply})
	id := (<-reply).PlayerID
	bc.broken.Store(true)

	tickUntilDone(t, clk, r)
	select {
	case code := <-emptied:
		if code != "ROOM02" {
			t.Fatalf("OnEmpty(%q), want ROOM02", code)
		}
	default:
		t.Fatalf("OnEmpty not called")
	}
	select {
	case <-bc.closed:
	default:
		t.Fatalf("dropped conn was not closed")
	}
	if r.NumPlayers() != 0 {
		t.Fatalf("NumPlayers = %d, want 0", r.NumPlayers())
	}
	if r.Send(Leave{PlayerID: id}) {
		t.Fatalf("late Leave reached a stopped room")
	}
}

func TestRoomFailedSendKeepsRoomWithOtherClients(t *testing.T) {
	r, clk := newTestRoom(t, 2)
	r.Code = "ROOM03"
	r.OnEmpty = func(string) { t.Errorf("OnEmpty called with a client left") }

	bc := newBrokenConn()
	reply := make(chan JoinResult, 1)
	r.Send(Join{Conn: bc, Name: "gone", Reply: reply})
	<-reply
	fc := newFakeConn()
	join(t, r, fc)
	bc.broken.Store(true)

	st := nextState(t, clk, fc, func(s protocol.State) bool { return s.Tick > 0 })
	select {
	case <-bc.closed:
	case <-time.After(time.Second):
		t.Fatalf("failing conn was not dropped")
	}
	nextState(t, clk, fc, func(s protocol.State) bool { return s.Tick > st.Tick })
	if r.NumPlayers() != 1 {
		t.Fatalf("NumPlayers = %d, want 1", r.NumPlayers())
	}
	select {
	case <-r.Done():
		t.Fatalf("room stopped with a client still connected")
	default:
	}
}
