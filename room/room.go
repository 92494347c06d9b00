package room

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"brawlers/game"
	"brawlers/protocol"
)

// Config sets up a room. Zero values fall back to the protocol defaults.
type Config struct {
	TickHz      int
	BroadcastHz int
	Bounds      game.Bounds
	Roster      []game.Traits
	Clock       clock.Clock
	Seed        int64
}

// Room drives one playground. Only the run goroutine touches pg and clients.
type Room struct {
	Inbox          chan any
	tickHz         int
	broadcastEvery int
	clk            clock.Clock
	ticker         *clock.Ticker
	rnd            *rand.Rand
	pg             *game.Playground
	clients        map[string]Conn
	nextID         int
	players        atomic.Int32
	quit           chan struct{}
	done           chan struct{}
	stopOnce       sync.Once

	Code    string            // room code, the owner address for player rooms
	OnEmpty func(code string) // called from the run goroutine when the last player leaves
}

func New(cfg Config) *Room {
	if cfg.TickHz <= 0 {
		cfg.TickHz = protocol.SimTickHz
	}
	if cfg.BroadcastHz <= 0 {
		cfg.BroadcastHz = protocol.BroadcastHz
	}
	broadcastEvery := cfg.TickHz / cfg.BroadcastHz
	if broadcastEvery <= 0 {
		broadcastEvery = 1
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	rnd := rand.New(rand.NewSource(cfg.Seed))
	return &Room{
		Inbox:          make(chan any, 256),
		tickHz:         cfg.TickHz,
		broadcastEvery: broadcastEvery,
		clk:            cfg.Clock,
		rnd:            rnd,
		pg:             game.NewPlayground(cfg.Bounds, cfg.Roster, rnd),
		clients:        make(map[string]Conn),
		nextID:         1,
		quit:           make(chan struct{}),
		done:           make(chan struct{}),
	}
}

// Start subscribes to the tick source and runs the room in its own
// goroutine. The ticker exists once Start returns.
func (r *Room) Start() {
	r.ticker = r.clk.Ticker(time.Second / time.Duration(r.tickHz))
	go r.run()
}

// Stop cancels the tick source and waits for the loop to exit. No tick is
// applied and nothing is sent after it returns. It must not be called
// from OnEmpty.
func (r *Room) Stop() {
	r.stopOnce.Do(func() { close(r.quit) })
	<-r.done
}

// Done is closed once the room has stopped.
func (r *Room) Done() <-chan struct{} { return r.done }

// Send queues cmd unless the room has already stopped.
func (r *Room) Send(cmd any) bool {
	select {
	case <-r.done:
		return false
	default:
	}
	select {
	case r.Inbox <- cmd:
		return true
	case <-r.done:
		return false
	}
}

// NumPlayers returns the current number of connected clients.
func (r *Room) NumPlayers() int {
	return int(r.players.Load())
}

func (r *Room) run() {
	defer close(r.done)
	defer r.ticker.Stop()

	for {
		select {
		case <-r.quit:
			return
		case cmd := <-r.Inbox:
			if r.handleCommand(cmd) {
				return
			}
		case <-r.ticker.C:
			select {
			case <-r.quit:
				return
			default:
			}
			r.pg.Advance(r.rnd)
			if r.pg.Tick%r.broadcastEvery == 0 && r.broadcastState() {
				return
			}
		}
	}
}

// handleCommand reports whether the room emptied and should exit.
func (r *Room) handleCommand(cmd any) bool {
	switch c := cmd.(type) {
	case Join:
		playerID := fmt.Sprintf("p%d", r.nextID)
		r.nextID++
		r.clients[playerID] = c.Conn
		r.players.Store(int32(len(r.clients)))
		if c.Welcome != nil {
			_ = c.Conn.Send(c.Welcome(playerID))
		}
		r.sendStateTo(c.Conn)
		c.Reply <- JoinResult{PlayerID: playerID}
	case Leave:
		return r.removePlayer(c.PlayerID)
	case Resize:
		r.pg.Resize(game.Bounds{W: c.W, H: c.H}, r.rnd)
		return r.broadcastState()
	case SetRoster:
		r.pg.SetRoster(c.Roster, r.rnd)
		return r.broadcastState()
	case Inspect:
		cat, ok := r.pg.Find(c.CatID)
		c.Reply <- InspectResult{Cat: cat, Found: ok}
	default:
		log.Printf("room %s: unknown command %T", r.Code, cmd)
	}
	return false
}

// removePlayer drops a client, whether it left or its send failed, and
// reports whether that emptied the room.
func (r *Room) removePlayer(playerID string) bool {
	c, ok := r.clients[playerID]
	if !ok {
		return false
	}
	_ = c.Close()
	delete(r.clients, playerID)
	r.players.Store(int32(len(r.clients)))
	if len(r.clients) == 0 && r.OnEmpty != nil && r.Code != "" {
		r.OnEmpty(r.Code)
		return true
	}
	return false
}

// broadcastState reports whether dropping failed clients emptied the room.
func (r *Room) broadcastState() bool {
	b, err := protocol.Encode(protocol.MsgState, r.buildSnapshot())
	if err != nil {
		return false
	}

	var failed []string
	for id, c := range r.clients {
		if err := c.Send(b); err != nil {
			failed = append(failed, id)
		}
	}
	emptied := false
	for _, id := range failed {
		if r.removePlayer(id) {
			emptied = true
		}
	}
	return emptied
}

func (r *Room) sendStateTo(c Conn) {
	b, err := protocol.Encode(protocol.MsgState, r.buildSnapshot())
	if err != nil {
		return
	}
	_ = c.Send(b)
}

func (r *Room) buildSnapshot() protocol.State {
	snapshot := protocol.State{
		Tick: r.pg.Tick,
		W:    r.pg.Bounds.W,
		H:    r.pg.Bounds.H,
		Cats: make([]protocol.CatSnapshot, 0, len(r.pg.Cats)),
	}
	for _, c := range r.pg.Cats {
		snapshot.Cats = append(snapshot.Cats, Snapshot(c))
	}
	return snapshot
}

// Snapshot is the wire form of one playground cat.
func Snapshot(c game.Cat) protocol.CatSnapshot {
	return protocol.CatSnapshot{
		ID:       c.ID,
		Name:     c.Name,
		Category: c.Category.String(),
		X:        c.X,
		Y:        c.Y,
		Dir:      c.Direction,
		Moving:   c.Moving,
		Sprite:   game.SpriteFor(c),
	}
}
