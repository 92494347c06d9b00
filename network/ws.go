package network

import (
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"brawlers/auth"
	"brawlers/battle"
	"brawlers/cats"
	"brawlers/game"
	"brawlers/protocol"
	"brawlers/room"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second
	sendBuffer = 64
	readLimit  = 1 << 20 // 1MB
)

var errClientClosed = errors.New("client closed")

// wsClient is one socket. Writes go through send so the room and battle
// goroutines never block on the network.
type wsClient struct {
	conn      *websocket.Conn
	send      chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

func newWSClient(conn *websocket.Conn) *wsClient {
	return &wsClient{conn: conn, send: make(chan []byte, sendBuffer), closed: make(chan struct{})}
}

// Send queues b. A client too far behind to take it drops the message.
func (c *wsClient) Send(b []byte) error {
	select {
	case <-c.closed:
		return errClientClosed
	default:
	}
	select {
	case c.send <- b:
	default:
	}
	return nil
}

func (c *wsClient) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *wsClient) writer() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	write := func(msg []byte) bool {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Println("write:", err)
			c.Close()
			return false
		}
		return true
	}

	for {
		select {
		case msg := <-c.send:
			if !write(msg) {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		case <-c.closed:
			for {
				select {
				case msg := <-c.send:
					if !write(msg) {
						return
					}
				default:
					_ = c.conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
					return
				}
			}
		}
	}
}

// session is one connected player. The reader goroutine owns room and
// playerID; battle is shared with the battle goroutine's callbacks.
type session struct {
	srv      *Server
	client   *wsClient
	address  string
	room     *room.Room
	playerID string

	mu     sync.Mutex
	battle *battle.Battle
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	var address string
	if tok := auth.TokenFrom(r); tok != "" {
		a, err := s.auth.ParseToken(tok)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		address = a
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("upgrade:", err)
		return
	}
	c := newWSClient(conn)
	go c.writer()

	ss := &session{srv: s, client: c, address: address}
	ss.readLoop()
}

func (ss *session) readLoop() {
	defer ss.teardown()

	conn := ss.client.conn
	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Println("read:", err)
			}
			return
		}
		env, err := protocol.DecodeEnvelope(msg)
		if err != nil {
			ss.fail(protocol.CodeBadRequest, err.Error())
			continue
		}
		ss.handle(env)
	}
}

func (ss *session) handle(env protocol.Envelope) {
	if env.T != protocol.MsgHello && env.T != protocol.MsgChallenge &&
		env.T != protocol.MsgBattleAck && env.T != protocol.MsgBattleClose && ss.room == nil {
		ss.fail(protocol.CodeBadRequest, "send hello first")
		return
	}

	switch env.T {
	case protocol.MsgHello:
		hello, err := protocol.DecodePayload[protocol.Hello](env)
		if err != nil {
			ss.fail(protocol.CodeBadRequest, "bad hello")
			return
		}
		ss.join(hello)
	case protocol.MsgResize:
		rs, err := protocol.DecodePayload[protocol.Resize](env)
		if err != nil {
			ss.fail(protocol.CodeBadRequest, "bad resize")
			return
		}
		ss.room.Send(room.Resize{W: rs.W, H: rs.H})
	case protocol.MsgInspect:
		in, err := protocol.DecodePayload[protocol.Inspect](env)
		if err != nil {
			ss.fail(protocol.CodeBadRequest, "bad inspect")
			return
		}
		ss.inspect(in.CatID)
	case protocol.MsgChallenge:
		ch, err := protocol.DecodePayload[protocol.Challenge](env)
		if err != nil {
			ss.fail(protocol.CodeBadRequest, "bad challenge")
			return
		}
		ss.challenge(ch.Query)
	case protocol.MsgBattleAck:
		ack, err := protocol.DecodePayload[protocol.BattleAck](env)
		if err != nil {
			ss.fail(protocol.CodeBadRequest, "bad battle_ack")
			return
		}
		ss.acknowledge(ack.BattleID)
	case protocol.MsgBattleClose:
		cl, err := protocol.DecodePayload[protocol.BattleClose](env)
		if err != nil {
			ss.fail(protocol.CodeBadRequest, "bad battle_close")
			return
		}
		ss.closeBattle(cl.BattleID)
	default:
		ss.fail(protocol.CodeBadRequest, "unknown message type "+env.T)
	}
}

func (ss *session) join(hello protocol.Hello) {
	if ss.room != nil {
		ss.fail(protocol.CodeBadRequest, "already joined")
		return
	}

	ctx, cancel := ss.srv.lookupContext()
	feed, err := ss.srv.cats.Roster(ctx, ss.address)
	cancel()
	if err != nil {
		// the playground still opens, just empty
		log.Printf("ws %s: loading roster: %v", ss.address, err)
	}
	roster := cats.Roster(feed)

	welcome := func(rm *room.Room) func(string) []byte {
		return func(playerID string) []byte {
			b, _ := protocol.Encode(protocol.MsgWelcome, protocol.Welcome{
				PlayerID:    playerID,
				Address:     ss.address,
				Room:        rm.Code,
				TickHz:      ss.srv.cfg.Sim.TickHz,
				BroadcastHz: ss.srv.cfg.Sim.BroadcastHz,
				SpriteSize:  game.SpriteSize,
			})
			return b
		}
	}

	// A room that empties between lookup and join has already stopped, so
	// try once more with a fresh one.
	for attempt := 0; attempt < 2; attempt++ {
		var rm *room.Room
		if ss.address != "" {
			rm = ss.srv.rooms.ForOwner(ss.address, roster)
		} else {
			rm = ss.srv.rooms.CreateRoom(roster)
		}
		reply := make(chan room.JoinResult, 1)
		if !rm.Send(room.Join{Conn: ss.client, Name: ss.address, Reply: reply, Welcome: welcome(rm)}) {
			continue
		}
		select {
		case res := <-reply:
			ss.room, ss.playerID = rm, res.PlayerID
			if hello.W > 0 && hello.H > 0 {
				rm.Send(room.Resize{W: hello.W, H: hello.H})
			}
			return
		case <-rm.Done():
		}
	}
	ss.fail(protocol.CodeInternal, "could not join a playground")
}

func (ss *session) inspect(catID int64) {
	reply := make(chan room.InspectResult, 1)
	if !ss.room.Send(room.Inspect{CatID: catID, Reply: reply}) {
		return
	}
	var res room.InspectResult
	select {
	case res = <-reply:
	case <-ss.room.Done():
		return
	}
	if !res.Found {
		ss.fail(protocol.CodeNotFound, "no such cat in this playground")
		return
	}

	ctx, cancel := ss.srv.lookupContext()
	defer cancel()
	m, err := ss.srv.cats.Get(ctx, catID)
	if err != nil {
		// the ledger lookup failed; show what the room knows
		m = cats.Metadata{
			TokenID: res.Cat.ID,
			Name:    res.Cat.Name,
			Level:   1,
			Stats:   res.Cat.Stats,
			Color:   res.Cat.Category,
			Clothed: res.Cat.Clothed,
		}
	}
	ss.sendMsg(protocol.MsgCatDetail, protocol.CatDetail{Dashboard: cats.NewDashboard(m)})
}

func (ss *session) teardown() {
	ss.mu.Lock()
	bt := ss.battle
	ss.mu.Unlock()
	if bt != nil {
		bt.Close()
	}
	if ss.room != nil {
		ss.room.Send(room.Leave{PlayerID: ss.playerID})
	}
	ss.client.Close()
}

func (ss *session) sendMsg(t string, payload any) {
	b, err := protocol.Encode(t, payload)
	if err != nil {
		log.Printf("ws: encoding %s: %v", t, err)
		return
	}
	_ = ss.client.Send(b)
}

func (ss *session) fail(code, msg string) {
	_ = ss.client.Send(protocol.EncodeError(code, msg))
}

func (ss *session) failErr(err error) {
	ae := classify(err)
	if ae.Code == protocol.CodeInternal {
		log.Printf("ws %s: %v", ss.address, err)
	}
	ss.fail(ae.Code, ae.Message)
}
