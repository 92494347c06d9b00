package room

import (
	"crypto/rand"
	"log"
	"math/big"
	"strings"
	"sync"

	"brawlers/game"
)

// RoomInfo is returned by the API for the room list.
type RoomInfo struct {
	Code    string `json:"code"`
	Players int    `json:"players"`
}

// Manager holds multiple rooms by code. A signed-in player's room is keyed by
// their address so every tab they open shares one playground. Rooms are
// removed when the last player leaves.
type Manager struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	base  Config
}

// NewManager creates rooms from base. Each room gets its own Seed unless
// base sets one.
func NewManager(base Config) *Manager {
	return &Manager{
		rooms: make(map[string]*Room),
		base:  base,
	}
}

// ForOwner returns the room for owner, creating it with roster if needed.
// An existing room keeps its cats.
func (m *Manager) ForOwner(owner string, roster []game.Traits) *Room {
	return m.GetOrCreateRoom(strings.ToLower(owner), roster)
}

// GetOrCreateRoom returns the room for the given code, creating it if needed.
func (m *Manager) GetOrCreateRoom(code string, roster []game.Traits) *Room {
	if code == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rooms[code]; ok {
		return r
	}
	return m.startLocked(code, roster)
}

const codeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CreateRoom generates a unique 6-char code for a guest room and returns it.
func (m *Manager) CreateRoom(roster []game.Traits) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	for {
		code := generateCode(6)
		if _, exists := m.rooms[code]; exists {
			continue
		}
		return m.startLocked(code, roster)
	}
}

func (m *Manager) startLocked(code string, roster []game.Traits) *Room {
	cfg := m.base
	cfg.Roster = roster
	r := New(cfg)
	r.Code = code
	r.OnEmpty = func(c string) {
		m.removeRoom(c, r)
	}
	m.rooms[code] = r
	r.Start()
	log.Printf("room %s: created with %d cats", code, len(roster))
	return r
}

// removeRoom runs on the room's goroutine, which exits right after.
func (m *Manager) removeRoom(code string, r *Room) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.rooms[code]; ok && cur == r {
		delete(m.rooms, code)
		log.Printf("room %s: removed", code)
	}
}

// Room returns the room for code if it is live.
func (m *Manager) Room(code string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[code]
	return r, ok
}

// ListRooms returns all active rooms with code and player count.
func (m *Manager) ListRooms() []RoomInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RoomInfo, 0, len(m.rooms))
	for code, r := range m.rooms {
		out = append(out, RoomInfo{Code: code, Players: r.NumPlayers()})
	}
	return out
}

// Close stops every room and waits for them to exit.
func (m *Manager) Close() {
	m.mu.Lock()
	rooms := make([]*Room, 0, len(m.rooms))
	for code, r := range m.rooms {
		rooms = append(rooms, r)
		delete(m.rooms, code)
	}
	m.mu.Unlock()
	for _, r := range rooms {
		r.Stop()
	}
}

func generateCode(n int) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(codeChars)))
	for i := range b {
		idx, _ := rand.Int(rand.Reader, max)
		b[i] = codeChars[idx.Int64()]
	}
	return string(b)
}
