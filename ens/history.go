package ens

import (
	"strings"
	"sync"
)

// HistoryLimit is how many recent searches are kept.
const HistoryLimit = 5

// History is a newest-first list of recent search results.
type History struct {
	mu      sync.Mutex
	entries []Identity
}

// Add records id unless an entry for the same address is already present.
func (h *History) Add(id Identity) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, e := range h.entries {
		if strings.EqualFold(e.Address, id.Address) {
			return
		}
	}
	h.entries = append([]Identity{id}, h.entries...)
	if len(h.entries) > HistoryLimit {
		h.entries = h.entries[:HistoryLimit]
	}
}

func (h *History) List() []Identity {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Identity, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *History) Clear() {
	h.mu.Lock()
	h.entries = nil
	h.mu.Unlock()
}

// Histories keeps one History per player.
type Histories struct {
	mu sync.Mutex
	by map[string]*History
}

func NewHistories() *Histories {
	return &Histories{by: make(map[string]*History)}
}

func (hs *Histories) For(owner string) *History {
	owner = strings.ToLower(owner)
	hs.mu.Lock()
	defer hs.mu.Unlock()
	h, ok := hs.by[owner]
	if !ok {
		h = &History{}
		hs.by[owner] = h
	}
	return h
}
