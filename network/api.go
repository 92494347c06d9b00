package network

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"brawlers/auth"
	"brawlers/cats"
	"brawlers/ens"
	"brawlers/room"
	"brawlers/store"
)

type RosterResp struct {
	Cats      []cats.Dashboard `json:"cats"`
	Level     int              `json:"level"`
	Unlocks   cats.Ladder      `json:"unlocks"`
	Available []string         `json:"available"`
	Fighter   int64            `json:"fighter,omitempty"`
}

func (s *Server) handleRoster(w http.ResponseWriter, r *http.Request) {
	owner := auth.AddressFrom(r.Context())
	feed, err := s.cats.Roster(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	level, err := s.cats.Level(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := RosterResp{
		Cats:      make([]cats.Dashboard, 0, len(feed)),
		Level:     level,
		Unlocks:   s.cats.Ladder(),
		Available: []string{},
	}
	for _, m := range feed {
		resp.Cats = append(resp.Cats, cats.NewDashboard(m))
	}
	for _, c := range s.cats.Ladder().Available(level) {
		resp.Available = append(resp.Available, c.String())
	}
	if len(feed) > 0 {
		if f, err := s.cats.Fighter(r.Context(), owner); err == nil {
			resp.Fighter = f.TokenID
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMint(w http.ResponseWriter, r *http.Request) {
	var req cats.UnlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	owner := auth.AddressFrom(r.Context())
	m, err := s.cats.Unlock(r.Context(), owner, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.refreshRoom(r.Context(), owner)
	writeJSON(w, http.StatusCreated, cats.NewDashboard(m))
}

// refreshRoom pushes the new roster into the owner's playground, if open.
func (s *Server) refreshRoom(ctx context.Context, owner string) {
	if s.rooms == nil {
		return
	}
	rm, ok := s.rooms.Room(strings.ToLower(owner))
	if !ok {
		return
	}
	feed, err := s.cats.Roster(ctx, owner)
	if err != nil {
		log.Printf("room %s: reloading roster: %v", rm.Code, err)
		return
	}
	rm.Send(room.SetRoster{Roster: cats.Roster(feed)})
}

type DefaultReq struct {
	TokenID int64 `json:"tokenId"`
}

func (s *Server) handleSetDefault(w http.ResponseWriter, r *http.Request) {
	var req DefaultReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	if err := s.cats.SetDefault(r.Context(), auth.AddressFrom(r.Context()), req.TokenID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCat(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		badRequest(w, "invalid token id")
		return
	}
	m, err := s.cats.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cats.NewDashboard(m))
}

type StoreResp struct {
	Catalog   store.Catalog   `json:"catalog"`
	Inventory store.Inventory `json:"inventory"`
}

type ItemReq struct {
	ID string `json:"id"`
}

func (s *Server) handleStore(w http.ResponseWriter, r *http.Request) {
	inv, err := s.store.Inventory(r.Context(), auth.AddressFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StoreResp{Catalog: s.store.Catalog(), Inventory: inv})
}

func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	s.storeAction(w, r, s.store.Purchase)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	s.storeAction(w, r, s.store.Select)
}

func (s *Server) storeAction(w http.ResponseWriter, r *http.Request, act func(context.Context, string, string) (store.Inventory, error)) {
	var req ItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	inv, err := act(r.Context(), auth.AddressFrom(r.Context()), req.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

type SearchResp struct {
	Result  *ens.Identity  `json:"result,omitempty"`
	History []ens.Identity `json:"history"`
}

// handleSearch resolves ?q= and records the hit. Without q it only returns
// the history.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	hist := s.histories.For(auth.AddressFrom(r.Context()))
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusOK, SearchResp{History: hist.List()})
		return
	}
	if s.resolver == nil {
		writeJSON(w, http.StatusServiceUnavailable, apiError{Code: "SEARCH_DISABLED", Message: "player search is not configured"})
		return
	}

	ctx, cancel := s.lookupContext()
	defer cancel()
	id, err := s.resolver.Resolve(ctx, q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	hist.Add(id)
	writeJSON(w, http.StatusOK, SearchResp{Result: &id, History: hist.List()})
}

func (s *Server) handleClearSearch(w http.ResponseWriter, r *http.Request) {
	s.histories.For(auth.AddressFrom(r.Context())).Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.rooms.ListRooms())
}
