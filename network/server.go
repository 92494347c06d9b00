// Package network serves the playground and battles over WebSocket and the
// store, mint, search and sign-in flows over HTTP.
package network

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gorilla/websocket"

	"brawlers/auth"
	"brawlers/battle"
	"brawlers/cats"
	"brawlers/config"
	"brawlers/ens"
	"brawlers/room"
	"brawlers/store"
)

// Deps wires the server to its services. Resolver may be nil, which turns
// player search and challenges off.
type Deps struct {
	Config   *config.Config
	Auth     *auth.Auth
	Cats     *cats.Service
	Store    *store.Service
	Resolver ens.Resolver
	Rooms    *room.Manager
	Clock    clock.Clock
	Rand     func() battle.Rand // per battle; time seeded when nil
}

type Server struct {
	cfg       *config.Config
	auth      *auth.Auth
	cats      *cats.Service
	store     *store.Service
	resolver  ens.Resolver
	rooms     *room.Manager
	clk       clock.Clock
	newRand   func() battle.Rand
	histories *ens.Histories
	upgrader  websocket.Upgrader
}

func NewServer(d Deps) *Server {
	if d.Config == nil {
		d.Config = config.Default()
	}
	if d.Clock == nil {
		d.Clock = clock.New()
	}
	if d.Rand == nil {
		d.Rand = func() battle.Rand { return rand.New(rand.NewSource(time.Now().UnixNano())) }
	}
	return &Server{
		cfg:       d.Config,
		auth:      d.Auth,
		cats:      d.Cats,
		store:     d.Store,
		resolver:  d.Resolver,
		rooms:     d.Rooms,
		clk:       d.Clock,
		newRand:   d.Rand,
		histories: ens.NewHistories(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  2048,
			WriteBufferSize: 2048,
			// For dev, allow all origins. Lock this down in prod.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	protected := func(h http.HandlerFunc) http.Handler { return s.auth.RequireAuth(h) }

	mux.HandleFunc("POST /api/auth/nonce", s.auth.HandleNonce)
	mux.HandleFunc("POST /api/auth/login", s.auth.HandleLogin)

	mux.Handle("GET /api/cats", protected(s.handleRoster))
	mux.Handle("POST /api/cats/mint", protected(s.handleMint))
	mux.Handle("POST /api/cats/default", protected(s.handleSetDefault))
	mux.HandleFunc("GET /api/cats/{id}", s.handleCat)

	mux.Handle("GET /api/store", protected(s.handleStore))
	mux.Handle("POST /api/store/purchase", protected(s.handlePurchase))
	mux.Handle("POST /api/store/select", protected(s.handleSelect))

	mux.Handle("GET /api/search", protected(s.handleSearch))
	mux.Handle("DELETE /api/search", protected(s.handleClearSearch))

	mux.HandleFunc("GET /api/rooms", s.handleRooms)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// ListenAndServe runs until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	hs := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("server listening on %s (ws endpoint: /ws)", hs.Addr)
		errc <- hs.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := hs.Shutdown(shutdownCtx)
	if s.rooms != nil {
		s.rooms.Close()
	}
	if lerr := <-errc; lerr != nil && !errors.Is(lerr, http.ErrServerClosed) && err == nil {
		err = lerr
	}
	return err
}

func (s *Server) lookupContext() (context.Context, context.CancelFunc) {
	d := s.cfg.ENS.Timeout
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(context.Background(), d)
}
