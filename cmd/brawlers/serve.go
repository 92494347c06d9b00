package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"brawlers/auth"
	"brawlers/cats"
	"brawlers/config"
	"brawlers/ens"
	"brawlers/game"
	"brawlers/network"
	"brawlers/room"
	"brawlers/storage/sqlite"
	"brawlers/store"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	return cmd
}

func loadConfig() (*config.Config, error) {
	config.InitConfig()
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// openRepo opens the ledger at cfg.Path, creating its directory and schema.
func openRepo(ctx context.Context, cfg config.SQLiteConfig) (*sqlite.Repository, error) {
	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}
	repo, err := sqlite.NewRepository(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		repo.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return repo, nil
}

func runServe(ctx context.Context, addr string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	repo, err := openRepo(ctx, cfg.SQLite)
	if err != nil {
		return err
	}
	defer repo.Close()

	var resolver ens.Resolver
	if cfg.ENS.RPCURL != "" {
		dialCtx, cancel := context.WithTimeout(ctx, cfg.ENS.Timeout)
		r, client, err := ens.Dial(dialCtx, cfg.ENS.RPCURL)
		cancel()
		if err != nil {
			return err
		}
		defer client.Close()
		resolver = r
	} else {
		log.Println("ens: no rpc_url configured, player search is off")
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	srv := network.NewServer(network.Deps{
		Config:   cfg,
		Auth:     auth.New(cfg.Auth, nil),
		Cats:     cats.NewService(repo, repo, cats.DefaultLadder(), rnd),
		Store:    store.NewService(store.DefaultCatalog(), repo, cfg.Store.StartingPoints),
		Resolver: resolver,
		Rooms: room.NewManager(room.Config{
			TickHz:      cfg.Sim.TickHz,
			BroadcastHz: cfg.Sim.BroadcastHz,
			Bounds:      game.Bounds{W: cfg.Sim.ViewportW, H: cfg.Sim.ViewportH},
		}),
	})
	return srv.ListenAndServe(ctx)
}
