// Package main provides the entry point for the brawlers server and tools.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0-dev"
	configPath string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:     "brawlers",
		Short:   "BitBrawlers game server: cat playground, VS battles, store and mint",
		Version: version,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default brawlers.yaml)")

	rootCmd.AddCommand(
		newServeCmd(),
		newSimulateCmd(),
		newBattleCmd(),
		newLevelCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}
