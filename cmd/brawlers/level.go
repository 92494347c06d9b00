package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"brawlers/config"
)

type levelOpts struct {
	db      string
	tokenID int64
	level   int
}

func newLevelCmd() *cobra.Command {
	var o levelOpts
	cmd := &cobra.Command{
		Use:   "level <token-id> <level>",
		Short: "Set a cat's level in the ledger (admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if o.tokenID, err = strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("token id %q: %w", args[0], err)
			}
			if o.level, err = strconv.Atoi(args[1]); err != nil {
				return fmt.Errorf("level %q: %w", args[1], err)
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runLevel(cmd.Context(), cfg.SQLite, o, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&o.db, "db", "", "Ledger path (overrides config)")
	return cmd
}

func runLevel(ctx context.Context, cfg config.SQLiteConfig, o levelOpts, out io.Writer) error {
	if o.level < 1 {
		return fmt.Errorf("level must be >= 1, got %d", o.level)
	}
	if o.db != "" {
		cfg.Path = o.db
	}
	repo, err := openRepo(ctx, cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.SetLevel(ctx, o.tokenID, o.level); err != nil {
		return err
	}
	fmt.Fprintf(out, "cat #%d is now level %d (%s)\n", o.tokenID, o.level, repo.Path())
	return nil
}
