package main

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/spf13/cobra"

	"brawlers/battle"
	"brawlers/game"
)

type battleOpts struct {
	a, b     string
	seed     int64
	realtime bool
}

func newBattleCmd() *cobra.Command {
	var o battleOpts
	cmd := &cobra.Command{
		Use:   "battle",
		Short: "Run one offline battle between two stat lines",
		Long: "Stats are attack,defence,speed,health. Without --realtime the battle " +
			"runs on a simulated clock and finishes immediately.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBattle(o)
		},
	}
	cmd.Flags().StringVar(&o.a, "a", "50,50,50,50", "Challenger stats")
	cmd.Flags().StringVar(&o.b, "b", "50,50,50,50", "Challenged stats")
	cmd.Flags().Int64Var(&o.seed, "seed", time.Now().UnixNano(), "Random seed")
	cmd.Flags().BoolVar(&o.realtime, "realtime", false, "Pace the battle with the wall clock")
	return cmd
}

func parseStats(s string) (game.Stats, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return game.Stats{}, fmt.Errorf("stats %q: want attack,defence,speed,health", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return game.Stats{}, fmt.Errorf("stats %q: %w", s, err)
		}
		v[i] = n
	}
	return game.Stats{Attack: v[0], Defence: v[1], Speed: v[2], Health: v[3]}, nil
}

func runBattle(o battleOpts) error {
	sa, err := parseStats(o.a)
	if err != nil {
		return err
	}
	sb, err := parseStats(o.b)
	if err != nil {
		return err
	}
	a := battle.Competitor{Name: "challenger", CatName: "A", Stats: sa}
	b := battle.Competitor{Name: "challenged", CatName: "B", Stats: sb}

	var clk clock.Clock = clock.New()
	mock := clock.NewMock()
	if !o.realtime {
		clk = mock
	}

	// every event of one battle fits; notify never blocks
	events := make(chan battle.Event, 64)
	bt := battle.Start(battle.Config{Clock: clk, Timing: battle.DefaultTiming()}, a, b,
		rand.New(rand.NewSource(o.seed)), func(ev battle.Event) { events <- ev })
	fmt.Printf("battle %s: %s (total %d) vs %s (total %d)\n", bt.ID, a.Name, sa.Total(), b.Name, sb.Total())

	for {
		select {
		case ev := <-events:
			switch ev.Kind {
			case battle.EventPhase:
				fmt.Printf("[%s] phase %s\n", clk.Now().Format("15:04:05.000"), ev.Phase)
				if ev.Phase == battle.PhaseResult {
					fmt.Printf("winner: %s\n", ev.Winner.Name)
					out, err := bt.Acknowledge()
					if err != nil {
						return err
					}
					fmt.Printf("finished, winner %s\n", out.Winner.Name)
					return nil
				}
			case battle.EventProgress:
				fmt.Printf("[%s] progress %d%%\n", clk.Now().Format("15:04:05.000"), ev.Progress)
			}
		case <-time.After(time.Millisecond):
			if !o.realtime {
				mock.Add(10 * time.Millisecond)
			}
		}
	}
}
