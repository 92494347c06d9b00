package main

import (
	"fmt"
	"math/rand"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"brawlers/game"
)

type simulateOpts struct {
	cats   int
	ticks  int
	every  int
	width  float64
	height float64
	seed   int64
}

func newSimulateCmd() *cobra.Command {
	var o simulateOpts
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a headless playground and print cat positions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(o)
		},
	}
	cmd.Flags().IntVar(&o.cats, "cats", game.DecorativeCats, "Number of decorative cats")
	cmd.Flags().IntVar(&o.ticks, "ticks", 600, "Ticks to run")
	cmd.Flags().IntVar(&o.every, "every", 120, "Print every N ticks")
	cmd.Flags().Float64Var(&o.width, "width", game.DefaultViewportW, "Viewport width")
	cmd.Flags().Float64Var(&o.height, "height", game.DefaultViewportH, "Viewport height")
	cmd.Flags().Int64Var(&o.seed, "seed", 1, "Random seed")
	return cmd
}

func runSimulate(o simulateOpts) error {
	if o.every <= 0 {
		return fmt.Errorf("--every must be > 0")
	}
	rnd := rand.New(rand.NewSource(o.seed))
	pg := game.NewPlayground(game.Bounds{W: o.width, H: o.height}, game.DecorativeRoster(o.cats, rnd), rnd)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	printPlayground(w, pg)
	for i := 0; i < o.ticks; i++ {
		pg.Advance(rnd)
		if pg.Tick%o.every == 0 {
			printPlayground(w, pg)
		}
	}
	return w.Flush()
}

func printPlayground(w *tabwriter.Writer, pg *game.Playground) {
	fmt.Fprintf(w, "tick %d\n", pg.Tick)
	fmt.Fprintln(w, "ID\tCATEGORY\tX\tY\tDIR\tMOVING\tSPRITE")
	for _, c := range pg.Cats {
		fmt.Fprintf(w, "%d\t%s\t%.1f\t%.1f\t%+d\t%v\t%s\n", c.ID, c.Category, c.X, c.Y, c.Direction, c.Moving, game.SpriteFor(c))
	}
	fmt.Fprintln(w)
}
