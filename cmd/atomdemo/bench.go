package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/atom/internal/bench"
	"github.com/vango-dev/atom/pkg/form"
)

func benchCmd(flags *globalFlags) *cobra.Command {
	var (
		fields int
		edits  int
		seed   uint64
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Simulate typing and report render counts",
		Long: `Mount the form, apply random single-field edits and report how
many components of each kind re-rendered.

With selector bindings only the edited input and its display should
re-render, two components per edit regardless of --fields.

Examples:
  atomdemo bench
  atomdemo bench --fields=5000 --edits=10000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if fields <= 0 {
				fields = cfg.Form.Fields
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			report, err := bench.Run(ctx, bench.Options{
				Fields: fields,
				Edits:  edits,
				Seed:   seed,
				Logger: cfg.Logger(os.Stderr),
			})
			if err != nil {
				return err
			}

			printBanner()
			success("%d edits across %d fields in %s", report.Edits, report.Fields, report.Elapsed.Round(time.Microsecond))
			info("Subscribers:       %d", report.Subscribers)
			info("Notifications:     %d", report.Notifications)
			info("Per edit:          %s", report.PerEdit())
			info("Renders per edit:  %.2f", report.RendersPerEdit())
			fmt.Println()
			info("Mount:  %s", form.FormatStats(report.Mount))
			info("Edits:  %s", form.FormatStats(report.Renders))
			if report.RendersPerEdit() > 2 {
				warn("more than two components re-render per edit")
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&fields, "fields", "n", 0, "Number of field pairs (default from config)")
	cmd.Flags().IntVarP(&edits, "edits", "e", 1000, "Number of simulated keystrokes")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "Random seed")

	return cmd
}
