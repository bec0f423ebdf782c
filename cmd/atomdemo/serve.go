package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/atom/internal/metrics"
	"github.com/vango-dev/atom/internal/server"
	"github.com/vango-dev/atom/pkg/atom"
	"github.com/vango-dev/atom/pkg/form"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		port   int
		host   string
		fields int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the live form",
		Long: `Serve the paired-field form over HTTP.

Every browser tab gets its own live view bound to one shared form.
Edits made in one tab, or through the JSON API, show up in all tabs.

Endpoints:
  GET  /                          the form
  GET  /ws                        live updates
  GET  /api/fields                current values
  PUT  /api/fields/{index}/{side} set one field ({"value": "..."})
  GET  /metrics                   Prometheus metrics
  GET  /healthz                   liveness

Examples:
  atomdemo serve
  atomdemo serve --port=8080 --fields=50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if fields > 0 {
				cfg.Form.Fields = fields
			}

			logger := cfg.Logger(os.Stderr)

			var opts []server.Option
			atomOpts := []atom.Option{atom.WithName("fields"), atom.WithLogger(logger)}
			if cfg.Metrics.Enabled {
				reg := prometheus.NewRegistry()
				reg.MustRegister(collectors.NewGoCollector())
				collector := metrics.New(metrics.WithRegistry(reg), metrics.WithNamespace(cfg.Metrics.Namespace))
				atomOpts = append(atomOpts, atom.WithObserver(collector))
				opts = append(opts, server.WithMetrics(collector))
			}

			store := form.NewStore(cfg.Form.Fields, atomOpts...)
			srv := server.New(cfg, store, append(opts, server.WithLogger(logger))...)

			printBanner()
			success("Serving %d fields on %s", cfg.Form.Fields, cfg.URL())
			if cfg.Metrics.Enabled {
				info("Metrics at %s%s", cfg.URL(), cfg.Metrics.Path)
			}
			fmt.Println()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from config)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from config)")
	cmd.Flags().IntVarP(&fields, "fields", "n", 0, "Number of field pairs (default from config)")

	return cmd
}
