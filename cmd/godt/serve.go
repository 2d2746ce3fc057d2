package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"goDT/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the configured tables over HTTP",
		Example: `  godt serve --config godt.yaml
  GODT_DATABASE_DSN=postgres://localhost/app godt serve -c godt.yaml --addr :9090`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			metrics := server.NewMetrics()
			eng, closeFn, err := buildEngine(ctx, a.cfg, a.tables, a.log, metrics.DroppedTerm)
			if err != nil {
				return err
			}
			defer closeFn()

			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			a.log.Info().Strs("tables", eng.Tables()).Str("engine", string(a.cfg.Dialect())).Msg("engine ready")
			return server.New(eng, a.log, metrics).Run(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}
