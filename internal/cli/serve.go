package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rushteam/placekit/server"
)

func newServeCommand(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the prediction HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := o.setup()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log.Info("starting placekit", zap.String("version", version))
			a, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			srv := server.New(server.Config{
				Addr:            cfg.Server.Addr,
				ShutdownTimeout: cfg.Server.ShutdownTimeout,
				CORSOrigins:     cfg.Server.CORSOrigins,
			}, a.svc, a.metrics, log)
			return srv.Run(ctx)
		},
	}

	cmd.Flags().String("addr", "", "listen address (default :5001)")
	_ = o.v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	return cmd
}
