package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/webswing/internal/core/observability/log"
	"github.com/zeusync/webswing/internal/injector"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var listen string
	var shutdownTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the simulation and the WebSocket server until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Server.ListenAddr = listen
			}

			app, cleanup, err := injector.InitializeApp(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			if err := app.Server.Start(ctx); err != nil {
				return err
			}
			app.Logger.Info("webswing serving",
				log.String("version", Version),
				log.Stringer("addr", app.Server.Addr()))

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return app.World.Run(gctx, app.Server.OnTick)
			})
			g.Go(func() error {
				<-gctx.Done()
				stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return app.Server.Stop(stopCtx)
			})
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "override server.listen_addr")
	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 10*time.Second, "graceful shutdown limit")
	return cmd
}
