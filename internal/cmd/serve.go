package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Starts the xban bot service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, errApp := NewXBan()
			if errApp != nil {
				return errApp
			}

			defer app.Close()

			if errInit := app.Init(ctx); errInit != nil {
				return errInit
			}

			return app.Serve(ctx)
		},
	}
}
