package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fastygo/todoclient/internal/sandbox"
	"github.com/fastygo/todoclient/internal/services/lifecycle"
)

func newSandboxCmd(app *App) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Serve an in-memory todo API for local use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.bootstrap(cmd); err != nil {
				return err
			}
			cfg := app.cfg.Sandbox
			if addr != "" {
				cfg.Addr = addr
			}

			manager := lifecycle.New(app.cfg.Context.ShutdownTimeout, app.logger)
			srv := sandbox.New(cfg, app.logger)
			manager.Register("sandbox", srv.Shutdown)

			ctx, cancel := manager.WithSignals(ctxOf(cmd))
			defer cancel()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()
			fmt.Fprintf(cmd.OutOrStdout(), "Sandbox API listening on %s. Data is lost on exit.\n", cfg.Addr)

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("sandbox: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			err := manager.Shutdown(context.WithoutCancel(ctx))
			if serveErr := <-errCh; serveErr != nil && !errors.Is(serveErr, context.Canceled) {
				err = errors.Join(err, serveErr)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default SANDBOX_ADDR)")
	return cmd
}
