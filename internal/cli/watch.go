package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fastygo/todoclient/domain"
	"github.com/fastygo/todoclient/internal/services"
	taskUC "github.com/fastygo/todoclient/usecase/task"
)

func newWatchCmd(app *App) *cobra.Command {
	var (
		filter   domain.TaskFilter
		priority string
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the todo list on screen and reload it periodically",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt := app.rt
			if priority != "" {
				p, err := domain.ParsePriority(priority)
				if err != nil {
					return err
				}
				filter.Priority = p
			}
			if interval <= 0 {
				interval = app.cfg.Refresh.Interval
			}

			ctx, cancel := rt.lifecycle.WithSignals(ctxOf(cmd))
			defer cancel()

			out := cmd.OutOrStdout()
			unsubscribe := rt.tasks.Subscribe(func(s taskUC.State) {
				if s.Loading {
					return
				}
				fmt.Fprintln(out, styleMuted.Render(time.Now().Format("15:04:05")))
				if s.Err != "" {
					fmt.Fprintln(out, styleError.Render(s.Err))
					return
				}
				fmt.Fprintln(out, renderTodos(s.Todos))
			})
			defer unsubscribe()

			// forced logout ends the watch
			stopOnLogout := rt.auth.Subscribe(func(s domain.Session) {
				if !s.IsAuthenticated() {
					cancel()
				}
			})
			defer stopOnLogout()

			rt.monitor.Check(ctx)
			rt.monitor.Start()
			rt.lifecycle.Register("monitor", func(context.Context) error {
				rt.monitor.Stop()
				return nil
			})

			refresher := services.NewRefresher(rt.tasks, rt.monitor, rt.auth, app.logger, services.RefresherConfig{
				Interval: interval,
				Filter:   filter,
			})
			rt.lifecycle.Register("refresher", func(ctx context.Context) error {
				refresher.Stop(ctx)
				return nil
			})

			if !refresher.Refresh(ctx) {
				app.logger.Warn("api unreachable, waiting for the next tick", zap.String("api", app.cfg.API.BaseURL))
			}
			refresher.Start()

			<-ctx.Done()
			if !rt.auth.IsAuthenticated() {
				return domain.NewError(domain.ErrCodeUnauthorized, "session ended")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter.Keyword, "keyword", "k", "", "Match titles containing this text")
	cmd.Flags().Int64Var(&filter.CategoryID, "category", 0, "Category id")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "HIGH, MEDIUM or LOW")
	cmd.Flags().StringVarP(&filter.Date, "date", "d", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Reload interval (default TODO_REFRESH_INTERVAL)")
	return bindView(cmd, viewHome)
}

func newStatusCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check API reachability and the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt := app.rt
			ctx, cancel := context.WithTimeout(ctxOf(cmd), app.cfg.API.RequestTimeout)
			defer cancel()

			status := rt.monitor.Check(ctx)
			session := rt.auth.Session()
			fmt.Fprintln(cmd.OutOrStdout(), renderStatus(status, rt.client.BaseURL(), session.IsAuthenticated(), session.Username))
			return nil
		},
	}
	return bindView(cmd, viewNone)
}
