package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fastygo/todoclient/domain"
)

// NewRootCmd builds the todoctl command tree around app.
func NewRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "todoctl",
		Short:         "Terminal client for the todo API",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Try it against a local in-memory API
  todoctl sandbox &
  todoctl register alice -p secret
  todoctl login alice -p secret

  # Work with todos
  todoctl add "Buy milk" --category Errands --priority high
  todoctl list --priority HIGH
  todoctl done 42
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.enter(cmd)
	}

	cmd.PersistentFlags().StringVar(&app.APIURL, "api-url", "", "API base URL (overrides TODO_API_URL)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newRegisterCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newDoneCmd(app, true))
	cmd.AddCommand(newDoneCmd(app, false))
	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newRemoveCmd(app))
	cmd.AddCommand(newCategoriesCmd(app))
	cmd.AddCommand(newIconsCmd())
	cmd.AddCommand(newWatchCmd(app))
	cmd.AddCommand(newStatusCmd(app))
	cmd.AddCommand(newSandboxCmd(app))

	return cmd
}

// Execute runs the command line and releases everything it opened.
func Execute(ctx context.Context, app *App, args []string) error {
	cmd := NewRootCmd(app)
	if args != nil {
		cmd.SetArgs(args)
	}
	err := cmd.ExecuteContext(ctx)
	if closeErr := app.Close(context.WithoutCancel(ctx)); err == nil {
		err = closeErr
	}
	return err
}

func bindView(cmd *cobra.Command, view string) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[viewAnnotation] = view
	return cmd
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// FormatError renders a command failure for the terminal.
func FormatError(err error) string {
	return styleError.Render("Error: " + domain.ErrorMessage(err))
}
