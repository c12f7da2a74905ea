package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fastygo/todoclient/domain"
)

func newLoginCmd(app *App) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login [username]",
		Short: "Sign in and remember the session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := app.credentials(cmd, args, password)
			if err != nil {
				return err
			}
			if err := app.rt.auth.Login(ctxOf(cmd), creds.Username, creds.Password); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged in as "+styleTitle.Render(app.rt.auth.Session().Username))
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")
	return bindView(cmd, viewLogin)
}

func newRegisterCmd(app *App) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "register [username]",
		Short: "Create an account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := app.credentials(cmd, args, password)
			if err != nil {
				return err
			}
			if err := app.rt.auth.Register(ctxOf(cmd), creds.Username, creds.Password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account %s created. Run `todoctl login %s` to sign in.\n", creds.Username, creds.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")
	return bindView(cmd, viewLogin)
}

func newLogoutCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			was := app.rt.auth.Session().Username
			app.rt.auth.Logout(ctxOf(cmd))
			if was == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out "+was)
			return nil
		},
	}
	return bindView(cmd, viewNone)
}

func newWhoamiCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !app.rt.auth.IsAuthenticated() {
				return domain.NewError(domain.ErrCodeUnauthorized, "not logged in")
			}
			fmt.Fprintln(cmd.OutOrStdout(), app.rt.auth.Session().Username)
			return nil
		},
	}
	return bindView(cmd, viewNone)
}

// credentials fills in whatever the arguments left out from the input stream.
func (a *App) credentials(cmd *cobra.Command, args []string, password string) (domain.Credentials, error) {
	var creds domain.Credentials
	if len(args) > 0 {
		creds.Username = strings.TrimSpace(args[0])
	}
	if creds.Username == "" {
		name, err := a.readLine(cmd, "Username: ")
		if err != nil {
			return creds, fmt.Errorf("read username: %w", err)
		}
		creds.Username = strings.TrimSpace(name)
	}
	creds.Password = password
	if creds.Password == "" {
		pass, err := a.readLine(cmd, "Password: ")
		if err != nil {
			return creds, fmt.Errorf("read password: %w", err)
		}
		creds.Password = pass
	}
	return creds, creds.Validate()
}
