package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fastygo/todoclient/domain"
)

func newCategoriesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cat"},
		Short:   "List categories",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app.rt.tasks.FetchCategories(ctxOf(cmd))
			state := app.rt.tasks.State()
			if state.Err != "" {
				return domain.NewError(domain.ErrCodeUnavailable, state.Err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderCategories(state.Categories))
			return nil
		},
	}
	cmd.AddCommand(newCategoryAddCmd(app))
	return bindView(cmd, viewHome)
}

func newCategoryAddCmd(app *App) *cobra.Command {
	var icon string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(strings.Join(args, " "))
			if name == "" {
				return domain.NewError(domain.ErrCodeInvalid, "category name is required")
			}
			if icon != "" && !domain.IsKnownIcon(icon) {
				return domain.NewError(domain.ErrCodeInvalid, fmt.Sprintf("unknown icon %q, see `todoctl icons`", icon))
			}
			created, err := app.rt.tasks.CreateCategory(ctxOf(cmd), name, icon)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderCategories([]domain.Category{*created}))
			return nil
		},
	}
	cmd.Flags().StringVarP(&icon, "icon", "i", "", "Icon name (default "+domain.DefaultIcon+")")
	return bindView(cmd, viewHome)
}

func newIconsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "icons",
		Short: "List the icons a category can use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), renderIcons())
			return nil
		},
	}
}
