package cli

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fastygo/todoclient/domain"
	"github.com/fastygo/todoclient/internal/dialog"
)

const dateLayout = "2006-01-02"

func newListCmd(app *App) *cobra.Command {
	var (
		filter   domain.TaskFilter
		category string
		priority string
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List todos, optionally filtered",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := ctxOf(cmd)
			if priority != "" {
				p, err := domain.ParsePriority(priority)
				if err != nil {
					return err
				}
				filter.Priority = p
			}
			if category != "" {
				id, err := app.resolveCategory(cmd, category)
				if err != nil {
					return err
				}
				filter.CategoryID = id
			}
			if err := checkDate(filter.Date); err != nil {
				return err
			}

			app.rt.tasks.FetchTasks(ctx, filter)
			state := app.rt.tasks.State()
			if state.Err != "" {
				return domain.NewError(domain.ErrCodeUnavailable, state.Err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTodos(state.Todos))
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter.Keyword, "keyword", "k", "", "Match titles containing this text")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category id or name")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "HIGH, MEDIUM or LOW")
	cmd.Flags().StringVarP(&filter.Date, "date", "d", "", "Due date (YYYY-MM-DD)")
	return bindView(cmd, viewHome)
}

func newAddCmd(app *App) *cobra.Command {
	var category, priority, due string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a todo",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := domain.NewTodo{Title: strings.Join(args, " "), DueDate: due}
			p, err := domain.ParsePriority(priority)
			if err != nil {
				return err
			}
			in.Priority = p
			if err := checkDate(due); err != nil {
				return err
			}
			if category != "" {
				if in.CategoryID, err = app.resolveCategory(cmd, category); err != nil {
					return err
				}
			}

			todo, err := app.rt.tasks.CreateTask(ctxOf(cmd), in)
			if err != nil {
				return err
			}
			if todo == nil {
				return domain.NewError(domain.ErrCodeInvalid, "title is required")
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTodo(*todo))
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category id or name")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "HIGH, MEDIUM or LOW (default LOW)")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	return bindView(cmd, viewHome)
}

// newDoneCmd builds "done" when completed is true and "undo" otherwise.
func newDoneCmd(app *App, completed bool) *cobra.Command {
	use, short := "done <id>", "Mark a todo completed"
	if !completed {
		use, short = "undo <id>", "Mark a todo not completed"
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			todo, err := app.findTodo(cmd, args[0])
			if err != nil {
				return err
			}
			todo.Completed = completed
			updated, err := app.rt.tasks.UpdateTask(ctxOf(cmd), todo)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTodo(*updated))
			return nil
		},
	}
	return bindView(cmd, viewHome)
}

func newEditCmd(app *App) *cobra.Command {
	var title, priority, due, category string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a todo's fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			todo, err := app.findTodo(cmd, args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("title") {
				if strings.TrimSpace(title) == "" {
					return domain.NewError(domain.ErrCodeInvalid, "title is required")
				}
				todo.Title = title
			}
			if flags.Changed("priority") {
				if todo.Priority, err = domain.ParsePriority(priority); err != nil {
					return err
				}
			}
			if flags.Changed("due") {
				if err := checkDate(due); err != nil {
					return err
				}
				todo.DueDate = nil
				if due != "" {
					todo.DueDate = &due
				}
			}
			if flags.Changed("category") {
				todo.Category = nil
				if category != "" {
					id, err := app.resolveCategory(cmd, category)
					if err != nil {
						return err
					}
					todo.Category = &domain.Category{ID: id}
				}
			}

			updated, err := app.rt.tasks.UpdateTask(ctxOf(cmd), todo)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTodo(*updated))
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "HIGH, MEDIUM or LOW")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD); empty clears it")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category id or name; empty clears it")
	return bindView(cmd, viewHome)
}

func newRemoveCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a todo after confirmation",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := ctxOf(cmd)
			todo, err := app.findTodo(cmd, args[0])
			if err != nil {
				return err
			}

			if !yes {
				ok, err := app.rt.dialog.Confirm(ctx, "Delete todo",
					fmt.Sprintf("<p>Delete <b>%s</b>?</p><p>This cannot be undone.</p>", html.EscapeString(todo.Title)),
					dialog.Options{ConfirmText: "Delete", HTML: true})
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
					return nil
				}
			}

			if err := app.rt.tasks.DeleteTask(ctx, todo.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d\n", todo.ID)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation")
	return bindView(cmd, viewHome)
}

// findTodo loads the collection and looks the todo up by id.
func (a *App) findTodo(cmd *cobra.Command, raw string) (domain.Todo, error) {
	id, err := parseID(raw)
	if err != nil {
		return domain.Todo{}, err
	}
	a.rt.tasks.FetchTasks(ctxOf(cmd), domain.TaskFilter{})
	if msg := a.rt.tasks.State().Err; msg != "" {
		return domain.Todo{}, domain.NewError(domain.ErrCodeUnavailable, msg)
	}
	todo, ok := a.rt.tasks.Find(id)
	if !ok {
		return domain.Todo{}, domain.ErrTaskNotFound
	}
	return todo, nil
}

// resolveCategory accepts a numeric id or a case-insensitive name.
func (a *App) resolveCategory(cmd *cobra.Command, ref string) (int64, error) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil && id > 0 {
		return id, nil
	}
	a.rt.tasks.FetchCategories(ctxOf(cmd))
	state := a.rt.tasks.State()
	if state.Err != "" {
		return 0, domain.NewError(domain.ErrCodeUnavailable, state.Err)
	}
	for _, c := range state.Categories {
		if strings.EqualFold(c.Name, ref) {
			return c.ID, nil
		}
	}
	return 0, domain.ErrCategoryNotFound
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewError(domain.ErrCodeInvalid, fmt.Sprintf("invalid id %q", raw))
	}
	return id, nil
}

func checkDate(raw string) error {
	if raw == "" {
		return nil
	}
	if _, err := time.Parse(dateLayout, raw); err != nil {
		return domain.WrapError(domain.ErrCodeInvalid, "dates use YYYY-MM-DD", err)
	}
	return nil
}
