package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/daybook/internal/commands"
	"github.com/sandeepkv93/daybook/internal/lifecycle"
	"github.com/sandeepkv93/daybook/internal/model"
)

var headerStyle = lipgloss.NewStyle().Bold(true)

func newAddCmd(rt *Runtime) *cobra.Command {
	var (
		category string
		priority string
		date     string
		clock    string
		reminder int
	)
	cmd := &cobra.Command{
		Use:   "add <text> [#category] [!priority] [@date] [^HH:MM] [~minutes]",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			parsed, err := commands.Parse("add "+strings.Join(args, " "), svc.Now())
			if err != nil {
				return err
			}
			draft := parsed.Add.Draft()
			flags := cmd.Flags()
			if flags.Changed("category") {
				draft.Category = model.Category(category)
			}
			if flags.Changed("priority") {
				draft.Priority = model.Priority(priority)
			}
			if flags.Changed("date") {
				draft.Date = date
			}
			if flags.Changed("time") {
				draft.Time = clock
			}
			if flags.Changed("reminder") {
				draft.Reminder = reminder
			}

			res, err := svc.CreateTask(cmd.Context(), draft)
			if err != nil {
				return err
			}
			rt.printf("added %s: %s\n", res.Task.ID, res.Task.Text)
			if rt.cfg.SyncEnabled() && !res.Synced {
				rt.printf("warning: saved locally, remote push failed\n")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "work, personal, health or study")
	cmd.Flags().StringVar(&priority, "priority", "", "high, medium or low")
	cmd.Flags().StringVar(&date, "date", "", "date as YYYY-MM-DD")
	cmd.Flags().StringVar(&clock, "time", "", "time of day as HH:MM")
	cmd.Flags().IntVar(&reminder, "reminder", 0, "minutes before the task to remind")
	return cmd
}

func newListCmd(rt *Runtime) *cobra.Command {
	var (
		all    bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active tasks through the saved filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			tasks := svc.Visible()
			if all {
				tasks = svc.Active()
			}
			if asJSON {
				return writeJSON(rt, tasks)
			}
			rt.printTasks(tasks, "no tasks match the current filters")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "ignore filters")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newDoneCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task's completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			t, err := svc.ToggleComplete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if t.Completed {
				rt.printf("completed %s: %s\n", t.ID, t.Text)
			} else {
				rt.printf("reopened %s: %s\n", t.ID, t.Text)
			}
			return nil
		},
	}
}

func newDeleteCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Move a task to the archive as deleted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			t, err := svc.DeleteTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			rt.printf("deleted %s: %s\n", t.ID, t.Text)
			return nil
		},
	}
}

func newRestoreCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id>",
		Short: "Clear a task's completed and deleted flags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			active, err := svc.RestoreTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if active {
				rt.printf("restored %s\n", args[0])
			} else {
				rt.printf("restored %s, still archived because its date has passed\n", args[0])
			}
			return nil
		},
	}
}

func newArchiveCmd(rt *Runtime) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "List archived tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(rt, svc.Archive())
			}
			rt.printTasks(svc.Archive(), "archive is empty")
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	cmd.AddCommand(&cobra.Command{
		Use:   "purge <id>",
		Short: "Remove an archived task permanently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.PurgeTask(cmd.Context(), args[0]); err != nil {
				return err
			}
			rt.printf("purged %s\n", args[0])
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every archived task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			n, err := svc.ClearArchive(cmd.Context())
			if err != nil {
				return err
			}
			rt.printf("cleared %d archived task(s)\n", n)
			return nil
		},
	})
	return cmd
}

func (rt *Runtime) printTasks(tasks []model.Task, empty string) {
	if len(tasks) == 0 {
		rt.printf("%s\n", empty)
		return
	}
	now := rt.svc.Now()
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderColumn(false).
		BorderLeft(false).
		BorderRight(false).
		Headers("ID", "", "TASK", "CATEGORY", "PRIORITY", "DATE", "TIME", "REMIND").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, t := range tasks {
		remind := ""
		if t.Reminder > 0 {
			remind = strconv.Itoa(t.Reminder) + "m"
		}
		tbl.Row(t.ID, marker(t, lifecycle.IsOverdue(t, now)), t.Text, string(t.Category.Display()), string(t.Priority), t.Date, t.Time, remind)
	}
	rt.printf("%s\n", tbl.Render())
}

func marker(t model.Task, overdue bool) string {
	switch {
	case t.Deleted:
		return "del"
	case t.Completed:
		return "[x]"
	case overdue:
		return "[!]"
	default:
		return "[ ]"
	}
}

func writeJSON(rt *Runtime, v any) error {
	enc := json.NewEncoder(rt.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
