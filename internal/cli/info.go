package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sandeepkv93/daybook/internal/app"
	"github.com/sandeepkv93/daybook/internal/commands"
	"github.com/sandeepkv93/daybook/internal/model"
	"github.com/sandeepkv93/daybook/internal/views"
)

var errUnhealthy = errors.New("sync service is unreachable")

func newStatsCmd(rt *Runtime) *cobra.Command {
	var (
		asJSON bool
		plain  bool
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show completion statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			s := svc.Stats()
			if asJSON {
				return writeJSON(rt, s)
			}
			data := views.StatsData{
				Total:          s.Total,
				Completed:      s.Completed,
				CompletionRate: s.CompletionRate,
				InProgress:     s.InProgress,
				Overdue:        s.Overdue,
				Streak:         s.Streak,
				AveragePerDay:  s.AveragePerDay,
				Load:           string(s.Load),
				Weekdays:       s.Weekdays,
			}
			for _, c := range model.KnownCategories {
				data.Categories = append(data.Categories, views.CategoryCount{Name: string(c), Count: s.Categories[c]})
			}
			md := views.StatsMarkdown(data)
			if plain {
				rt.printf("%s", md)
				return nil
			}
			rt.printf("%s", views.RenderMarkdown(md, 80))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.Flags().BoolVar(&plain, "plain", false, "print raw markdown")
	return cmd
}

func newNoteCmd(rt *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Manage calendar notes",
	}

	var color string
	add := &cobra.Command{
		Use:   "add <date> <text>",
		Short: "Attach a note to a date (YYYY-MM-DD, today or tomorrow)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			date, err := commands.ResolveDate(strings.TrimPrefix(args[0], "@"), svc.Now())
			if err != nil {
				return err
			}
			n, err := svc.AddNote(cmd.Context(), date, strings.Join(args[1:], " "), color)
			if err != nil {
				return err
			}
			rt.printf("note %s added on %s\n", n.ID, n.Date)
			return nil
		},
	}
	add.Flags().StringVar(&color, "color", model.DefaultNoteColor, "note color")

	list := &cobra.Command{
		Use:   "list <date>",
		Short: "Show tasks and notes for one day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			date, err := commands.ResolveDate(strings.TrimPrefix(args[0], "@"), svc.Now())
			if err != nil {
				return err
			}
			day := svc.CalendarDay(date)
			rt.printDay(day)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.DeleteNote(cmd.Context(), args[0]); err != nil {
				return err
			}
			rt.printf("deleted note %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(add, list, del)
	return cmd
}

func (rt *Runtime) printDay(day app.Day) {
	rt.printf("%s\n", day.Date)
	if len(day.Tasks) == 0 && len(day.Notes) == 0 {
		rt.printf("  nothing scheduled\n")
		return
	}
	for _, t := range day.Tasks {
		slot := t.Time
		if slot == "" {
			slot = "--:--"
		}
		rt.printf("  %s %s %s [%s]\n", marker(t, false), slot, t.Text, t.Category.Display())
	}
	for _, n := range day.Notes {
		rt.printf("  note(%s) %s\n", n.Color, n.Text)
	}
}

func newFilterCmd(rt *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Show or change the saved task filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			rt.printFilters(svc.Filters())
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "quick <all|today|tomorrow|week|overdue>",
		Short: "Set the quick date filter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			q, err := model.ParseQuickFilter(strings.ToLower(args[0]))
			if err != nil {
				return err
			}
			if err := svc.SetQuickFilter(cmd.Context(), q); err != nil {
				return err
			}
			rt.printFilters(svc.Filters())
			return nil
		},
	})

	var (
		categories []string
		priorities []string
		statuses   []string
	)
	set := &cobra.Command{
		Use:   "set",
		Short: "Replace the category, priority or status sets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			f := svc.Filters()
			flags := cmd.Flags()
			if flags.Changed("category") {
				f.Categories = make([]model.Category, 0, len(categories))
				for _, c := range categories {
					f.Categories = append(f.Categories, model.Category(strings.ToLower(c)))
				}
			}
			if flags.Changed("priority") {
				f.Priorities = make([]model.Priority, 0, len(priorities))
				for _, p := range priorities {
					f.Priorities = append(f.Priorities, model.Priority(strings.ToLower(p)))
				}
			}
			if flags.Changed("status") {
				f.Statuses = make([]model.Status, 0, len(statuses))
				for _, s := range statuses {
					f.Statuses = append(f.Statuses, model.Status(strings.ToLower(s)))
				}
			}
			if err := svc.ApplyFilters(cmd.Context(), f); err != nil {
				return err
			}
			rt.printFilters(svc.Filters())
			return nil
		},
	}
	set.Flags().StringSliceVar(&categories, "category", nil, "categories to show")
	set.Flags().StringSliceVar(&priorities, "priority", nil, "priorities to show")
	set.Flags().StringSliceVar(&statuses, "status", nil, "statuses to show: active, completed, overdue")
	cmd.AddCommand(set)

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Restore the default filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.ResetFilters(cmd.Context()); err != nil {
				return err
			}
			rt.printFilters(svc.Filters())
			return nil
		},
	})
	return cmd
}

func (rt *Runtime) printFilters(f model.FilterState) {
	join := func(n int, at func(int) string) string {
		parts := make([]string, 0, n)
		for i := 0; i < n; i++ {
			parts = append(parts, at(i))
		}
		if len(parts) == 0 {
			return "(none)"
		}
		return strings.Join(parts, ",")
	}
	rt.printf("quick: %s\n", f.QuickFilter)
	rt.printf("categories: %s\n", join(len(f.Categories), func(i int) string { return string(f.Categories[i]) }))
	rt.printf("priorities: %s\n", join(len(f.Priorities), func(i int) string { return string(f.Priorities[i]) }))
	rt.printf("statuses: %s\n", join(len(f.Statuses), func(i int) string { return string(f.Statuses[i]) }))
}

func newSyncCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replace local tasks with the remote list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			n, err := svc.Sync(cmd.Context())
			if err != nil {
				if errors.Is(err, app.ErrSyncDisabled) {
					return fmt.Errorf("%w: set remote.base_url or DAYBOOK_REMOTE_URL", err)
				}
				return fmt.Errorf("sync failed, local tasks kept: %w", err)
			}
			rt.printf("synced %d task(s)\n", n)
			return nil
		},
	}
}

func newHealthCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check whether the sync service is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			if !rt.cfg.SyncEnabled() {
				return app.ErrSyncDisabled
			}
			if !svc.Health(cmd.Context()) {
				rt.printf("down\n")
				return errUnhealthy
			}
			rt.printf("up\n")
			return nil
		},
	}
}

func newExportCmd(rt *Runtime) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the stored snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			snap := svc.Snapshot()
			switch strings.ToLower(format) {
			case "json":
				return writeJSON(rt, snap)
			case "yaml", "yml":
				// Round-trip through JSON so YAML keys match the stored document.
				raw, err := json.Marshal(snap)
				if err != nil {
					return err
				}
				var doc any
				if err := json.Unmarshal(raw, &doc); err != nil {
					return err
				}
				out, err := yaml.Marshal(doc)
				if err != nil {
					return err
				}
				rt.printf("%s", out)
				return nil
			default:
				return fmt.Errorf("unknown export format %q (want json or yaml)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "json or yaml")
	return cmd
}
