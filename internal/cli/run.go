package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/daybook/internal/scheduler"
	"github.com/sandeepkv93/daybook/internal/server"
	"github.com/sandeepkv93/daybook/internal/storage"
	"github.com/sandeepkv93/daybook/internal/update"
)

func newServeCmd(rt *Runtime) *cobra.Command {
	var addr, dbPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference sync service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.loadConfig(); err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = rt.cfg.Server.Addr
			}
			if !cmd.Flags().Changed("db") {
				dbPath = rt.cfg.Server.DBPath
			}
			if err := ensureParent(dbPath); err != nil {
				return err
			}
			repo, err := storage.OpenSQLite(dbPath)
			if err != nil {
				return err
			}
			rt.closers = append(rt.closers, repo.Close)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(repo, server.Options{Logger: rt.log}).Run(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&dbPath, "db", "", "sqlite database path (default from config)")
	return cmd
}

func newTUICmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive interface (the default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), rt)
		},
	}
}

func runTUI(ctx context.Context, rt *Runtime) error {
	svc, err := rt.service(ctx)
	if err != nil {
		return err
	}
	engine := scheduler.NewEngine(rt.cfg.Scheduler.Buffer)
	engine.Start()
	defer engine.Stop()

	opts := update.Options{Scheduler: engine, DesktopEnabled: rt.cfg.Scheduler.DesktopNotifications}
	if opts.DesktopEnabled {
		opts.Notifier = update.ExecDesktopNotifier{}
	}
	program := tea.NewProgram(update.NewModel(svc, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = program.Run()
	return err
}

func newRemindCmd(rt *Runtime) *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "List upcoming reminders, or wait and fire them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			upcoming := svc.Reminders()
			if once {
				if len(upcoming) == 0 {
					rt.printf("no upcoming reminders\n")
				}
				for _, r := range upcoming {
					rt.printf("%s  %s (due %s)\n", r.FireAt.Format("2006-01-02 15:04"), r.Text, r.DueAt.Format("15:04"))
				}
				return nil
			}

			engine := scheduler.NewEngine(rt.cfg.Scheduler.Buffer)
			engine.Start()
			defer engine.Stop()
			if err := engine.Replace(upcoming); err != nil {
				return err
			}
			var notifier update.DesktopNotifier = update.NoopDesktopNotifier{}
			if rt.cfg.Scheduler.DesktopNotifications {
				notifier = update.ExecDesktopNotifier{}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			rt.log.WithField("pending", engine.Pending()).Info("waiting for reminders")
			for {
				select {
				case <-ctx.Done():
					return nil
				case r := <-engine.C():
					rt.printf("reminder: %s at %s\n", r.Text, r.DueAt.Format("15:04"))
					if err := notifier.Send(update.Notification{Title: "Reminder", Body: r.Text, Level: "info", At: r.FireAt}); err != nil {
						rt.log.WithError(err).Warn("desktop notification failed")
					}
				}
			}
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "print upcoming reminders and exit")
	return cmd
}
