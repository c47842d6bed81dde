// Package cli is the daybook command line. Every command runs against the same
// service the TUI uses.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/daybook/internal/app"
	"github.com/sandeepkv93/daybook/internal/config"
	"github.com/sandeepkv93/daybook/internal/logging"
	"github.com/sandeepkv93/daybook/internal/remote"
	"github.com/sandeepkv93/daybook/internal/storage"
	"github.com/sandeepkv93/daybook/internal/store"
)

// Version is set at build time.
var Version = "dev"

// Runtime carries what a command needs once flags are parsed. Now is only
// overridden in tests.
type Runtime struct {
	Stdout io.Writer
	Stderr io.Writer
	Now    func() time.Time

	configPath string
	verbose    bool

	cfg     config.Config
	log     *logrus.Logger
	svc     *app.Service
	closers []func() error
}

// Execute runs the CLI with the given arguments and returns the exit code.
func Execute(args []string, stdout, stderr io.Writer) int {
	return ExecuteWith(args, &Runtime{Stdout: stdout, Stderr: stderr})
}

func ExecuteWith(args []string, rt *Runtime) int {
	root := NewRoot(rt)
	root.SetArgs(args)
	root.SetOut(rt.Stdout)
	root.SetErr(rt.Stderr)
	err := root.Execute()
	rt.close()
	if err != nil {
		_, _ = fmt.Fprintln(rt.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func NewRoot(rt *Runtime) *cobra.Command {
	if rt.Stdout == nil {
		rt.Stdout = os.Stdout
	}
	if rt.Stderr == nil {
		rt.Stderr = os.Stderr
	}
	if rt.Now == nil {
		rt.Now = time.Now
	}

	cmd := &cobra.Command{
		Use:           "daybook",
		Short:         "A personal task and calendar organizer",
		Long:          "daybook keeps dated tasks, an archive, calendar notes and statistics, with an optional sync service.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), rt)
		},
	}
	cmd.PersistentFlags().StringVarP(&rt.configPath, "config", "c", config.DefaultPath(), "path to the YAML config file")
	cmd.PersistentFlags().BoolVarP(&rt.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newAddCmd(rt),
		newListCmd(rt),
		newDoneCmd(rt),
		newDeleteCmd(rt),
		newRestoreCmd(rt),
		newArchiveCmd(rt),
		newStatsCmd(rt),
		newNoteCmd(rt),
		newFilterCmd(rt),
		newSyncCmd(rt),
		newHealthCmd(rt),
		newExportCmd(rt),
		newConfigCmd(rt),
		newServeCmd(rt),
		newTUICmd(rt),
		newRemindCmd(rt),
	)
	return cmd
}

// loadConfig resolves configuration and the logger. It is safe to call twice.
func (rt *Runtime) loadConfig() error {
	if rt.log != nil {
		return nil
	}
	cfg, err := config.Load(rt.configPath)
	if err != nil {
		return err
	}
	level := cfg.Log.Level
	if rt.verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Options{Level: level, Format: cfg.Log.Format, Output: rt.Stderr})
	if err != nil {
		return err
	}
	rt.cfg = cfg
	rt.log = logger
	return nil
}

// service opens storage, loads the snapshot and wires the syncer.
func (rt *Runtime) service(ctx context.Context) (*app.Service, error) {
	if rt.svc != nil {
		return rt.svc, nil
	}
	if err := rt.loadConfig(); err != nil {
		return nil, err
	}
	slot, err := rt.openSlot()
	if err != nil {
		return nil, err
	}

	st := store.New(slot, store.Options{Key: rt.cfg.Storage.Key, Now: rt.Now, Logger: rt.log})
	st.Load(ctx)

	var syncer app.Syncer = app.NoopSyncer{}
	if rt.cfg.SyncEnabled() {
		client, err := remote.NewClient(remote.Config{
			BaseURL:       rt.cfg.Remote.BaseURL,
			Timeout:       rt.cfg.Remote.Timeout,
			HealthTimeout: rt.cfg.Remote.HealthTimeout,
		}, rt.log)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, client.Close)
		syncer = client
	}

	rt.svc = app.New(st, syncer, rt.log, app.Options{
		Now:           rt.Now,
		FilterOptions: rt.cfg.FilterOptions(),
		SessionID:     rt.cfg.UserID,
	})
	return rt.svc, nil
}

func (rt *Runtime) openSlot() (storage.Slot, error) {
	switch rt.cfg.Storage.Backend {
	case config.BackendSQLite:
		path := rt.cfg.SQLitePath()
		if err := ensureParent(path); err != nil {
			return nil, err
		}
		repo, err := storage.OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, repo.Close)
		return repo, nil
	case config.BackendFile:
		if err := os.MkdirAll(rt.cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		return storage.NewFileSlot(rt.cfg.DataDir), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", rt.cfg.Storage.Backend)
	}
}

func (rt *Runtime) close() {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	if err := errors.Join(errs...); err != nil && rt.log != nil {
		rt.log.WithError(err).Warn("close failed")
	}
}

func (rt *Runtime) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(rt.Stdout, format, args...)
}
