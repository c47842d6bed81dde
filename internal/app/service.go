// Package app is the operation surface shared by the CLI, the TUI and tests.
// It owns nothing itself: state lives in the store, sync goes through a Syncer.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sandeepkv93/daybook/internal/filter"
	"github.com/sandeepkv93/daybook/internal/lifecycle"
	"github.com/sandeepkv93/daybook/internal/logging"
	"github.com/sandeepkv93/daybook/internal/model"
	"github.com/sandeepkv93/daybook/internal/remote"
	"github.com/sandeepkv93/daybook/internal/scheduler"
	"github.com/sandeepkv93/daybook/internal/stats"
	"github.com/sandeepkv93/daybook/internal/store"
)

var ErrSyncDisabled = errors.New("app: sync is not configured")

// Syncer is the remote collaborator. *remote.Client satisfies it.
type Syncer interface {
	Pull(ctx context.Context, sessionID string) ([]model.Task, error)
	Push(ctx context.Context, sessionID string, t model.Task) error
	Health(ctx context.Context) bool
}

// NoopSyncer stands in when no remote is configured.
type NoopSyncer struct{}

func (NoopSyncer) Pull(context.Context, string) ([]model.Task, error) { return nil, ErrSyncDisabled }
func (NoopSyncer) Push(context.Context, string, model.Task) error     { return ErrSyncDisabled }
func (NoopSyncer) Health(context.Context) bool                        { return false }

type Options struct {
	Now           func() time.Time
	FilterOptions []filter.Option
	// SessionID pins the session instead of generating one.
	SessionID string
}

type Service struct {
	store      *store.Store
	syncer     Syncer
	log        logrus.FieldLogger
	now        func() time.Time
	ids        *model.IDSource
	filterOpts []filter.Option
	sessionID  string
}

// New expects st to be loaded already; existing ids seed the id source.
func New(st *store.Store, syncer Syncer, logger logrus.FieldLogger, opts Options) *Service {
	if syncer == nil {
		syncer = NoopSyncer{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	s := &Service{
		store:      st,
		syncer:     syncer,
		log:        logger.WithField("component", "app"),
		now:        now,
		ids:        model.NewIDSource(now),
		filterOpts: opts.FilterOptions,
		sessionID:  strings.TrimSpace(opts.SessionID),
	}
	s.seedIDs()
	return s
}

func (s *Service) seedIDs() {
	for _, t := range s.store.Active() {
		s.ids.Seed(t.ID)
	}
	for _, t := range s.store.Archived() {
		s.ids.Seed(t.ID)
	}
}

// Session returns the session id, creating and persisting one on first use.
func (s *Service) Session(ctx context.Context) string {
	if s.sessionID != "" {
		if current, ok := s.store.UserID(); !ok || current != s.sessionID {
			if err := s.store.SetUserID(ctx, s.sessionID); err != nil {
				s.log.WithError(err).Warn("persist session id failed")
			}
		}
		return s.sessionID
	}
	if id, ok := s.store.UserID(); ok && id != "" {
		s.sessionID = id
		return id
	}
	s.sessionID = uuid.NewString()
	if err := s.store.SetUserID(ctx, s.sessionID); err != nil {
		s.log.WithError(err).Warn("persist session id failed")
	}
	return s.sessionID
}

type CreateResult struct {
	Task model.Task
	// Synced is false when the push failed or sync is disabled. The task is kept locally either way.
	Synced bool
}

// CreateTask validates d, stores the task and then pushes it.
func (s *Service) CreateTask(ctx context.Context, d model.Draft) (CreateResult, error) {
	t, err := s.CreateLocal(ctx, d)
	if err != nil {
		return CreateResult{Task: t}, err
	}
	res := CreateResult{Task: t}
	res.Synced = s.PushTask(ctx, s.Session(ctx), t) == nil
	return res, nil
}

// CreateLocal validates and stores a task without contacting the remote.
// A non-empty task with an error means it is in memory but the save failed.
func (s *Service) CreateLocal(ctx context.Context, d model.Draft) (model.Task, error) {
	t, err := model.NewTask(s.ids.Next(), d, s.now())
	if err != nil {
		return model.Task{}, err
	}
	if err := s.store.InsertTask(ctx, t); err != nil {
		return t, err
	}
	return t, nil
}

// PushTask only touches the syncer, so it may run off the owning goroutine.
func (s *Service) PushTask(ctx context.Context, sessionID string, t model.Task) error {
	err := s.syncer.Push(ctx, sessionID, t)
	if err != nil && !errors.Is(err, ErrSyncDisabled) {
		s.log.WithError(err).WithField("task_id", t.ID).Warn("task kept locally, push failed")
	}
	return err
}

func (s *Service) ToggleComplete(ctx context.Context, id string) (model.Task, error) {
	at := s.now()
	return s.store.MutateTask(ctx, id, func(t *model.Task) {
		t.SetCompleted(!t.Completed, at)
	})
}

func (s *Service) DeleteTask(ctx context.Context, id string) (model.Task, error) {
	at := s.now()
	return s.store.MutateTask(ctx, id, func(t *model.Task) {
		t.SetDeleted(true, at)
	})
}

// RestoreTask clears both flags. active reports whether the task landed back in
// the active list; a past-dated task stays archived.
func (s *Service) RestoreTask(ctx context.Context, id string) (active bool, err error) {
	at := s.now()
	restored, err := s.store.MutateTask(ctx, id, func(t *model.Task) {
		t.SetCompleted(false, at)
		t.SetDeleted(false, at)
	})
	if err != nil && restored.ID == "" {
		return false, err
	}
	return !lifecycle.IsArchived(restored, at), err
}

func (s *Service) PurgeTask(ctx context.Context, id string) error {
	return s.store.PurgeTask(ctx, id)
}

func (s *Service) ClearArchive(ctx context.Context) (int, error) {
	return s.store.ClearArchive(ctx)
}

func (s *Service) Task(id string) (model.Task, bool) {
	return s.store.Task(id)
}

func (s *Service) Filters() model.FilterState {
	return s.store.Filters()
}

func (s *Service) ApplyFilters(ctx context.Context, f model.FilterState) error {
	return s.store.SetFilters(ctx, f)
}

func (s *Service) ResetFilters(ctx context.Context) error {
	return s.store.SetFilters(ctx, model.DefaultFilterState())
}

func (s *Service) SetQuickFilter(ctx context.Context, q model.QuickFilter) error {
	if !q.IsValid() {
		return fmt.Errorf("%w: %q", model.ErrInvalidQuickFilter, q)
	}
	f := s.store.Filters()
	f.QuickFilter = q
	return s.store.SetFilters(ctx, f)
}

// CycleQuickFilter advances to the next preset and returns it.
func (s *Service) CycleQuickFilter(ctx context.Context) (model.QuickFilter, error) {
	next := s.store.Filters().QuickFilter.Next()
	return next, s.SetQuickFilter(ctx, next)
}

// Visible returns the filtered, sorted active tasks for the current day.
func (s *Service) Visible() []model.Task {
	s.store.Refresh()
	return filter.Visible(s.store.Active(), s.store.Filters(), s.now(), s.filterOpts...)
}

// Active returns every active task, unfiltered, in store order.
func (s *Service) Active() []model.Task {
	s.store.Refresh()
	return s.store.Active()
}

func (s *Service) Archive() []model.Task {
	s.store.Refresh()
	return s.store.Archived()
}

func (s *Service) Stats() stats.Summary {
	s.store.Refresh()
	return stats.Compute(s.store.Active(), s.store.Archived(), s.now())
}

// Reminders plans upcoming reminders over the active tasks.
func (s *Service) Reminders() []scheduler.Reminder {
	return scheduler.Plan(s.Active(), s.now())
}

// Sync pulls the authoritative list and overwrites local tasks with it. On
// failure local state is left untouched.
func (s *Service) Sync(ctx context.Context) (int, error) {
	tasks, err := s.Pull(ctx, s.Session(ctx))
	if err != nil {
		return 0, err
	}
	return s.ApplyPull(ctx, tasks)
}

// Pull only touches the syncer, so it may run off the owning goroutine.
func (s *Service) Pull(ctx context.Context, sessionID string) ([]model.Task, error) {
	tasks, err := s.syncer.Pull(ctx, sessionID)
	if err != nil && !errors.Is(err, ErrSyncDisabled) {
		s.log.WithError(err).Warn("sync failed, keeping local state")
	}
	return tasks, err
}

// ApplyPull replaces local tasks with a pulled list, split by its own flags.
func (s *Service) ApplyPull(ctx context.Context, tasks []model.Task) (int, error) {
	active, archived := remote.Partition(tasks)
	if err := s.store.ReplaceTasks(ctx, active, archived); err != nil {
		return len(tasks), err
	}
	s.seedIDs()
	s.log.WithField("tasks", len(tasks)).Info("sync applied")
	return len(tasks), nil
}

func (s *Service) Health(ctx context.Context) bool {
	return s.syncer.Health(ctx)
}

func (s *Service) AddNote(ctx context.Context, date, text, color string) (model.CalendarNote, error) {
	if strings.TrimSpace(color) == "" {
		color = model.DefaultNoteColor
	}
	n := model.CalendarNote{
		ID:        uuid.NewString(),
		Text:      strings.TrimSpace(text),
		Color:     color,
		Date:      strings.TrimSpace(date),
		CreatedAt: s.now(),
	}
	if err := s.store.AddNote(ctx, n); err != nil {
		return model.CalendarNote{}, err
	}
	return n, nil
}

func (s *Service) DeleteNote(ctx context.Context, id string) error {
	return s.store.DeleteNote(ctx, id)
}

// Day groups everything pinned to one calendar date.
type Day struct {
	Date  string
	Tasks []model.Task
	Notes []model.CalendarNote
}

// CalendarDay lists active and archived tasks dated on date, plus its notes.
func (s *Service) CalendarDay(date string) Day {
	day := Day{Date: date, Tasks: make([]model.Task, 0), Notes: s.store.NotesOn(date)}
	for _, t := range s.store.Active() {
		if t.Date == date {
			day.Tasks = append(day.Tasks, t)
		}
	}
	for _, t := range s.store.Archived() {
		if t.Date == date {
			day.Tasks = append(day.Tasks, t)
		}
	}
	filter.Sort(day.Tasks)
	return day
}

// Agenda returns days consecutive calendar days starting at from.
func (s *Service) Agenda(from time.Time, days int) []Day {
	if days <= 0 {
		return nil
	}
	start := model.Midnight(from)
	out := make([]Day, 0, days)
	for i := 0; i < days; i++ {
		out = append(out, s.CalendarDay(model.FormatDate(model.AddDays(start, i))))
	}
	return out
}

// Snapshot exposes the persisted layout for export.
func (s *Service) Snapshot() store.Snapshot {
	return s.store.Snapshot()
}

func (s *Service) Now() time.Time {
	return s.now()
}
