// Package store owns the task collection and keeps it classified and persisted.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sandeepkv93/daybook/internal/lifecycle"
	"github.com/sandeepkv93/daybook/internal/logging"
	"github.com/sandeepkv93/daybook/internal/model"
	"github.com/sandeepkv93/daybook/internal/storage"
)

const DefaultKey = "daybook_state"

var (
	ErrTaskNotFound = errors.New("store: task not found")
	ErrNoteNotFound = errors.New("store: note not found")
)

// Snapshot is the persisted layout. It is written whole on every save.
type Snapshot struct {
	Tasks    []model.Task         `json:"tasks"`
	Archived []model.Task         `json:"archived"`
	Notes    []model.CalendarNote `json:"notes"`
	Filters  model.FilterState    `json:"filters"`
	UserID   *string              `json:"userId"`
}

func emptySnapshot() Snapshot {
	return Snapshot{
		Tasks:    []model.Task{},
		Archived: []model.Task{},
		Notes:    []model.CalendarNote{},
		Filters:  model.DefaultFilterState(),
	}
}

type Options struct {
	Key    string
	Now    func() time.Time
	Logger logrus.FieldLogger
}

// Store is not safe for concurrent use; one caller owns it.
type Store struct {
	slot storage.Slot
	key  string
	now  func() time.Time
	log  logrus.FieldLogger
	snap Snapshot
}

func New(slot storage.Slot, opts Options) *Store {
	key := strings.TrimSpace(opts.Key)
	if key == "" {
		key = DefaultKey
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Store{
		slot: slot,
		key:  key,
		now:  now,
		log:  logger.WithField("component", "store"),
		snap: emptySnapshot(),
	}
}

// Load replaces in-memory state with the persisted snapshot. Missing or
// unreadable data yields an empty snapshot; the failure is logged, not returned.
func (s *Store) Load(ctx context.Context) {
	s.snap = emptySnapshot()
	raw, err := s.slot.Read(ctx, s.key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.log.WithField("key", s.key).Debug("no saved snapshot")
	case err != nil:
		s.log.WithError(err).WithField("key", s.key).Warn("read snapshot failed, starting empty")
	default:
		snap, decodeErr := decodeSnapshot(raw)
		if decodeErr != nil {
			s.log.WithError(decodeErr).WithField("key", s.key).Warn("parse snapshot failed, starting empty")
			break
		}
		s.snap = snap
	}
	s.reclassify()
}

func decodeSnapshot(raw []byte) (Snapshot, error) {
	var in struct {
		Tasks    []model.Task         `json:"tasks"`
		Archived []model.Task         `json:"archived"`
		Notes    []model.CalendarNote `json:"notes"`
		Filters  *model.FilterState   `json:"filters"`
		UserID   *string              `json:"userId"`
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		return Snapshot{}, err
	}
	out := emptySnapshot()
	if in.Tasks != nil {
		out.Tasks = in.Tasks
	}
	if in.Archived != nil {
		out.Archived = in.Archived
	}
	if in.Notes != nil {
		out.Notes = in.Notes
	}
	if in.Filters != nil {
		out.Filters = *in.Filters
	}
	out.UserID = in.UserID
	for i := range out.Tasks {
		out.Tasks[i].Priority = out.Tasks[i].Priority.Normalize()
	}
	for i := range out.Archived {
		out.Archived[i].Priority = out.Archived[i].Priority.Normalize()
	}
	return out, nil
}

// Save writes the full snapshot under the fixed key.
func (s *Store) Save(ctx context.Context) error {
	raw, err := json.Marshal(s.snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.slot.Write(ctx, s.key, raw); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func (s *Store) reclassify() {
	s.snap.Tasks, s.snap.Archived = lifecycle.Classify(s.snap.Tasks, s.snap.Archived, s.now())
}

func (s *Store) commit(ctx context.Context) error {
	s.reclassify()
	return s.Save(ctx)
}

// InsertTask prepends t to the active tasks.
func (s *Store) InsertTask(ctx context.Context, t model.Task) error {
	s.snap.Tasks = append([]model.Task{t}, s.snap.Tasks...)
	return s.commit(ctx)
}

// MutateTask applies fn to the task with id, wherever it currently lives.
func (s *Store) MutateTask(ctx context.Context, id string, fn func(*model.Task)) (model.Task, error) {
	target := s.find(id)
	if target == nil {
		return model.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	fn(target)
	out := *target
	return out, s.commit(ctx)
}

func (s *Store) find(id string) *model.Task {
	for i := range s.snap.Tasks {
		if s.snap.Tasks[i].ID == id {
			return &s.snap.Tasks[i]
		}
	}
	for i := range s.snap.Archived {
		if s.snap.Archived[i].ID == id {
			return &s.snap.Archived[i]
		}
	}
	return nil
}

// Task returns a copy of the task with id.
func (s *Store) Task(id string) (model.Task, bool) {
	t := s.find(id)
	if t == nil {
		return model.Task{}, false
	}
	return *t, true
}

// ReplaceTasks overwrites both sequences with tasks split by their own flags.
func (s *Store) ReplaceTasks(ctx context.Context, active, archived []model.Task) error {
	s.snap.Tasks = append([]model.Task{}, active...)
	s.snap.Archived = append([]model.Task{}, archived...)
	return s.commit(ctx)
}

// PurgeTask removes an archived task permanently.
func (s *Store) PurgeTask(ctx context.Context, id string) error {
	for i := range s.snap.Archived {
		if s.snap.Archived[i].ID == id {
			s.snap.Archived = append(s.snap.Archived[:i], s.snap.Archived[i+1:]...)
			return s.commit(ctx)
		}
	}
	return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
}

// ClearArchive drops every archived task and reports how many were removed.
func (s *Store) ClearArchive(ctx context.Context) (int, error) {
	n := len(s.snap.Archived)
	s.snap.Archived = []model.Task{}
	return n, s.commit(ctx)
}

func (s *Store) AddNote(ctx context.Context, n model.CalendarNote) error {
	if err := n.Validate(); err != nil {
		return err
	}
	s.snap.Notes = append(s.snap.Notes, n)
	return s.Save(ctx)
}

func (s *Store) DeleteNote(ctx context.Context, id string) error {
	for i := range s.snap.Notes {
		if s.snap.Notes[i].ID == id {
			s.snap.Notes = append(s.snap.Notes[:i], s.snap.Notes[i+1:]...)
			return s.Save(ctx)
		}
	}
	return fmt.Errorf("%w: %s", ErrNoteNotFound, id)
}

// NotesOn returns notes pinned to date in insertion order.
func (s *Store) NotesOn(date string) []model.CalendarNote {
	out := make([]model.CalendarNote, 0)
	for _, n := range s.snap.Notes {
		if n.Date == date {
			out = append(out, n)
		}
	}
	return out
}

func (s *Store) SetFilters(ctx context.Context, f model.FilterState) error {
	if err := f.Validate(); err != nil {
		return err
	}
	s.snap.Filters = f.Clone()
	return s.Save(ctx)
}

func (s *Store) Filters() model.FilterState {
	return s.snap.Filters.Clone()
}

// UserID returns the session id and whether one has been assigned.
func (s *Store) UserID() (string, bool) {
	if s.snap.UserID == nil {
		return "", false
	}
	return *s.snap.UserID, true
}

func (s *Store) SetUserID(ctx context.Context, id string) error {
	v := id
	s.snap.UserID = &v
	return s.Save(ctx)
}

// Refresh reclassifies without persisting. Callers use it when the date rolls over.
func (s *Store) Refresh() {
	s.reclassify()
}

func (s *Store) Active() []model.Task {
	return append([]model.Task{}, s.snap.Tasks...)
}

func (s *Store) Archived() []model.Task {
	return append([]model.Task{}, s.snap.Archived...)
}

func (s *Store) Notes() []model.CalendarNote {
	return append([]model.CalendarNote{}, s.snap.Notes...)
}

// Snapshot returns a deep enough copy for encoding or export.
func (s *Store) Snapshot() Snapshot {
	out := Snapshot{
		Tasks:    s.Active(),
		Archived: s.Archived(),
		Notes:    s.Notes(),
		Filters:  s.Filters(),
	}
	if s.snap.UserID != nil {
		v := *s.snap.UserID
		out.UserID = &v
	}
	return out
}
