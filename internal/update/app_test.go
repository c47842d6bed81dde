package update

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/daybook/internal/app"
	"github.com/sandeepkv93/daybook/internal/model"
	"github.com/sandeepkv93/daybook/internal/scheduler"
	"github.com/sandeepkv93/daybook/internal/storage"
	"github.com/sandeepkv93/daybook/internal/store"
)

var fixedNow = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

type stubSyncer struct {
	pulled  []model.Task
	pullErr error
}

func (s *stubSyncer) Pull(context.Context, string) ([]model.Task, error) { return s.pulled, s.pullErr }
func (s *stubSyncer) Push(context.Context, string, model.Task) error     { return nil }
func (s *stubSyncer) Health(context.Context) bool                        { return s.pullErr == nil }

type recordingNotifier struct {
	sent []Notification
}

func (r *recordingNotifier) Send(n Notification) error {
	r.sent = append(r.sent, n)
	return nil
}

func newTestService(t *testing.T, syncer app.Syncer) *app.Service {
	t.Helper()
	now := func() time.Time { return fixedNow }
	st := store.New(storage.NewFileSlot(t.TempDir()), store.Options{Now: now})
	st.Load(context.Background())
	return app.New(st, syncer, nil, app.Options{Now: now, SessionID: "session-1"})
}

func newTestModel(t *testing.T, drafts ...model.Draft) (Model, *app.Service) {
	t.Helper()
	svc := newTestService(t, nil)
	for _, d := range drafts {
		if _, err := svc.CreateLocal(context.Background(), d); err != nil {
			t.Fatalf("create %q: %v", d.Text, err)
		}
	}
	return NewModel(svc, Options{}), svc
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var updated tea.Model
		updated, cmd = m.Update(k)
		m = updated.(Model)
	}
	return m, cmd
}

func typeCommand(t *testing.T, m Model, input string) (Model, tea.Cmd) {
	t.Helper()
	m, _ = press(t, m, runes(":"))
	if !m.Palette.Active {
		t.Fatal("expected palette to open")
	}
	for _, r := range input {
		m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
}

func TestNewModelDefaults(t *testing.T) {
	m, _ := newTestModel(t)
	if m.CurrentView != ViewTasks {
		t.Fatalf("expected default view %q, got %q", ViewTasks, m.CurrentView)
	}
	if m.Keys.Quit != "q" || m.Keys.Sync != "s" {
		t.Fatalf("unexpected key map: %+v", m.Keys)
	}
	if !m.Calendar.FocusDate.Equal(model.Midnight(fixedNow)) {
		t.Fatalf("calendar focus should start today, got %v", m.Calendar.FocusDate)
	}
}

func TestUpdateKeySwitchesView(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(t, m, runes("2"))
	if m.CurrentView != ViewArchive {
		t.Fatalf("expected archive view, got %q", m.CurrentView)
	}
	m, _ = press(t, m, runes("4"))
	if m.CurrentView != ViewStats {
		t.Fatalf("expected stats view, got %q", m.CurrentView)
	}
	m, _ = press(t, m, runes("3"))
	if m.CurrentView != ViewCalendar {
		t.Fatalf("expected calendar view, got %q", m.CurrentView)
	}
}

func TestUpdateSwitchViewMsg(t *testing.T) {
	m, _ := newTestModel(t)
	updated, _ := m.Update(SwitchViewMsg{View: ViewCalendar})
	next := updated.(Model)
	if next.CurrentView != ViewCalendar {
		t.Fatalf("expected calendar view, got %q", next.CurrentView)
	}

	updated, _ = next.Update(SwitchViewMsg{View: View("Unknown")})
	next = updated.(Model)
	if next.CurrentView != ViewCalendar {
		t.Fatalf("expected view unchanged for unknown view, got %q", next.CurrentView)
	}
}

func TestUpdateStatusAndError(t *testing.T) {
	m, _ := newTestModel(t)
	updated, _ := m.Update(SetStatusMsg{Text: "ready"})
	next := updated.(Model)
	if next.Status.Text != "ready" || next.Status.IsError {
		t.Fatalf("unexpected status: %+v", next.Status)
	}

	updated, _ = next.Update(AppErrorMsg{Err: errors.New("boom")})
	next = updated.(Model)
	if next.LastError == nil || !next.Status.IsError {
		t.Fatalf("expected error status, got %+v", next.Status)
	}

	updated, _ = next.Update(ClearStatusMsg{})
	next = updated.(Model)
	if next.Status.Text != "" {
		t.Fatalf("expected cleared status, got %+v", next.Status)
	}
}

func TestUpdateQuit(t *testing.T) {
	m, _ := newTestModel(t)
	m, cmd := press(t, m, runes("q"))
	if !m.Quitting || cmd == nil {
		t.Fatal("expected quit command")
	}
}

func TestPaletteAddCreatesTask(t *testing.T) {
	m, svc := newTestModel(t)
	m, cmd := typeCommand(t, m, "add pay rent #work !high @tomorrow ^09:00 ~15")
	if m.Palette.Active {
		t.Fatal("palette should close after enter")
	}
	if m.Status.IsError {
		t.Fatalf("unexpected error status: %+v", m.Status)
	}
	active := svc.Active()
	if len(active) != 1 {
		t.Fatalf("expected one task, got %d", len(active))
	}
	got := active[0]
	if got.Text != "pay rent" || got.Category != model.CategoryWork || got.Priority != model.PriorityHigh {
		t.Fatalf("unexpected task: %+v", got)
	}
	if got.Date != "2024-03-11" || got.Time != "09:00" || got.Reminder != 15 {
		t.Fatalf("unexpected schedule: %+v", got)
	}
	if m.SelectedTaskID != got.ID {
		t.Fatalf("expected new task selected, got %q", m.SelectedTaskID)
	}
	if cmd == nil {
		t.Fatal("expected push command")
	}
	msg := cmd()
	push, ok := msg.(PushResultMsg)
	if !ok || !errors.Is(push.Err, app.ErrSyncDisabled) {
		t.Fatalf("expected disabled push result, got %#v", msg)
	}
	updated, _ := m.Update(push)
	if updated.(Model).Status.IsError {
		t.Fatal("disabled sync must not surface as an error")
	}
}

func TestPaletteRejectsBadInput(t *testing.T) {
	m, svc := newTestModel(t)
	m, _ = typeCommand(t, m, "add   ")
	if !m.Status.IsError {
		t.Fatalf("expected error status, got %+v", m.Status)
	}
	if len(svc.Active()) != 0 {
		t.Fatal("rejected command must not create tasks")
	}

	m, _ = typeCommand(t, m, "frobnicate")
	if !m.Status.IsError {
		t.Fatalf("expected unknown command error, got %+v", m.Status)
	}
}

func TestPaletteEscCloses(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(t, m, runes(":"), runes("a"), tea.KeyMsg{Type: tea.KeyEsc})
	if m.Palette.Active || m.Palette.Input != "" {
		t.Fatalf("expected palette closed and cleared, got %+v", m.Palette)
	}
}

func TestTasksViewToggleMovesToArchive(t *testing.T) {
	m, svc := newTestModel(t, model.Draft{Text: "write report"})
	m, _ = press(t, m, runes("x"))
	if len(svc.Active()) != 0 || len(svc.Archive()) != 1 {
		t.Fatalf("completed task should be archived: active=%d archived=%d", len(svc.Active()), len(svc.Archive()))
	}
	if !strings.HasPrefix(m.Status.Text, "completed") {
		t.Fatalf("unexpected status: %q", m.Status.Text)
	}

	m, _ = press(t, m, runes("2"), runes("x"))
	if len(svc.Active()) != 1 {
		t.Fatal("reopening from the archive should return the task to active")
	}
	if m.SelectedTaskID != "" {
		t.Fatalf("archive is empty, selection should clear, got %q", m.SelectedTaskID)
	}
}

func TestTasksViewDeleteAndRestore(t *testing.T) {
	m, svc := newTestModel(t, model.Draft{Text: "a"}, model.Draft{Text: "b"})
	m, _ = press(t, m, runes("j"))
	target := m.SelectedTaskID
	m, _ = press(t, m, runes("d"))
	if _, ok := svc.Task(target); !ok {
		t.Fatal("deleted task should still be findable in the archive")
	}
	if len(svc.Active()) != 1 {
		t.Fatalf("expected one active task, got %d", len(svc.Active()))
	}
	if m.TaskCursor != 0 {
		t.Fatalf("cursor should clamp after delete, got %d", m.TaskCursor)
	}

	m, _ = press(t, m, runes("2"), runes("r"))
	if len(svc.Active()) != 2 {
		t.Fatalf("restore should bring the task back, status=%q", m.Status.Text)
	}
}

func TestArchivePurgeAndClear(t *testing.T) {
	m, svc := newTestModel(t, model.Draft{Text: "a"}, model.Draft{Text: "b"}, model.Draft{Text: "c"})
	m, _ = press(t, m, runes("d"), runes("d"), runes("2"))
	if len(svc.Archive()) != 2 {
		t.Fatalf("expected two archived tasks, got %d", len(svc.Archive()))
	}
	m, _ = press(t, m, runes("P"))
	if len(svc.Archive()) != 1 {
		t.Fatalf("purge should remove one archived task, got %d", len(svc.Archive()))
	}
	m, _ = press(t, m, runes("C"))
	if len(svc.Archive()) != 0 || len(svc.Active()) != 1 {
		t.Fatalf("clear archive must leave active tasks alone: active=%d archived=%d", len(svc.Active()), len(svc.Archive()))
	}
	if !strings.Contains(m.Status.Text, "1 task") {
		t.Fatalf("unexpected status: %q", m.Status.Text)
	}
}

func TestQuickFilterCycle(t *testing.T) {
	m, svc := newTestModel(t,
		model.Draft{Text: "today", Date: "2024-03-10"},
		model.Draft{Text: "later", Date: "2024-03-20"},
	)
	m, _ = press(t, m, runes("f"))
	if got := svc.Filters().QuickFilter; got != model.QuickToday {
		t.Fatalf("expected today filter, got %q", got)
	}
	visible := svc.Visible()
	if len(visible) != 1 || visible[0].Text != "today" {
		t.Fatalf("unexpected visible tasks: %+v", visible)
	}
	if !strings.Contains(m.View(), "today") {
		t.Fatal("view should show the filtered task")
	}
	m, _ = press(t, m, runes("F"))
	if got := svc.Filters().QuickFilter; got != model.QuickAll {
		t.Fatalf("expected reset filter, got %q", got)
	}
}

func TestCalendarNavigation(t *testing.T) {
	m, _ := newTestModel(t, model.Draft{Text: "standup", Date: "2024-03-11"})
	m, _ = press(t, m, runes("3"), runes("l"))
	if got := model.FormatDate(m.Calendar.FocusDate); got != "2024-03-11" {
		t.Fatalf("expected focus 2024-03-11, got %s", got)
	}
	if m.SelectedTaskID == "" {
		t.Fatal("expected the focus day's task to be selected")
	}
	m, _ = press(t, m, runes("L"))
	if got := model.FormatDate(m.Calendar.FocusDate); got != "2024-03-18" {
		t.Fatalf("expected focus 2024-03-18, got %s", got)
	}
	m, _ = press(t, m, runes("H"), runes("h"), runes("h"))
	if got := model.FormatDate(m.Calendar.FocusDate); got != "2024-03-09" {
		t.Fatalf("expected focus 2024-03-09, got %s", got)
	}
	m, _ = press(t, m, runes("t"))
	if !m.Calendar.FocusDate.Equal(model.Midnight(fixedNow)) {
		t.Fatalf("expected focus today, got %v", m.Calendar.FocusDate)
	}
	if !strings.Contains(m.View(), "standup") {
		t.Fatal("agenda should list tomorrow's task")
	}
}

func TestPaletteNoteShowsOnCalendar(t *testing.T) {
	m, svc := newTestModel(t)
	m, _ = typeCommand(t, m, "note @tomorrow dentist at noon")
	if m.Status.IsError {
		t.Fatalf("unexpected error: %+v", m.Status)
	}
	if day := svc.CalendarDay("2024-03-11"); len(day.Notes) != 1 {
		t.Fatalf("expected one note, got %+v", day.Notes)
	}
	m, _ = press(t, m, runes("3"))
	if !strings.Contains(m.View(), "dentist") {
		t.Fatal("calendar should render the note")
	}
}

func TestSyncAppliesResultInUpdate(t *testing.T) {
	pulled := []model.Task{
		{ID: "r1", Text: "remote active", Category: model.CategoryWork, Priority: model.PriorityLow, CreatedAt: fixedNow},
		{ID: "r2", Text: "remote done", Category: model.CategoryWork, Priority: model.PriorityLow, Completed: true, CreatedAt: fixedNow},
	}
	svc := newTestService(t, &stubSyncer{pulled: pulled})
	m := NewModel(svc, Options{})

	m, cmd := press(t, m, runes("s"))
	if !m.Syncing || cmd == nil {
		t.Fatal("expected sync to start")
	}
	if len(svc.Active()) != 0 {
		t.Fatal("pulled tasks must not be applied before the result message")
	}

	updated, _ := m.Update(pullCmd(svc, "session-1")())
	m = updated.(Model)
	if m.Syncing || m.Status.IsError {
		t.Fatalf("unexpected sync state: syncing=%v status=%+v", m.Syncing, m.Status)
	}
	if len(svc.Active()) != 1 || len(svc.Archive()) != 1 {
		t.Fatalf("unexpected partition: active=%d archived=%d", len(svc.Active()), len(svc.Archive()))
	}
}

func TestSyncFailureKeepsLocalTasks(t *testing.T) {
	svc := newTestService(t, &stubSyncer{pullErr: errors.New("offline")})
	if _, err := svc.CreateLocal(context.Background(), model.Draft{Text: "local"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	m := NewModel(svc, Options{})
	updated, _ := m.Update(pullCmd(svc, "session-1")())
	m = updated.(Model)
	if !m.Status.IsError || len(svc.Active()) != 1 {
		t.Fatalf("failed sync must keep local state: status=%+v active=%d", m.Status, len(svc.Active()))
	}
}

func TestSyncDisabledStatus(t *testing.T) {
	m, svc := newTestModel(t)
	updated, _ := m.Update(pullCmd(svc, "session-1")())
	if got := updated.(Model).Status.Text; got != "sync is not configured" {
		t.Fatalf("unexpected status: %q", got)
	}
}

func TestReminderDueNotifies(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := newTestService(t, nil)
	m := NewModel(svc, Options{Notifier: notifier, DesktopEnabled: true})
	r := scheduler.Reminder{TaskID: "1", Text: "standup", DueAt: fixedNow.Add(15 * time.Minute), FireAt: fixedNow}
	updated, _ := m.Update(ReminderDueMsg{Reminder: r})
	next := updated.(Model)
	if len(next.ReminderLog) != 1 {
		t.Fatalf("expected reminder logged, got %d", len(next.ReminderLog))
	}
	if len(notifier.sent) != 1 || notifier.sent[0].Title != "Reminder" {
		t.Fatalf("expected desktop notification, got %+v", notifier.sent)
	}
	if !strings.Contains(next.View(), "last-reminder: standup") {
		t.Fatal("view should show the last reminder")
	}
}

func TestSchedulerRearmedOnMutation(t *testing.T) {
	engine := scheduler.NewEngine(4)
	svc := newTestService(t, nil)
	m := NewModel(svc, Options{Scheduler: engine})
	if engine.Pending() != 0 {
		t.Fatalf("expected nothing pending, got %d", engine.Pending())
	}
	m, _ = typeCommand(t, m, "add standup @tomorrow ^10:00 ~15")
	if engine.Pending() != 1 {
		t.Fatalf("expected one pending reminder, got %d", engine.Pending())
	}
	_, _ = press(t, m, runes("x"))
	if engine.Pending() != 0 {
		t.Fatalf("completed task should drop its reminder, got %d", engine.Pending())
	}
}

func TestHelpToggle(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(t, m, runes("?"))
	if !m.HelpVisible {
		t.Fatal("expected help visible")
	}
	if !strings.Contains(m.View(), "cycle quick filter") {
		t.Fatal("help should list tasks view bindings")
	}
	m, _ = press(t, m, runes("?"))
	if m.HelpVisible {
		t.Fatal("expected help hidden")
	}
}

func TestStatsViewRenders(t *testing.T) {
	m, _ := newTestModel(t, model.Draft{Text: "a", Category: model.CategoryWork})
	m, _ = press(t, m, runes("4"))
	if out := m.View(); !strings.Contains(strings.ToLower(out), "work") {
		t.Fatalf("stats view should mention categories:\n%s", out)
	}
}
