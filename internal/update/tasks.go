package update

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/daybook/internal/lifecycle"
	"github.com/sandeepkv93/daybook/internal/model"
	"github.com/sandeepkv93/daybook/internal/store"
	"github.com/sandeepkv93/daybook/internal/views"
)

func (m Model) handleTasksKey(msg tea.KeyMsg) Model {
	visible := m.svc.Visible()
	switch msg.String() {
	case "up", "k":
		if m.TaskCursor > 0 {
			m.TaskCursor--
		}
	case "down", "j":
		if m.TaskCursor < len(visible)-1 {
			m.TaskCursor++
		}
	case "x", " ":
		if t, ok := taskAt(visible, m.TaskCursor); ok {
			m = m.toggleTask(t.ID)
		}
	case "d":
		if t, ok := taskAt(visible, m.TaskCursor); ok {
			m = m.deleteTask(t.ID)
		}
	case "f":
		q, err := m.svc.CycleQuickFilter(context.Background())
		if err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			break
		}
		m.TaskCursor = 0
		m.Status = StatusBar{Text: fmt.Sprintf("quick filter: %s", q)}
	case "F":
		if err := m.svc.ResetFilters(context.Background()); err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			break
		}
		m.TaskCursor = 0
		m.Status = StatusBar{Text: "filters reset"}
	}
	m.clampCursors()
	m.syncSelection()
	return m
}

func (m Model) handleArchiveKey(msg tea.KeyMsg) Model {
	archived := m.svc.Archive()
	switch msg.String() {
	case "up", "k":
		if m.ArchiveCursor > 0 {
			m.ArchiveCursor--
		}
	case "down", "j":
		if m.ArchiveCursor < len(archived)-1 {
			m.ArchiveCursor++
		}
	case "r":
		if t, ok := taskAt(archived, m.ArchiveCursor); ok {
			m = m.restoreTask(t.ID)
		}
	case "x", " ":
		if t, ok := taskAt(archived, m.ArchiveCursor); ok {
			m = m.toggleTask(t.ID)
		}
	case "P":
		if t, ok := taskAt(archived, m.ArchiveCursor); ok {
			if err := m.svc.PurgeTask(context.Background(), t.ID); err != nil {
				m.Status = StatusBar{Text: err.Error(), IsError: true}
			} else {
				m.Status = StatusBar{Text: fmt.Sprintf("purged: %s", t.Text)}
			}
		}
	case "C":
		n, err := m.svc.ClearArchive(context.Background())
		if err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
		} else {
			m.Status = StatusBar{Text: fmt.Sprintf("archive cleared: %d task(s)", n)}
		}
	}
	m.clampCursors()
	m.syncSelection()
	return m
}

func (m Model) toggleTask(id string) Model {
	t, err := m.svc.ToggleComplete(context.Background(), id)
	if err != nil {
		return m.failMutation(err)
	}
	if t.Completed {
		m.Status = StatusBar{Text: fmt.Sprintf("completed: %s", t.Text)}
	} else {
		m.Status = StatusBar{Text: fmt.Sprintf("reopened: %s", t.Text)}
	}
	m.rearmReminders()
	return m
}

func (m Model) deleteTask(id string) Model {
	t, err := m.svc.DeleteTask(context.Background(), id)
	if err != nil {
		return m.failMutation(err)
	}
	m.Status = StatusBar{Text: fmt.Sprintf("deleted: %s", t.Text)}
	m.rearmReminders()
	return m
}

func (m Model) restoreTask(id string) Model {
	active, err := m.svc.RestoreTask(context.Background(), id)
	if err != nil {
		return m.failMutation(err)
	}
	if active {
		m.Status = StatusBar{Text: "restored to tasks"}
	} else {
		m.Status = StatusBar{Text: "restored, but its date has passed so it stays archived"}
	}
	m.rearmReminders()
	return m
}

func (m Model) failMutation(err error) Model {
	m.LastError = err
	if errors.Is(err, store.ErrTaskNotFound) {
		m.Status = StatusBar{Text: "task not found", IsError: true}
		return m
	}
	m.Status = StatusBar{Text: err.Error(), IsError: true}
	m.notify("Error", err.Error(), "error")
	return m
}

func (m *Model) clampCursors() {
	clamp := func(cursor, n int) int {
		if cursor >= n {
			cursor = n - 1
		}
		if cursor < 0 {
			cursor = 0
		}
		return cursor
	}
	m.TaskCursor = clamp(m.TaskCursor, len(m.svc.Visible()))
	m.ArchiveCursor = clamp(m.ArchiveCursor, len(m.svc.Archive()))
	m.Calendar.Cursor = clamp(m.Calendar.Cursor, len(m.svc.CalendarDay(model.FormatDate(m.Calendar.FocusDate)).Tasks))
}

func (m *Model) syncSelection() {
	m.SelectedTaskID = ""
	if t, ok := m.currentTask(); ok {
		m.SelectedTaskID = t.ID
	}
}

func (m Model) currentTask() (model.Task, bool) {
	switch m.CurrentView {
	case ViewTasks:
		return taskAt(m.svc.Visible(), m.TaskCursor)
	case ViewArchive:
		return taskAt(m.svc.Archive(), m.ArchiveCursor)
	case ViewCalendar:
		return taskAt(m.svc.CalendarDay(model.FormatDate(m.Calendar.FocusDate)).Tasks, m.Calendar.Cursor)
	default:
		return model.Task{}, false
	}
}

func taskAt(tasks []model.Task, i int) (model.Task, bool) {
	if i < 0 || i >= len(tasks) {
		return model.Task{}, false
	}
	return tasks[i], true
}

func (m Model) taskRow(t model.Task) views.TaskRow {
	return views.TaskRow{
		ID:        t.ID,
		Text:      t.Text,
		Category:  string(t.Category.Display()),
		Priority:  string(t.Priority),
		Date:      t.Date,
		Time:      t.Time,
		Reminder:  t.Reminder,
		Completed: t.Completed,
		Deleted:   t.Deleted,
		Overdue:   lifecycle.IsOverdue(t, m.svc.Now()),
	}
}

func (m Model) taskRows(tasks []model.Task) []views.TaskRow {
	out := make([]views.TaskRow, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, m.taskRow(t))
	}
	return out
}

func (m Model) renderTasksView() string {
	return views.RenderTaskList(views.TaskListData{
		Title:       "tasks",
		QuickFilter: string(m.svc.Filters().QuickFilter),
		Rows:        m.taskRows(m.svc.Visible()),
		Cursor:      m.TaskCursor,
		Empty:       "no tasks match the current filters",
	})
}

func (m Model) renderArchiveView() string {
	return views.RenderTaskList(views.TaskListData{
		Title:  "archive",
		Rows:   m.taskRows(m.svc.Archive()),
		Cursor: m.ArchiveCursor,
		Empty:  "archive is empty",
	})
}

func (m Model) renderSelectedDetail() string {
	t, ok := m.currentTask()
	if !ok {
		return views.RenderDetail(views.TaskRow{}, false)
	}
	return views.RenderDetail(m.taskRow(t), true)
}
