package update

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/daybook/internal/app"
	"github.com/sandeepkv93/daybook/internal/views"
)

func (m Model) Init() tea.Cmd {
	if m.Scheduler != nil {
		return waitForReminderCmd(m.Scheduler.C())
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		return m, nil
	case tea.KeyMsg:
		if m.Palette.Active {
			return m.handlePaletteKey(typed)
		}

		switch typed.String() {
		case m.Keys.Palette, "/":
			m.Palette.Active = true
			m.Palette.Input = ""
			m.commandInput.SetValue("")
			m.commandInput.Focus()
			m.Status = StatusBar{Text: "command palette active"}
			return m, nil
		case m.Keys.Tasks:
			return m.switchView(ViewTasks), nil
		case m.Keys.Archive:
			return m.switchView(ViewArchive), nil
		case m.Keys.Calendar:
			return m.switchView(ViewCalendar), nil
		case m.Keys.Stats:
			return m.switchView(ViewStats), nil
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			if m.HelpVisible {
				m.Status = StatusBar{Text: "help shown"}
			} else {
				m.Status = StatusBar{Text: "help hidden"}
			}
			return m, nil
		case m.Keys.Sync:
			return m.startSync()
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}

		switch m.CurrentView {
		case ViewTasks:
			return m.handleTasksKey(typed), nil
		case ViewArchive:
			return m.handleArchiveKey(typed), nil
		case ViewCalendar:
			return m.handleCalendarKey(typed), nil
		}
	case spinner.TickMsg:
		if m.Syncing {
			var cmd tea.Cmd
			m.syncSpinner, cmd = m.syncSpinner.Update(typed)
			return m, cmd
		}
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m = m.switchView(typed.View)
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		m.notify("Status", typed.Text, levelFromError(typed.IsError))
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.notify("Error", typed.Err.Error(), "error")
		}
		return m, nil
	case SyncResultMsg:
		return m.applySyncResult(typed), nil
	case PushResultMsg:
		if typed.Err != nil && !errors.Is(typed.Err, app.ErrSyncDisabled) {
			m.Status = StatusBar{Text: fmt.Sprintf("task %s saved locally only: %v", typed.TaskID, typed.Err), IsError: true}
			m.notify("Sync", m.Status.Text, "error")
		}
		return m, nil
	case ReminderDueMsg:
		m.ReminderLog = append(m.ReminderLog, typed.Reminder)
		if len(m.ReminderLog) > 20 {
			m.ReminderLog = m.ReminderLog[len(m.ReminderLog)-20:]
		}
		m.Status = StatusBar{Text: fmt.Sprintf("reminder: %s at %s", typed.Reminder.Text, typed.Reminder.DueAt.Format("15:04"))}
		m.notify("Reminder", m.Status.Text, "info")
		if m.Scheduler != nil {
			return m, waitForReminderCmd(m.Scheduler.C())
		}
		return m, nil
	}

	return m, nil
}

func (m Model) switchView(v View) Model {
	m.CurrentView = v
	if v == ViewCalendar {
		m.Calendar.Cursor = 0
	}
	m.syncSelection()
	return m
}

func (m Model) startSync() (tea.Model, tea.Cmd) {
	if m.Syncing {
		return m, nil
	}
	m.Syncing = true
	m.Status = StatusBar{Text: "sync started"}
	session := m.svc.Session(context.Background())
	return m, tea.Batch(m.syncSpinner.Tick, pullCmd(m.svc, session))
}

func (m Model) applySyncResult(res SyncResultMsg) Model {
	m.Syncing = false
	if res.Err != nil {
		m.LastError = res.Err
		if errors.Is(res.Err, app.ErrSyncDisabled) {
			m.Status = StatusBar{Text: "sync is not configured", IsError: true}
		} else {
			m.Status = StatusBar{Text: "sync failed, local tasks kept", IsError: true}
		}
		return m
	}
	n, err := m.svc.ApplyPull(context.Background(), res.Tasks)
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: fmt.Sprintf("sync applied but save failed: %v", err), IsError: true}
	} else {
		m.Status = StatusBar{Text: fmt.Sprintf("sync complete: %d task(s)", n)}
	}
	m.clampCursors()
	m.syncSelection()
	m.rearmReminders()
	return m
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		status = "status: " + m.Status.Text
	}
	leftPane := ""
	rightPane := ""
	switch m.CurrentView {
	case ViewTasks:
		leftPane = m.renderTasksView()
		rightPane = m.renderSelectedDetail()
	case ViewArchive:
		leftPane = m.renderArchiveView()
		rightPane = m.renderSelectedDetail()
	case ViewCalendar:
		leftPane = m.renderCalendarView()
		rightPane = m.renderSelectedDetail()
	case ViewStats:
		leftPane = m.renderStatsView()
		rightPane = m.renderUpcomingReminders()
	}
	rightPane = strings.TrimSpace(strings.Join([]string{
		rightPane,
		views.RenderCommandPalette(m.Palette.Active, m.commandInput.View()),
		m.renderHelpIfVisible(),
	}, "\n\n"))

	notificationView := ""
	if len(m.ReminderLog) > 0 {
		last := m.ReminderLog[len(m.ReminderLog)-1]
		notificationView = fmt.Sprintf("last-reminder: %s @ %s", last.Text, last.FireAt.Format("15:04"))
	}
	if m.Syncing {
		notificationView = strings.TrimSpace(notificationView + "\nsync: " + m.syncSpinner.View() + " running")
	}
	notificationView = strings.TrimSpace(strings.Join([]string{
		notificationView,
		m.renderNotificationsView(),
	}, "\n"))

	return views.RenderApp(views.AppData{
		Tabs:         m.tabs(),
		Filter:       string(m.svc.Filters().QuickFilter),
		LeftPane:     leftPane,
		RightPane:    rightPane,
		StatusLine:   status,
		StatusError:  m.Status.IsError,
		Notification: notificationView,
		Hint:         fmt.Sprintf("%s cmd | %s sync | %s help | %s quit", m.Keys.Palette, m.Keys.Sync, m.Keys.Help, m.Keys.Quit),
	})
}

func (m Model) tabs() []views.Tab {
	return []views.Tab{
		{Key: m.Keys.Tasks, Label: "tasks", Count: len(m.svc.Visible()), Active: m.CurrentView == ViewTasks},
		{Key: m.Keys.Archive, Label: "archive", Count: len(m.svc.Archive()), Active: m.CurrentView == ViewArchive},
		{Key: m.Keys.Calendar, Label: "calendar", Active: m.CurrentView == ViewCalendar},
		{Key: m.Keys.Stats, Label: "stats", Active: m.CurrentView == ViewStats},
	}
}

func isKnownView(v View) bool {
	switch v {
	case ViewTasks, ViewArchive, ViewCalendar, ViewStats:
		return true
	default:
		return false
	}
}
