package update

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/daybook/internal/app"
	"github.com/sandeepkv93/daybook/internal/model"
	"github.com/sandeepkv93/daybook/internal/scheduler"
)

func waitForReminderCmd(ch <-chan scheduler.Reminder) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return nil
		}
		return ReminderDueMsg{Reminder: r}
	}
}

// pullCmd only talks to the remote; the result is applied in Update.
func pullCmd(svc *app.Service, session string) tea.Cmd {
	return func() tea.Msg {
		tasks, err := svc.Pull(context.Background(), session)
		return SyncResultMsg{Tasks: tasks, Err: err}
	}
}

func pushCmd(svc *app.Service, session string, t model.Task) tea.Cmd {
	return func() tea.Msg {
		return PushResultMsg{TaskID: t.ID, Err: svc.PushTask(context.Background(), session, t)}
	}
}

func (m *Model) rearmReminders() {
	if m.Scheduler == nil {
		return
	}
	if err := m.Scheduler.Replace(m.svc.Reminders()); err != nil {
		m.Status = StatusBar{Text: fmt.Sprintf("reminder schedule failed: %v", err), IsError: true}
	}
}
