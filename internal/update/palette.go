package update

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/daybook/internal/commands"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	m.Palette.Input = m.commandInput.Value()
	return m, cmd
}

func (m *Model) closePalette() {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

func (m Model) executePaletteCommand() (tea.Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m.closePalette()
	cmd, err := commands.Parse(raw, m.svc.Now())
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	ctx := context.Background()
	var follow tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			t, err := m.svc.CreateLocal(ctx, a.Draft())
			if err != nil {
				return commands.Result{}, err
			}
			follow = pushCmd(m.svc, m.svc.Session(ctx), t)
			m.CurrentView = ViewTasks
			return commands.Result{Message: fmt.Sprintf("added: %s", t.Text)}, nil
		},
		Done: func(a commands.TargetArgs) (commands.Result, error) {
			t, err := m.svc.ToggleComplete(ctx, a.ID)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("toggled: %s", t.Text)}, nil
		},
		Delete: func(a commands.TargetArgs) (commands.Result, error) {
			t, err := m.svc.DeleteTask(ctx, a.ID)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("deleted: %s", t.Text)}, nil
		},
		Restore: func(a commands.TargetArgs) (commands.Result, error) {
			active, err := m.svc.RestoreTask(ctx, a.ID)
			if err != nil {
				return commands.Result{}, err
			}
			if !active {
				return commands.Result{Message: "restored, still archived because its date has passed"}, nil
			}
			return commands.Result{Message: "restored to tasks"}, nil
		},
		Filter: func(a commands.FilterArgs) (commands.Result, error) {
			if err := m.svc.SetQuickFilter(ctx, a.Quick); err != nil {
				return commands.Result{}, err
			}
			m.CurrentView = ViewTasks
			m.TaskCursor = 0
			return commands.Result{Message: fmt.Sprintf("quick filter: %s", a.Quick)}, nil
		},
		Note: func(a commands.NoteArgs) (commands.Result, error) {
			if _, err := m.svc.AddNote(ctx, a.Date, a.Text, ""); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("note added on %s", a.Date)}, nil
		},
		Sync: func() (commands.Result, error) {
			next, cmd := m.startSync()
			m = next.(Model)
			follow = cmd
			return commands.Result{Message: "sync started"}, nil
		},
	})
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Command Failed", err.Error(), "error")
		return m, nil
	}
	m.Status = StatusBar{Text: res.Message}
	m.notify("Command", res.Message, "info")
	m.clampCursors()
	m.syncSelection()
	m.rearmReminders()
	return m, follow
}
