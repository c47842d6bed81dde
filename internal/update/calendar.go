package update

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/daybook/internal/model"
	"github.com/sandeepkv93/daybook/internal/views"
)

const agendaDays = 7

func (m Model) handleCalendarKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "h", "left":
		m.shiftCalendarFocus(-1)
	case "l", "right":
		m.shiftCalendarFocus(1)
	case "H":
		m.shiftCalendarFocus(-7)
	case "L":
		m.shiftCalendarFocus(7)
	case "t":
		m.Calendar.FocusDate = model.Midnight(m.svc.Now())
		m.Calendar.Cursor = 0
		m.Status = StatusBar{Text: "calendar focus: today"}
	case "up", "k":
		if m.Calendar.Cursor > 0 {
			m.Calendar.Cursor--
		}
	case "down", "j":
		m.Calendar.Cursor++
	case "x", " ":
		if t, ok := m.currentTask(); ok {
			m = m.toggleTask(t.ID)
		}
	}
	m.clampCursors()
	m.syncSelection()
	return m
}

func (m *Model) shiftCalendarFocus(days int) {
	m.Calendar.FocusDate = model.AddDays(m.Calendar.FocusDate, days)
	m.Calendar.Cursor = 0
	m.Status = StatusBar{Text: fmt.Sprintf("calendar focus: %s", model.FormatDate(m.Calendar.FocusDate))}
}

func (m Model) renderCalendarView() string {
	agenda := m.svc.Agenda(m.Calendar.FocusDate, agendaDays)
	days := make([]views.CalendarDayData, 0, len(agenda))
	for _, day := range agenda {
		label := ""
		if d, err := model.ParseDate(day.Date, m.Calendar.FocusDate.Location()); err == nil {
			label = d.Weekday().String()[:3]
		}
		notes := make([]views.NoteRow, 0, len(day.Notes))
		for _, n := range day.Notes {
			notes = append(notes, views.NoteRow{Text: n.Text, Color: n.Color})
		}
		days = append(days, views.CalendarDayData{
			Date:  day.Date,
			Label: label,
			Rows:  m.taskRows(day.Tasks),
			Notes: notes,
		})
	}
	return views.RenderCalendarPanel(views.CalendarPanelData{
		FocusDate: model.FormatDate(m.Calendar.FocusDate),
		Days:      days,
		Cursor:    m.Calendar.Cursor,
	})
}
