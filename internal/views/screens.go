// Package views renders plain data into terminal text. It knows nothing about
// the store or the update loop.
package views

import (
	"fmt"
	"sort"
	"strings"
)

type TaskRow struct {
	ID        string
	Text      string
	Category  string
	Priority  string
	Date      string
	Time      string
	Reminder  int
	Completed bool
	Deleted   bool
	Overdue   bool
}

type TaskListData struct {
	Title       string
	QuickFilter string
	Rows        []TaskRow
	Cursor      int
	Empty       string
}

type NoteRow struct {
	Text  string
	Color string
}

type CalendarDayData struct {
	Date  string
	Label string
	Rows  []TaskRow
	Notes []NoteRow
}

type CalendarPanelData struct {
	FocusDate string
	Days      []CalendarDayData
	Cursor    int
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

func RenderTaskList(data TaskListData) string {
	var b strings.Builder
	title := data.Title
	if data.QuickFilter != "" {
		title = fmt.Sprintf("%s [%s]", title, data.QuickFilter)
	}
	b.WriteString(title + ":\n")
	if len(data.Rows) == 0 {
		empty := data.Empty
		if empty == "" {
			empty = "(nothing here)"
		}
		b.WriteString(mutedStyle.Render(empty))
		return b.String()
	}
	for i, row := range data.Rows {
		b.WriteString(renderTaskRow(row, i == data.Cursor))
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderTaskRow(row TaskRow, selected bool) string {
	cursor := " "
	if selected {
		cursor = cursorStyle.Render(">")
	}
	check := "[ ]"
	switch {
	case row.Deleted:
		check = "[-]"
	case row.Completed:
		check = "[x]"
	}
	prio := row.Priority
	if style, ok := priorityStyles[row.Priority]; ok {
		prio = style.Render(row.Priority)
	}
	line := fmt.Sprintf("%s %s %s %s #%s", cursor, check, row.Text, prio, row.Category)
	if row.Date != "" {
		when := row.Date
		if row.Time != "" {
			when += " " + row.Time
		}
		line += " @" + when
	}
	if row.Reminder > 0 {
		line += fmt.Sprintf(" ~%dm", row.Reminder)
	}
	if row.Overdue {
		line += " " + errorStyle.Render("overdue")
	}
	return line
}

func RenderDetail(row TaskRow, ok bool) string {
	if !ok {
		return "details:\n(no selection)"
	}
	lines := []string{
		"details:",
		"id: " + row.ID,
		"text: " + row.Text,
		"category: " + row.Category,
		"priority: " + row.Priority,
	}
	if row.Date != "" {
		lines = append(lines, "date: "+row.Date)
	}
	if row.Time != "" {
		lines = append(lines, "time: "+row.Time)
	}
	if row.Reminder > 0 {
		lines = append(lines, fmt.Sprintf("reminder: %d min before", row.Reminder))
	}
	return strings.Join(lines, "\n")
}

func RenderCalendarPanel(data CalendarPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("calendar: %s\n", data.FocusDate))
	b.WriteString(mutedStyle.Render("actions: [h/l]day [H/L]week [t]today [j/k]move [x]toggle") + "\n")

	days := append([]CalendarDayData(nil), data.Days...)
	sort.SliceStable(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	for i, day := range days {
		label := day.Date
		if day.Label != "" {
			label += " " + day.Label
		}
		b.WriteString(fmt.Sprintf("\n%s:\n", label))
		for _, n := range day.Notes {
			b.WriteString(fmt.Sprintf("  * (%s) %s\n", n.Color, n.Text))
		}
		if len(day.Rows) == 0 && len(day.Notes) == 0 {
			b.WriteString(mutedStyle.Render("  (free)") + "\n")
			continue
		}
		for j, row := range day.Rows {
			b.WriteString(renderTaskRow(row, i == 0 && j == data.Cursor))
			b.WriteString("\n")
		}
	}
	return strings.TrimSpace(b.String())
}

func RenderCommandPalette(active bool, inputView string) string {
	if !active {
		return ""
	}
	return "command:\n" + inputView
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("notification: [%s] %s", strings.ToUpper(level), body)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help (%s):\n%s\n\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}
