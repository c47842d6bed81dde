package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// Tab is one entry of the view strip at the top of the frame.
type Tab struct {
	Key    string
	Label  string
	Count  int
	Active bool
}

// AppData is everything the frame needs; panes are pre-rendered strings.
type AppData struct {
	Tabs         []Tab
	Filter       string
	LeftPane     string
	RightPane    string
	StatusLine   string
	StatusError  bool
	Notification string
	Hint         string
}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("7"))
	activeTabStyle = tabStyle.Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("12"))
	okStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	boxStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	cursorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))

	priorityStyles = map[string]lipgloss.Style{
		"high":   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		"medium": lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		"low":    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	}
)

const (
	mainPaneWidth = 64
	sidePaneWidth = 48
)

func renderTabs(tabs []Tab, filter string) string {
	parts := []string{titleStyle.Render("daybook")}
	for _, t := range tabs {
		label := fmt.Sprintf("%s %s", t.Key, t.Label)
		if t.Count > 0 {
			label = fmt.Sprintf("%s (%d)", label, t.Count)
		}
		if t.Active {
			parts = append(parts, activeTabStyle.Render(label))
			continue
		}
		parts = append(parts, tabStyle.Render(label))
	}
	if filter != "" {
		parts = append(parts, mutedStyle.Render("filter: "+filter))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

func RenderApp(data AppData) string {
	body := boxStyle.Width(mainPaneWidth).Render(data.LeftPane)
	if strings.TrimSpace(data.RightPane) != "" {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, boxStyle.Width(sidePaneWidth).Render(data.RightPane))
	}

	style := okStyle
	if data.StatusError {
		style = errorStyle
	}
	out := []string{renderTabs(data.Tabs, data.Filter), body, style.Render(data.StatusLine)}
	if data.Notification != "" {
		out = append(out, boxStyle.Render(data.Notification))
	}
	if data.Hint != "" {
		out = append(out, mutedStyle.Render(data.Hint))
	}
	return strings.Join(out, "\n")
}

// RenderMarkdown falls back to the raw markdown when glamour fails.
func RenderMarkdown(md string, width int) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	if width <= 0 {
		width = 60
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
