package update

import (
	"fmt"
	"strings"

	"github.com/sandeepkv93/daybook/internal/model"
	"github.com/sandeepkv93/daybook/internal/views"
)

func (m Model) statsData() views.StatsData {
	s := m.svc.Stats()
	cats := make([]views.CategoryCount, 0, len(model.KnownCategories))
	for _, c := range model.KnownCategories {
		cats = append(cats, views.CategoryCount{Name: string(c), Count: s.Categories[c]})
	}
	return views.StatsData{
		Total:          s.Total,
		Completed:      s.Completed,
		CompletionRate: s.CompletionRate,
		InProgress:     s.InProgress,
		Overdue:        s.Overdue,
		Streak:         s.Streak,
		AveragePerDay:  s.AveragePerDay,
		Load:           string(s.Load),
		Categories:     cats,
		Weekdays:       s.Weekdays,
	}
}

func (m Model) renderStatsView() string {
	width := 60
	if m.width > 0 && m.width/2 < width {
		width = m.width / 2
	}
	return views.RenderMarkdown(views.StatsMarkdown(m.statsData()), width)
}

func (m Model) renderUpcomingReminders() string {
	upcoming := m.svc.Reminders()
	if len(upcoming) == 0 {
		return "reminders:\n(none upcoming)"
	}
	var b strings.Builder
	b.WriteString("reminders:\n")
	for i, r := range upcoming {
		if i == 5 {
			b.WriteString(fmt.Sprintf("... and %d more\n", len(upcoming)-5))
			break
		}
		b.WriteString(fmt.Sprintf("- %s %s\n", r.FireAt.Format("01-02 15:04"), r.Text))
	}
	return strings.TrimSuffix(b.String(), "\n")
}
