package views

import (
	"fmt"
	"strings"
)

type StatsData struct {
	Total          int
	Completed      int
	CompletionRate int
	InProgress     int
	Overdue        int
	Streak         int
	AveragePerDay  float64
	Load           string
	Categories     []CategoryCount
	Weekdays       [7]int
}

type CategoryCount struct {
	Name  string
	Count int
}

var weekdayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// StatsMarkdown builds the markdown document shown in the stats view.
func StatsMarkdown(d StatsData) string {
	var b strings.Builder
	b.WriteString("# Statistics\n\n")
	b.WriteString("| metric | value |\n|---|---|\n")
	fmt.Fprintf(&b, "| total | %d |\n", d.Total)
	fmt.Fprintf(&b, "| completed | %d |\n", d.Completed)
	fmt.Fprintf(&b, "| completion rate | %d%% |\n", d.CompletionRate)
	fmt.Fprintf(&b, "| in progress | %d |\n", d.InProgress)
	fmt.Fprintf(&b, "| overdue | %d |\n", d.Overdue)
	fmt.Fprintf(&b, "| streak | %d day(s) |\n", d.Streak)
	fmt.Fprintf(&b, "| average per day | %.1f |\n", d.AveragePerDay)
	fmt.Fprintf(&b, "| load | %s |\n", d.Load)

	b.WriteString("\n## Categories\n\n")
	for _, c := range d.Categories {
		fmt.Fprintf(&b, "- **%s**: %d\n", c.Name, c.Count)
	}

	b.WriteString("\n## By weekday\n\n")
	maxCount := 0
	for _, n := range d.Weekdays {
		if n > maxCount {
			maxCount = n
		}
	}
	b.WriteString("```\n")
	for i, n := range d.Weekdays {
		fmt.Fprintf(&b, "%s %s %d\n", weekdayNames[i], bar(n, maxCount, 20), n)
	}
	b.WriteString("```\n")
	return b.String()
}

func bar(n, maxCount, width int) string {
	if maxCount <= 0 || n <= 0 {
		return strings.Repeat(".", width)
	}
	filled := n * width / maxCount
	if filled < 1 {
		filled = 1
	}
	return strings.Repeat("#", filled) + strings.Repeat(".", width-filled)
}
