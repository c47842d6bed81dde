package model

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidStatus      = errors.New("model: invalid status filter")
	ErrInvalidQuickFilter = errors.New("model: invalid quick filter")
)

// Status is a member of the status facet.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusOverdue   Status = "overdue"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusOverdue:
		return true
	default:
		return false
	}
}

// QuickFilter is the single date preset applied on top of the facets.
type QuickFilter string

const (
	QuickToday    QuickFilter = "today"
	QuickTomorrow QuickFilter = "tomorrow"
	QuickWeek     QuickFilter = "week"
	QuickOverdue  QuickFilter = "overdue"
	QuickAll      QuickFilter = "all"
)

var QuickFilters = []QuickFilter{QuickAll, QuickToday, QuickTomorrow, QuickWeek, QuickOverdue}

func (q QuickFilter) IsValid() bool {
	switch q {
	case QuickToday, QuickTomorrow, QuickWeek, QuickOverdue, QuickAll:
		return true
	default:
		return false
	}
}

// Next cycles through QuickFilters; unknown values restart at all.
func (q QuickFilter) Next() QuickFilter {
	for i, f := range QuickFilters {
		if f == q {
			return QuickFilters[(i+1)%len(QuickFilters)]
		}
	}
	return QuickAll
}

func ParseQuickFilter(s string) (QuickFilter, error) {
	q := QuickFilter(s)
	if !q.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidQuickFilter, s)
	}
	return q, nil
}

// FilterState is persisted and reloaded verbatim with the snapshot.
type FilterState struct {
	Categories  []Category  `json:"categories"`
	Priorities  []Priority  `json:"priorities"`
	Statuses    []Status    `json:"statuses"`
	QuickFilter QuickFilter `json:"quickFilter"`
}

func DefaultFilterState() FilterState {
	return FilterState{
		Categories:  append([]Category(nil), KnownCategories...),
		Priorities:  append([]Priority(nil), KnownPriorities...),
		Statuses:    []Status{StatusActive},
		QuickFilter: QuickAll,
	}
}

func (f FilterState) Clone() FilterState {
	return FilterState{
		Categories:  append(make([]Category, 0, len(f.Categories)), f.Categories...),
		Priorities:  append(make([]Priority, 0, len(f.Priorities)), f.Priorities...),
		Statuses:    append(make([]Status, 0, len(f.Statuses)), f.Statuses...),
		QuickFilter: f.QuickFilter,
	}
}

func (f FilterState) Validate() error {
	for _, s := range f.Statuses {
		if !s.IsValid() {
			return fmt.Errorf("%w: %q", ErrInvalidStatus, s)
		}
	}
	if f.QuickFilter != "" && !f.QuickFilter.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidQuickFilter, f.QuickFilter)
	}
	return nil
}
