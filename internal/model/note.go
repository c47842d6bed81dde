package model

import (
	"errors"
	"strings"
	"time"
)

const DefaultNoteColor = "yellow"

// CalendarNote is a free-text note pinned to a calendar date. It shares only the
// date value with tasks.
type CalendarNote struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Color     string    `json:"color"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"createdAt"`
}

func (n CalendarNote) Validate() error {
	if strings.TrimSpace(n.ID) == "" {
		return errors.New("model: note id is required")
	}
	if strings.TrimSpace(n.Text) == "" {
		return &ValidationError{Field: "text", Err: errors.New("model: note text is required")}
	}
	if _, err := ParseDate(n.Date, time.UTC); err != nil {
		return &ValidationError{Field: "date", Err: err}
	}
	return nil
}
