// Package commands parses the one-line palette grammar and dispatches it.
package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sandeepkv93/daybook/internal/model"
)

type Type string

const (
	TypeAdd     Type = "add"
	TypeDone    Type = "done"
	TypeDelete  Type = "delete"
	TypeRestore Type = "restore"
	TypeFilter  Type = "filter"
	TypeNote    Type = "note"
	TypeSync    Type = "sync"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalid(format string, args ...any) error {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// AddArgs carries a parsed add command. Date is already resolved to YYYY-MM-DD.
type AddArgs struct {
	Text     string
	Category model.Category
	Priority model.Priority
	Date     string
	Time     string
	Reminder int
}

func (a AddArgs) Draft() model.Draft {
	return model.Draft{
		Text:     a.Text,
		Category: a.Category,
		Priority: a.Priority,
		Date:     a.Date,
		Time:     a.Time,
		Reminder: a.Reminder,
	}
}

// TargetArgs names one task by id.
type TargetArgs struct {
	ID string
}

type FilterArgs struct {
	Quick model.QuickFilter
}

type NoteArgs struct {
	Date string
	Text string
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Target *TargetArgs
	Filter *FilterArgs
	Note   *NoteArgs
}

// Parse reads one palette line. now resolves @today and @tomorrow.
func Parse(input string, now time.Time) (Command, error) {
	raw := strings.TrimSpace(input)
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args, now)
	case TypeDone, TypeDelete, TypeRestore:
		return parseTarget(input, Type(head), args)
	case TypeFilter:
		return parseFilter(input, args)
	case TypeNote:
		return parseNote(input, args, now)
	case TypeSync:
		if len(args) > 0 {
			return Command{}, invalid("sync takes no arguments")
		}
		return Command{Type: TypeSync, Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

// parseAdd accepts modifiers anywhere after the verb:
// #category !priority @date ^HH:MM ~minutes. Everything else is text.
func parseAdd(raw string, args []string, now time.Time) (Command, error) {
	out := AddArgs{}
	words := make([]string, 0, len(args))
	for _, arg := range args {
		if len(arg) < 2 {
			words = append(words, arg)
			continue
		}
		value := arg[1:]
		switch arg[0] {
		case '#':
			out.Category = model.Category(strings.ToLower(value))
		case '!':
			p := model.Priority(strings.ToLower(value))
			if !p.IsValid() {
				return Command{}, invalid("unknown priority %q", value)
			}
			out.Priority = p
		case '@':
			date, err := ResolveDate(value, now)
			if err != nil {
				return Command{}, err
			}
			out.Date = date
		case '^':
			if _, err := model.ParseClock(value); err != nil {
				return Command{}, invalid("time must be HH:MM, got %q", value)
			}
			out.Time = value
		case '~':
			mins, err := strconv.Atoi(strings.TrimSuffix(value, "m"))
			if err != nil || mins < 0 {
				return Command{}, invalid("reminder must be minutes, got %q", value)
			}
			out.Reminder = mins
		default:
			words = append(words, arg)
		}
	}
	out.Text = strings.TrimSpace(strings.Join(words, " "))
	if out.Text == "" {
		return Command{}, invalid("add requires text")
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &out}, nil
}

// ResolveDate accepts YYYY-MM-DD, today or tomorrow relative to now.
func ResolveDate(value string, now time.Time) (string, error) {
	switch strings.ToLower(value) {
	case "today":
		return model.FormatDate(now), nil
	case "tomorrow":
		return model.FormatDate(model.AddDays(now, 1)), nil
	}
	if _, err := model.ParseDate(value, now.Location()); err != nil {
		return "", invalid("date must be YYYY-MM-DD, today or tomorrow, got %q", value)
	}
	return value, nil
}

func parseTarget(raw string, typ Type, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("%s requires exactly one task id", typ)
	}
	return Command{Type: typ, Raw: raw, Target: &TargetArgs{ID: args[0]}}, nil
}

func parseFilter(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("filter requires one of today, tomorrow, week, overdue, all")
	}
	q, err := model.ParseQuickFilter(strings.ToLower(args[0]))
	if err != nil {
		return Command{}, invalid("%v", err)
	}
	return Command{Type: TypeFilter, Raw: raw, Filter: &FilterArgs{Quick: q}}, nil
}

func parseNote(raw string, args []string, now time.Time) (Command, error) {
	if len(args) < 2 {
		return Command{}, invalid("note requires a date and text")
	}
	date, err := ResolveDate(strings.TrimPrefix(args[0], "@"), now)
	if err != nil {
		return Command{}, err
	}
	return Command{Type: TypeNote, Raw: raw, Note: &NoteArgs{Date: date, Text: strings.Join(args[1:], " ")}}, nil
}
