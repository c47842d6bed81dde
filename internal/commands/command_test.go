package commands

import (
	"errors"
	"testing"
	"time"

	"github.com/sandeepkv93/daybook/internal/model"
)

var now = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

func TestParseSupportedCommands(t *testing.T) {
	cases := []struct {
		in       string
		typeWant Type
	}{
		{"/add pay rent", TypeAdd},
		{"done 1710061200000", TypeDone},
		{"delete 42", TypeDelete},
		{"restore 42", TypeRestore},
		{"filter week", TypeFilter},
		{"note @tomorrow dentist at 3", TypeNote},
		{"SYNC", TypeSync},
	}

	for _, tc := range cases {
		cmd, err := Parse(tc.in, now)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if cmd.Type != tc.typeWant {
			t.Fatalf("parse %q type = %s, want %s", tc.in, cmd.Type, tc.typeWant)
		}
	}
}

func TestParseAddModifiers(t *testing.T) {
	cmd, err := Parse("add pay #Work rent !high @tomorrow ^09:30 ~15", now)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := AddArgs{
		Text:     "pay rent",
		Category: model.CategoryWork,
		Priority: model.PriorityHigh,
		Date:     "2024-03-11",
		Time:     "09:30",
		Reminder: 15,
	}
	if *cmd.Add != want {
		t.Fatalf("got %+v, want %+v", *cmd.Add, want)
	}
	if d := cmd.Add.Draft(); d.Text != "pay rent" || d.Reminder != 15 {
		t.Fatalf("unexpected draft %+v", d)
	}

	cmd, err = Parse("add call mom @2024-04-01", now)
	if err != nil || cmd.Add.Date != "2024-04-01" {
		t.Fatalf("explicit date: %+v %v", cmd.Add, err)
	}
}

func TestParseInvalidArguments(t *testing.T) {
	for _, in := range []string{
		"add",
		"add #work !low",
		"add x !urgent",
		"add x @next-week",
		"add x ^25:00",
		"add x ~soon",
		"done",
		"done 1 2",
		"filter someday",
		"note 2024-03-10",
		"sync now",
	} {
		_, err := Parse(in, now)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeInvalidArgument {
			t.Fatalf("parse %q: expected invalid argument, got %v", in, err)
		}
	}
}

func TestParseEmptyAndUnknown(t *testing.T) {
	var ce *CommandError
	if _, err := Parse("  / ", now); !errors.As(err, &ce) || ce.Code != ErrCodeEmptyInput {
		t.Fatalf("expected empty input, got %v", err)
	}
	if _, err := Parse("/unknown do x", now); !errors.As(err, &ce) || ce.Code != ErrCodeUnknownCommand {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestExecuteDispatch(t *testing.T) {
	cmd, err := Parse("/add write docs", now)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	called := false
	res, err := Execute(cmd, Handlers{
		Add: func(a AddArgs) (Result, error) {
			called = true
			if a.Text != "write docs" {
				t.Fatalf("unexpected text: %q", a.Text)
			}
			return Result{Message: "ok"}, nil
		},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !called || res.Message != "ok" {
		t.Fatalf("dispatch failed, called=%v res=%+v", called, res)
	}

	cmd, _ = Parse("restore 7", now)
	res, err = Execute(cmd, Handlers{
		Restore: func(a TargetArgs) (Result, error) { return Result{Message: "restored " + a.ID}, nil },
	})
	if err != nil || res.Message != "restored 7" {
		t.Fatalf("restore dispatch: %+v %v", res, err)
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	cmd, err := Parse("done 3", now)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	_, err = Execute(cmd, Handlers{Delete: func(TargetArgs) (Result, error) { return Result{}, nil }})
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeHandlerMissing {
		t.Fatalf("expected missing handler error, got %v", err)
	}
}
