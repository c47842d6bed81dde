package update

import (
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/sandeepkv93/daybook/internal/app"
	"github.com/sandeepkv93/daybook/internal/model"
	"github.com/sandeepkv93/daybook/internal/scheduler"
)

type View string

const (
	ViewTasks    View = "Tasks"
	ViewArchive  View = "Archive"
	ViewCalendar View = "Calendar"
	ViewStats    View = "Stats"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Tasks    string
	Archive  string
	Calendar string
	Stats    string
	Palette  string
	Sync     string
	Help     string
	Quit     string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type CalendarState struct {
	FocusDate time.Time
	Cursor    int
}

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
}

type Model struct {
	svc            *app.Service
	CurrentView    View
	SelectedTaskID string
	TaskCursor     int
	ArchiveCursor  int
	Calendar       CalendarState
	Scheduler      *scheduler.Engine
	ReminderLog    []scheduler.Reminder
	Palette        CommandPaletteState
	HelpVisible    bool
	Syncing        bool
	Notifications  []Notification
	DesktopEnabled bool
	notifier       DesktopNotifier
	Status         StatusBar
	Keys           GlobalKeyMap
	Quitting       bool
	LastError      error
	width          int

	commandInput textinput.Model
	syncSpinner  spinner.Model
	helpModel    help.Model
}

type Options struct {
	Scheduler      *scheduler.Engine
	Notifier       DesktopNotifier
	DesktopEnabled bool
}

type DesktopNotifier interface {
	Send(Notification) error
}

type NoopDesktopNotifier struct{}

func (NoopDesktopNotifier) Send(Notification) error { return nil }

type ExecDesktopNotifier struct{}

func (ExecDesktopNotifier) Send(n Notification) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", n.Title, n.Body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// SyncResultMsg carries a finished pull back to the update loop, which is the
// only place allowed to apply it.
type SyncResultMsg struct {
	Tasks []model.Task
	Err   error
}

type PushResultMsg struct {
	TaskID string
	Err    error
}

type ReminderDueMsg struct {
	Reminder scheduler.Reminder
}

func NewModel(svc *app.Service, opts Options) Model {
	m := Model{
		svc:            svc,
		CurrentView:    ViewTasks,
		Scheduler:      opts.Scheduler,
		DesktopEnabled: opts.DesktopEnabled,
		notifier:       NoopDesktopNotifier{},
		Calendar:       CalendarState{FocusDate: model.Midnight(svc.Now())},
		Keys: GlobalKeyMap{
			Tasks:    "1",
			Archive:  "2",
			Calendar: "3",
			Stats:    "4",
			Palette:  ":",
			Sync:     "s",
			Help:     "?",
			Quit:     "q",
		},
	}
	if opts.Notifier != nil {
		m.notifier = opts.Notifier
	}
	m.initBubbleComponents()
	m.syncSelection()
	m.rearmReminders()
	return m
}

func (m *Model) initBubbleComponents() {
	m.commandInput = textinput.New()
	m.commandInput.Placeholder = "add pay rent #personal !high @tomorrow ^09:00 ~15"
	m.commandInput.Prompt = ": "
	m.commandInput.CharLimit = 256

	m.syncSpinner = spinner.New()
	m.syncSpinner.Spinner = spinner.Dot

	m.helpModel = help.New()
	m.helpModel.ShowAll = true
}
