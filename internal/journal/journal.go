// Package journal implements the operations that move a day's work blocks
// through their states and keep the flex balance current.
package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brimstone/logger"

	"github.com/Tiliavir/worktimer/internal/model"
	"github.com/Tiliavir/worktimer/internal/timecalc"
)

var log = logger.New()

// Store persists one timesheet per accounting period.
type Store interface {
	LoadTimesheet(key string) (*model.Timesheet, error)
	SaveTimesheet(key string, ts *model.Timesheet) error
	Keys() ([]string, error)
}

// ProjectDirectory looks up projects for tagging work blocks.
type ProjectDirectory interface {
	LoadProjects() ([]model.Project, error)
	GetProject(id int) (model.Project, error)
}

// ProjectPicker asks the user for a project. A nil result means no project.
type ProjectPicker interface {
	Pick(ctx context.Context, projects []model.Project, defaultID *int) (*int, error)
}

// Clock supplies the current wall-clock time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// Settings holds the configured quota and defaults.
type Settings struct {
	WorkhoursPerDay     int
	DefaultLunchMinutes int
}

// QuotaMinutes is the expected work per weekday.
func (s Settings) QuotaMinutes() int { return s.WorkhoursPerDay * 60 }

// Journal applies operations to the timesheets held by Store. Projects and
// Picker are optional; without them no project is ever assigned.
type Journal struct {
	Settings Settings
	Store    Store
	Projects ProjectDirectory
	Picker   ProjectPicker
	Clock    Clock
}

// New returns a Journal reading the system clock.
func New(settings Settings, store Store) *Journal {
	return &Journal{Settings: settings, Store: store, Clock: SystemClock{}}
}

var (
	// ErrInvalidTransition is wrapped by every rejected state change.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrInvalidInput is wrapped by every validation failure.
	ErrInvalidInput = errors.New("invalid input")

	ErrAlreadyStarted = transitionError("Workblock already started, stop it before starting another one")
	ErrNotStarted     = transitionError("Could not stop workblock, is your last workblock started?")
	ErrDayNotStarted  = transitionError("Could not find today in timesheet, did you start the day?")
	ErrNoActiveBlock  = transitionError("No active workblock to switch from, start one first")
	ErrNoOngoingBlock = transitionError("No ongoing workblock to comment on")
)

type transitionError string

func (e transitionError) Error() string { return string(e) }

func (e transitionError) Unwrap() error { return ErrInvalidTransition }

// SwitchTimeError rejects a switch to a time before the active block started.
type SwitchTimeError struct {
	Start timecalc.TimeOfDay
	At    timecalc.TimeOfDay
}

func (e *SwitchTimeError) Error() string {
	return fmt.Sprintf("cannot switch at %s, the active workblock started at %s", e.At.Short(), e.Start.Short())
}

func (e *SwitchTimeError) Unwrap() error { return ErrInvalidTransition }

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func (j *Journal) now() time.Time {
	if j.Clock == nil {
		return time.Now()
	}
	return j.Clock.Now()
}

// at returns the explicit time if given, else the current time of day.
func (j *Journal) at(t *timecalc.TimeOfDay) timecalc.TimeOfDay {
	if t != nil {
		return *t
	}
	return timecalc.TimeOfDayOf(j.now())
}

func (j *Journal) load(t time.Time) (string, *model.Timesheet, error) {
	key := timecalc.PeriodKey(t)
	ts, err := j.Store.LoadTimesheet(key)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load timesheet %s: %w", key, err)
	}
	return key, ts, nil
}

func (j *Journal) save(key string, ts *model.Timesheet) error {
	if err := j.Store.SaveTimesheet(key, ts); err != nil {
		return fmt.Errorf("failed to save timesheet %s: %w", key, err)
	}
	return nil
}

// resolveProject returns the explicit project if one is given, otherwise
// asks the picker when prompt is set and active projects exist. All prompts
// happen before any mutation.
func (j *Journal) resolveProject(ctx context.Context, explicit *int, prompt bool, def *int) (*int, error) {
	if explicit != nil {
		if *explicit == model.NoProject {
			return nil, nil
		}
		if j.Projects == nil {
			return nil, invalidInput("project %d: no project directory", *explicit)
		}
		p, err := j.Projects.GetProject(*explicit)
		if err != nil {
			return nil, err
		}
		if p.Deleted {
			return nil, invalidInput("project %d (%s) is deleted", p.ID, p.Name)
		}
		id := p.ID
		return &id, nil
	}
	if !prompt || j.Projects == nil || j.Picker == nil {
		return def, nil
	}
	projects, err := j.Projects.LoadProjects()
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}
	active := model.ActiveProjects(projects)
	if len(active) == 0 {
		return def, nil
	}
	id, err := j.Picker.Pick(ctx, active, def)
	if err != nil {
		return nil, fmt.Errorf("project selection: %w", err)
	}
	return id, nil
}
