package journal

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Tiliavir/worktimer/internal/model"
	"github.com/Tiliavir/worktimer/internal/timecalc"
)

// StartOptions configures Start. A nil At means now.
type StartOptions struct {
	At        *timecalc.TimeOfDay
	ProjectID *int
	// Prompt asks the picker for a project when ProjectID is nil.
	Prompt bool
}

// Start begins a work block today. A fresh day's empty placeholder block is
// started in place; after a stopped block a new one is appended.
func (j *Journal) Start(ctx context.Context, opts StartOptions) (Estimate, error) {
	now := j.now()
	key, ts, err := j.load(now)
	if err != nil {
		return Estimate{}, err
	}
	day := ts.GetOrCreateToday(now)
	if last := day.LastBlock(); last != nil && last.IsOngoing() {
		return Estimate{}, ErrAlreadyStarted
	}
	project, err := j.resolveProject(ctx, opts.ProjectID, opts.Prompt, nil)
	if err != nil {
		return Estimate{}, err
	}

	at := j.at(opts.At)
	cur := day.CurrentBlock()
	if cur.Stopped() {
		cur = day.AppendBlock(model.WorkBlock{})
	}
	cur.SetStart(at)
	cur.SetProject(project)
	day.RecalcFlex(j.Settings.QuotaMinutes())

	if err := j.save(key, ts); err != nil {
		return Estimate{}, err
	}
	log.Debug("started work block",
		log.Field("date", day.Date),
		log.Field("start", at.Short()),
		log.Field("blocks", len(day.WorkBlocks)),
	)
	est, _ := j.EstimateEnd(day)
	return est, nil
}

// StopOptions configures Stop. A nil At means now; a nil Comment keeps the
// block's comment.
type StopOptions struct {
	At        *timecalc.TimeOfDay
	Comment   *string
	ProjectID *int
	Prompt    bool
}

// StopResult reports the day's flex after a stop.
type StopResult struct {
	FlexMinutes int
	// NoOp is set when the block was already stopped and nothing changed.
	NoOp bool
}

// Stop ends the current block. Stopping an already stopped block is a
// silent no-op that keeps the first stop time.
func (j *Journal) Stop(ctx context.Context, opts StopOptions) (StopResult, error) {
	now := j.now()
	key, ts, err := j.load(now)
	if err != nil {
		return StopResult{}, err
	}
	day, ok := ts.Days[timecalc.DateKey(now)]
	if !ok {
		return StopResult{}, ErrNotStarted
	}
	cur := day.LastBlock()
	if cur == nil || !cur.Started() {
		return StopResult{}, ErrNotStarted
	}
	if cur.Stopped() {
		return StopResult{FlexMinutes: day.FlexMinutes, NoOp: true}, nil
	}
	project, err := j.resolveProject(ctx, opts.ProjectID, opts.Prompt, cur.ProjectID)
	if err != nil {
		return StopResult{}, err
	}

	at := j.at(opts.At)
	cur.SetStop(at)
	if opts.Comment != nil {
		cur.SetComment(*opts.Comment)
	}
	cur.SetProject(project)
	day.RecalcFlex(j.Settings.QuotaMinutes())

	if err := j.save(key, ts); err != nil {
		return StopResult{}, err
	}
	log.Debug("stopped work block",
		log.Field("date", day.Date),
		log.Field("stop", at.Short()),
		log.Field("flex", day.FlexMinutes),
	)
	return StopResult{FlexMinutes: day.FlexMinutes}, nil
}

// SwitchOptions configures Switch. A nil At means now.
type SwitchOptions struct {
	At *timecalc.TimeOfDay
	// Prompt asks for the closed block's project and then the new block's.
	Prompt bool
}

// SwitchResult describes both blocks touched by a switch.
type SwitchResult struct {
	Closed      model.WorkBlock
	Started     model.WorkBlock
	FlexMinutes int
	Estimate    Estimate
}

// Switch stops the active block and starts a new one at the same time.
// Either both changes are persisted or none.
func (j *Journal) Switch(ctx context.Context, opts SwitchOptions) (SwitchResult, error) {
	now := j.now()
	key, ts, err := j.load(now)
	if err != nil {
		return SwitchResult{}, err
	}
	day, ok := ts.Days[timecalc.DateKey(now)]
	if !ok {
		return SwitchResult{}, ErrNoActiveBlock
	}
	cur := day.LastBlock()
	if cur == nil || !cur.IsOngoing() {
		return SwitchResult{}, ErrNoActiveBlock
	}
	at := j.at(opts.At)
	if at < *cur.Start {
		return SwitchResult{}, &SwitchTimeError{Start: *cur.Start, At: at}
	}

	closedProject, err := j.resolveProject(ctx, nil, opts.Prompt, cur.ProjectID)
	if err != nil {
		return SwitchResult{}, err
	}
	nextProject, err := j.resolveProject(ctx, nil, opts.Prompt, closedProject)
	if err != nil {
		return SwitchResult{}, err
	}

	cur.SetStop(at)
	cur.SetProject(closedProject)
	closed := *cur
	next := model.WorkBlock{}
	next.SetStart(at)
	next.SetProject(nextProject)
	day.AppendBlock(next)
	day.RecalcFlex(j.Settings.QuotaMinutes())

	if err := j.save(key, ts); err != nil {
		return SwitchResult{}, err
	}
	log.Debug("switched work block",
		log.Field("date", day.Date),
		log.Field("at", at.Short()),
		log.Field("flex", day.FlexMinutes),
	)
	est, _ := j.EstimateEnd(day)
	return SwitchResult{Closed: closed, Started: next, FlexMinutes: day.FlexMinutes, Estimate: est}, nil
}

// LunchResult reports the outcome of Lunch.
type LunchResult struct {
	Minutes int
	// Estimate is only meaningful while HasEstimate is set.
	Estimate    Estimate
	HasEstimate bool
	NoOp        bool
}

// Lunch records lunch on the current block. A nil mins uses the configured
// default. Once a day has lunch, further calls are no-ops.
func (j *Journal) Lunch(ctx context.Context, mins *int) (LunchResult, error) {
	m := j.Settings.DefaultLunchMinutes
	if mins != nil {
		m = *mins
	}
	if m < 0 {
		return LunchResult{}, invalidInput("lunch must not be negative, got %d", m)
	}
	now := j.now()
	key, ts, err := j.load(now)
	if err != nil {
		return LunchResult{}, err
	}
	day, ok := ts.Days[timecalc.DateKey(now)]
	if !ok {
		return LunchResult{}, ErrDayNotStarted
	}
	cur := day.LastBlock()
	if cur == nil || !cur.Started() {
		return LunchResult{}, ErrDayNotStarted
	}
	if day.Lunch() > 0 {
		return LunchResult{Minutes: day.Lunch(), NoOp: true}, nil
	}

	cur.SetLunch(m)
	day.RecalcFlex(j.Settings.QuotaMinutes())
	if err := j.save(key, ts); err != nil {
		return LunchResult{}, err
	}
	log.Debug("recorded lunch", log.Field("date", day.Date), log.Field("minutes", m))
	est, ok := j.EstimateEnd(day)
	return LunchResult{Minutes: m, Estimate: est, HasEstimate: ok}, nil
}

// SetTimeOff records approved time off for date, between zero and one full
// day's quota.
func (j *Journal) SetTimeOff(ctx context.Context, date time.Time, minutes int) (int, error) {
	quota := j.Settings.QuotaMinutes()
	if minutes < 0 || minutes > quota {
		return 0, invalidInput("time off must be between 0 and %d minutes inclusive, got %d", quota, minutes)
	}
	key, ts, err := j.load(date)
	if err != nil {
		return 0, err
	}
	day := ts.GetOrCreateDay(timecalc.DateKey(date))
	day.TimeOffMinutes = minutes
	day.RecalcFlex(quota)
	if err := j.save(key, ts); err != nil {
		return 0, err
	}
	log.Debug("set time off",
		log.Field("date", day.Date),
		log.Field("minutes", minutes),
		log.Field("flex", day.FlexMinutes),
	)
	return day.FlexMinutes, nil
}

// SetTimeOffHours is SetTimeOff for whole hours.
func (j *Journal) SetTimeOffHours(ctx context.Context, date time.Time, hours int) (int, error) {
	if hours < 0 || hours > j.Settings.WorkhoursPerDay {
		return 0, invalidInput("Invalid timeoff value, must be an int between 0 and %d inclusive.", j.Settings.WorkhoursPerDay)
	}
	return j.SetTimeOff(ctx, date, hours*60)
}

// SetTargetHours sets the current period's monthly target.
func (j *Journal) SetTargetHours(ctx context.Context, hours int) error {
	if hours < 0 {
		return invalidInput("target hours must not be negative, got %d", hours)
	}
	key, ts, err := j.load(j.now())
	if err != nil {
		return err
	}
	ts.TargetHours = hours
	if err := j.save(key, ts); err != nil {
		return err
	}
	log.Debug("set target hours", log.Field("period", key), log.Field("hours", hours))
	return nil
}

// SetComment replaces the comment of the ongoing block. Without one it
// returns ErrNoOngoingBlock; the timesheet is written either way.
func (j *Journal) SetComment(ctx context.Context, text string) error {
	now := j.now()
	key, ts, err := j.load(now)
	if err != nil {
		return err
	}
	day := ts.GetOrCreateToday(now)
	cur := day.LastBlock()
	applied := cur != nil && cur.IsOngoing()
	if applied {
		cur.SetComment(text)
	}
	if err := j.save(key, ts); err != nil {
		return err
	}
	if !applied {
		return ErrNoOngoingBlock
	}
	log.Debug("set comment", log.Field("date", day.Date))
	return nil
}

// RecalcOptions selects the periods Recalc rewrites. A zero Year means all.
type RecalcOptions struct {
	Year int
}

// Recalc recomputes the flex of every day in the selected periods and
// writes them back. It returns the rewritten period keys.
func (j *Journal) Recalc(ctx context.Context, opts RecalcOptions) ([]string, error) {
	keys, err := j.Store.Keys()
	if err != nil {
		return nil, fmt.Errorf("failed to list timesheets: %w", err)
	}
	prefix := ""
	if opts.Year != 0 {
		prefix = strconv.Itoa(opts.Year) + "-"
	}
	var done []string
	for _, key := range keys {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return done, err
		}
		ts, err := j.Store.LoadTimesheet(key)
		if err != nil {
			return done, fmt.Errorf("failed to load timesheet %s: %w", key, err)
		}
		ts.RecalcFlex(j.Settings.QuotaMinutes())
		if err := j.save(key, ts); err != nil {
			return done, err
		}
		log.Debug("recalculated flex", log.Field("period", key), log.Field("flex", ts.MonthlyFlex()))
		done = append(done, key)
	}
	return done, nil
}
