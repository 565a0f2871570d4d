package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/Tiliavir/worktimer/internal/model"
	"github.com/Tiliavir/worktimer/internal/timecalc"
)

// Now returns the journal clock's current time.
func (j *Journal) Now() time.Time { return j.now() }

// Timesheet loads the timesheet of the period containing t.
func (j *Journal) Timesheet(ctx context.Context, t time.Time) (*model.Timesheet, error) {
	_, ts, err := j.load(t)
	return ts, err
}

// Today returns today's day. Missing days are created in memory only.
func (j *Journal) Today(ctx context.Context) (*model.Day, error) {
	now := j.now()
	_, ts, err := j.load(now)
	if err != nil {
		return nil, err
	}
	return ts.GetOrCreateToday(now), nil
}

// Days returns every day in [from, to], loading each period it spans.
// Missing days are created in memory only and are not persisted.
func (j *Journal) Days(ctx context.Context, from, to time.Time) ([]*model.Day, error) {
	var (
		days   []*model.Day
		loaded = map[string]*model.Timesheet{}
	)
	for _, d := range timecalc.Days(from, to) {
		key := timecalc.PeriodKey(d)
		ts, ok := loaded[key]
		if !ok {
			var err error
			if _, ts, err = j.load(d); err != nil {
				return nil, err
			}
			loaded[key] = ts
		}
		days = append(days, ts.GetOrCreateDay(timecalc.DateKey(d)))
	}
	return days, nil
}

// TotalFlex sums the monthly flex of every stored period.
func (j *Journal) TotalFlex(ctx context.Context) (int, error) {
	keys, err := j.Store.Keys()
	if err != nil {
		return 0, fmt.Errorf("failed to list timesheets: %w", err)
	}
	total := 0
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		ts, err := j.Store.LoadTimesheet(key)
		if err != nil {
			return 0, fmt.Errorf("failed to load timesheet %s: %w", key, err)
		}
		total += ts.MonthlyFlex()
	}
	return total, nil
}
