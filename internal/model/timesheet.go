package model

import (
	"sort"
	"time"

	"github.com/Tiliavir/worktimer/internal/timecalc"
)

// DefaultTargetHours is the monthly target used for new timesheets.
const DefaultTargetHours = 167

// Timesheet is the top-level structure stored for one accounting period.
type Timesheet struct {
	Days        map[string]*Day `json:"days"`
	TargetHours int             `json:"target_hours"`
}

// NewTimesheet returns an empty timesheet.
func NewTimesheet(targetHours int) *Timesheet {
	return &Timesheet{Days: map[string]*Day{}, TargetHours: targetHours}
}

// GetOrCreateDay returns the day for key, adding an empty one if absent.
func (ts *Timesheet) GetOrCreateDay(key string) *Day {
	if ts.Days == nil {
		ts.Days = map[string]*Day{}
	}
	d, ok := ts.Days[key]
	if !ok {
		d = NewDay(key)
		ts.Days[key] = d
	}
	return d
}

// GetOrCreateToday returns the day for now's date, adding it if absent.
func (ts *Timesheet) GetOrCreateToday(now time.Time) *Day {
	return ts.GetOrCreateDay(timecalc.DateKey(now))
}

// GetOrCreateDays returns the days in [from, to], adding every missing one.
func (ts *Timesheet) GetOrCreateDays(from, to time.Time) []*Day {
	var days []*Day
	for _, d := range timecalc.Days(from, to) {
		days = append(days, ts.GetOrCreateDay(timecalc.DateKey(d)))
	}
	return days
}

// SortedDays returns all days ordered by date.
func (ts *Timesheet) SortedDays() []*Day {
	keys := make([]string, 0, len(ts.Days))
	for k := range ts.Days {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	days := make([]*Day, 0, len(keys))
	for _, k := range keys {
		days = append(days, ts.Days[k])
	}
	return days
}

// MonthlyFlex sums FlexMinutes over every day in the timesheet.
func (ts *Timesheet) MonthlyFlex() int {
	total := 0
	for _, d := range ts.Days {
		total += d.FlexMinutes
	}
	return total
}

// WorkedTime sums the worked time over every day in the timesheet.
func (ts *Timesheet) WorkedTime() int {
	total := 0
	for _, d := range ts.Days {
		total += d.WorkedTime()
	}
	return total
}

// RecalcFlex recomputes the flex of every day.
func (ts *Timesheet) RecalcFlex(quotaMinutes int) {
	for _, d := range ts.Days {
		d.RecalcFlex(quotaMinutes)
	}
}
