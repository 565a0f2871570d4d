package summary

import (
	"context"
	"time"

	"github.com/Tiliavir/worktimer/internal/model"
	"github.com/Tiliavir/worktimer/internal/timecalc"
)

// Source is the part of the journal an overview reads from.
type Source interface {
	Now() time.Time
	Timesheet(ctx context.Context, t time.Time) (*model.Timesheet, error)
	Days(ctx context.Context, from, to time.Time) ([]*model.Day, error)
	TotalFlex(ctx context.Context) (int, error)
}

// Overview holds the weekly, monthly and total figures.
type Overview struct {
	CurrentWeekFlex  int
	PreviousWeekFlex int
	Month            Month
	TotalFlex        int
}

// Load computes the overview for the source's current date.
func Load(ctx context.Context, src Source, quotaMinutes int) (Overview, error) {
	now := src.Now()
	var o Overview

	from, to := timecalc.CurrentWeek(now)
	days, err := src.Days(ctx, from, to)
	if err != nil {
		return o, err
	}
	o.CurrentWeekFlex = Flex(days)

	from, to = timecalc.PreviousWeek(now)
	if days, err = src.Days(ctx, from, to); err != nil {
		return o, err
	}
	o.PreviousWeekFlex = Flex(days)

	ts, err := src.Timesheet(ctx, now)
	if err != nil {
		return o, err
	}
	o.Month = MonthOf(ts, now, quotaMinutes)

	if o.TotalFlex, err = src.TotalFlex(ctx); err != nil {
		return o, err
	}
	return o, nil
}
