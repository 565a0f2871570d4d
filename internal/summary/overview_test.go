package summary_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Tiliavir/worktimer/internal/model"
	"github.com/Tiliavir/worktimer/internal/summary"
	"github.com/Tiliavir/worktimer/internal/timecalc"
)

type fakeSource struct {
	now   time.Time
	ts    *model.Timesheet
	total int
	err   error
}

func (f *fakeSource) Now() time.Time { return f.now }

func (f *fakeSource) Timesheet(ctx context.Context, t time.Time) (*model.Timesheet, error) {
	return f.ts, nil
}

func (f *fakeSource) Days(ctx context.Context, from, to time.Time) ([]*model.Day, error) {
	if f.err != nil {
		return nil, f.err
	}
	var days []*model.Day
	for _, d := range timecalc.Days(from, to) {
		days = append(days, f.ts.GetOrCreateDay(timecalc.DateKey(d)))
	}
	return days, nil
}

func (f *fakeSource) TotalFlex(ctx context.Context) (int, error) { return f.total, nil }

func TestLoadOverview(t *testing.T) {
	ts := model.NewTimesheet(160)
	prev := ts.GetOrCreateDay("2020-11-17")
	prev.WorkBlocks = []model.WorkBlock{block("08:00", "16:45", 30, nil)}
	cur := ts.GetOrCreateDay("2020-11-23")
	cur.WorkBlocks = []model.WorkBlock{block("08:00", "16:10", 30, nil)}
	today := ts.GetOrCreateDay("2020-11-25")
	today.WorkBlocks = []model.WorkBlock{block("08:00", "", 0, nil)}
	ts.RecalcFlex(quota)

	src := &fakeSource{
		now:   time.Date(2020, 11, 25, 12, 0, 0, 0, time.Local),
		ts:    ts,
		total: 100,
	}
	o, err := summary.Load(context.Background(), src, quota)
	if err != nil {
		t.Fatal(err)
	}
	if o.CurrentWeekFlex != -20 {
		t.Errorf("CurrentWeekFlex = %d, want -20", o.CurrentWeekFlex)
	}
	if o.PreviousWeekFlex != 15 {
		t.Errorf("PreviousWeekFlex = %d, want 15", o.PreviousWeekFlex)
	}
	if o.Month.Label != "November 2020" || o.Month.FlexMinutes != -5 || o.Month.TargetHours != 160 {
		t.Errorf("Month = %+v", o.Month)
	}
	if o.TotalFlex != 100 {
		t.Errorf("TotalFlex = %d, want 100", o.TotalFlex)
	}
}

func TestLoadOverviewError(t *testing.T) {
	boom := errors.New("boom")
	src := &fakeSource{now: time.Now(), ts: model.NewTimesheet(160), err: boom}
	if _, err := summary.Load(context.Background(), src, quota); !errors.Is(err, boom) {
		t.Errorf("error = %v, want boom", err)
	}
}
