package render_test

import (
	"strings"
	"testing"

	"github.com/Tiliavir/worktimer/internal/model"
	"github.com/Tiliavir/worktimer/internal/render"
	"github.com/Tiliavir/worktimer/internal/summary"
	"github.com/Tiliavir/worktimer/internal/timecalc"
)

func block(start, stop string, lunch int) model.WorkBlock {
	var b model.WorkBlock
	s, _ := timecalc.ParseTimeOfDay(start)
	b.SetStart(s)
	if stop != "" {
		e, _ := timecalc.ParseTimeOfDay(stop)
		b.SetStop(e)
	}
	b.SetLunch(lunch)
	return b
}

func TestDay(t *testing.T) {
	d := model.NewDay("2020-11-24")
	d.WorkBlocks = []model.WorkBlock{block("08:02", "14:21", 25), block("15:01", "17:27", 0)}
	d.RecalcFlex(480)

	got := render.Plain(nil).Day(d)
	want := strings.Join([]string{
		"2020-11-24 | worked time: 8h 20min | lunch: 25min | daily flex: 20min",
		"  08:02-14:21 => 6h 19min",
		"  15:01-17:27 => 2h 26min",
	}, "\n")
	if got != want {
		t.Errorf("Day =\n%s\nwant\n%s", got, want)
	}
}

func TestDayOngoing(t *testing.T) {
	d := model.NewDay("2020-11-24")
	d.WorkBlocks = []model.WorkBlock{block("08:02", "", 0)}
	d.RecalcFlex(480)

	got := render.Plain(nil).Day(d)
	want := "2020-11-24 | worked time: 0h 0min | lunch: 0min | daily flex: 0min\n  08:02-"
	if got != want {
		t.Errorf("Day =\n%s\nwant\n%s", got, want)
	}
}

func TestDayAnnotations(t *testing.T) {
	d := model.NewDay("2021-04-02")
	d.TimeOffMinutes = 240
	b := block("08:00", "12:02", 0)
	id := 2
	b.SetProject(&id)
	b.SetComment("release")
	d.WorkBlocks = []model.WorkBlock{b}
	d.RecalcFlex(480)

	got := render.Plain([]model.Project{{ID: 2, Name: "Beta"}}).Day(d)
	for _, want := range []string{"daily flex: 2min | time off: 4h 0min", "  08:00-12:02 => 4h 2min [Beta] release"} {
		if !strings.Contains(got, want) {
			t.Errorf("Day missing %q:\n%s", want, got)
		}
	}
}

func TestDaysWeek(t *testing.T) {
	mon := model.NewDay("2020-11-23")
	tue := model.NewDay("2020-11-24")
	tue.WorkBlocks = []model.WorkBlock{block("08:02", "16:30", 30)}
	tue.RecalcFlex(480)

	got := render.Plain(nil).Days([]*model.Day{mon, tue})
	want := strings.Join([]string{
		"2020-11-23 | worked time: 0h 0min | lunch: 0min | daily flex: 0min",
		"",
		"2020-11-24 | worked time: 7h 58min | lunch: 30min | daily flex: -2min",
		"  08:02-16:30 => 8h 28min",
	}, "\n")
	if got != want {
		t.Errorf("Days =\n%s\nwant\n%s", got, want)
	}
}

func TestBannerAndSummary(t *testing.T) {
	m := summary.Month{Label: "November 2020", WorkedMinutes: 500, FlexMinutes: 20, TargetHours: 167, ExpectedHours: 8}
	r := render.Plain(nil)

	want := "Worked 8h 20min of your 167 target hours for this month\nMonthly flex: 20min"
	if got := r.Banner(m); got != want {
		t.Errorf("Banner =\n%s\nwant\n%s", got, want)
	}

	got := r.Summary(summary.Overview{CurrentWeekFlex: -70, PreviousWeekFlex: 5, Month: m, TotalFlex: 125})
	for _, want := range []string{"Summary November 2020", "Flex this week:     -1h 10min", "Flex previous week: 5min", "(8.0h expected)", "Total flex:         2h 5min"} {
		if !strings.Contains(got, want) {
			t.Errorf("Summary missing %q:\n%s", want, got)
		}
	}
}

func TestProjectTable(t *testing.T) {
	tbl := summary.ProjectTable{
		Dates:     []string{"2020-11-23", "2020-11-24"},
		Rows:      []summary.ProjectRow{{ProjectID: 0, Name: summary.NoProjectName, Minutes: []int{90, 0}, Total: 90}},
		DayTotals: []int{90, 0},
		Total:     90,
	}
	got := render.Plain(nil).ProjectTable(tbl)
	for _, want := range []string{"Project", "11-23", "11-24", "No project", "1h 30min", "Total"} {
		if !strings.Contains(got, want) {
			t.Errorf("table missing %q:\n%s", want, got)
		}
	}
}
