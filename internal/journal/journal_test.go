package journal_test

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/Tiliavir/worktimer/internal/journal"
	"github.com/Tiliavir/worktimer/internal/model"
	"github.com/Tiliavir/worktimer/internal/storage"
	"github.com/Tiliavir/worktimer/internal/timecalc"
)

// memStore keeps serialized timesheets so tests can compare persisted state.
type memStore struct {
	data  map[string][]byte
	saves int
}

func newMemStore() *memStore { return &memStore{data: map[string][]byte{}} }

func (m *memStore) LoadTimesheet(key string) (*model.Timesheet, error) {
	data, ok := m.data[key]
	if !ok {
		ts := model.NewTimesheet(model.DefaultTargetHours)
		return ts, m.SaveTimesheet(key, ts)
	}
	var ts model.Timesheet
	if err := json.Unmarshal(data, &ts); err != nil {
		return nil, err
	}
	return &ts, nil
}

func (m *memStore) SaveTimesheet(key string, ts *model.Timesheet) error {
	data, err := json.Marshal(ts)
	if err != nil {
		return err
	}
	m.data[key] = data
	m.saves++
	return nil
}

func (m *memStore) Keys() ([]string, error) {
	var keys []string
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

type projectList []model.Project

func (p projectList) LoadProjects() ([]model.Project, error) { return p, nil }

func (p projectList) GetProject(id int) (model.Project, error) {
	for _, pr := range p {
		if pr.ID == id {
			return pr, nil
		}
	}
	return model.Project{}, storage.ErrNotFound
}

// scriptedPicker answers prompts from a fixed list of results.
type scriptedPicker struct {
	answers []*int
	errs    []error
	calls   int
}

func (s *scriptedPicker) Pick(_ context.Context, _ []model.Project, _ *int) (*int, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i < len(s.answers) {
		return s.answers[i], nil
	}
	return nil, nil
}

var settings = journal.Settings{WorkhoursPerDay: 8, DefaultLunchMinutes: 30}

func newJournal(t *testing.T, day string) (*journal.Journal, *memStore) {
	t.Helper()
	store := newMemStore()
	j := journal.New(settings, store)
	setDay(t, j, day)
	return j, store
}

func setDay(t *testing.T, j *journal.Journal, day string) {
	t.Helper()
	d, err := time.ParseInLocation(timecalc.DateLayout, day, time.Local)
	if err != nil {
		t.Fatal(err)
	}
	j.Clock = journal.FixedClock(d.Add(12 * time.Hour))
}

func at(s string) *timecalc.TimeOfDay {
	t, err := timecalc.ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return &t
}

func intp(i int) *int { return &i }

func today(t *testing.T, j *journal.Journal) *model.Day {
	t.Helper()
	d, err := j.Today(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func mustStart(t *testing.T, j *journal.Journal, s string) journal.Estimate {
	t.Helper()
	est, err := j.Start(context.Background(), journal.StartOptions{At: at(s)})
	if err != nil {
		t.Fatalf("start %s: %v", s, err)
	}
	return est
}

func mustStop(t *testing.T, j *journal.Journal, s string) journal.StopResult {
	t.Helper()
	res, err := j.Stop(context.Background(), journal.StopOptions{At: at(s)})
	if err != nil {
		t.Fatalf("stop %s: %v", s, err)
	}
	return res
}

func TestFlexWithDefaultLunch(t *testing.T) {
	tests := []struct {
		stop string
		flex int
	}{
		{"16:30", 0},
		{"16:32", 2},
		{"16:27", -3},
	}
	for _, tt := range tests {
		t.Run(tt.stop, func(t *testing.T) {
			j, _ := newJournal(t, "2020-09-23") // A Wednesday
			est := mustStart(t, j, "08:00")
			want := "Estimated end time for today with 30 min lunch is 16:30:00"
			if est.String() != want {
				t.Errorf("start estimate = %q, want %q", est, want)
			}
			lunch, err := j.Lunch(context.Background(), nil)
			if err != nil {
				t.Fatal(err)
			}
			if !lunch.HasEstimate || lunch.Estimate.String() != want {
				t.Errorf("lunch estimate = %q, want %q", lunch.Estimate, want)
			}
			res := mustStop(t, j, tt.stop)
			if res.FlexMinutes != tt.flex {
				t.Errorf("flex = %d, want %d", res.FlexMinutes, tt.flex)
			}
			if got := today(t, j).FlexMinutes; got != tt.flex {
				t.Errorf("persisted flex = %d, want %d", got, tt.flex)
			}
		})
	}
}

func TestMultipleStartAndStop(t *testing.T) {
	j, _ := newJournal(t, "2020-09-25") // A Friday
	steps := []struct {
		start, stop string
		end         string
		flex        int
	}{
		{"08:30", "09:00", "17:00:00", -7*60 - 30},
		{"10:30", "12:00", "18:30:00", -6 * 60},
		{"13:00", "19:00", "19:30:00", 0},
		{"19:30", "19:35", "20:00:00", 5},
	}
	for _, s := range steps {
		est := mustStart(t, j, s.start)
		if est.End.String() != s.end || est.LunchMinutes != 30 {
			t.Errorf("start %s: estimate %q, want end %s", s.start, est, s.end)
		}
		if res := mustStop(t, j, s.stop); res.FlexMinutes != s.flex {
			t.Errorf("stop %s: flex = %d, want %d", s.stop, res.FlexMinutes, s.flex)
		}
	}
	if n := len(today(t, j).WorkBlocks); n != 4 {
		t.Errorf("blocks = %d, want 4", n)
	}
}

func TestStartWhileStartedIsRejected(t *testing.T) {
	j, store := newJournal(t, "2020-09-23")
	mustStart(t, j, "08:00")
	before := string(store.data["2020-09"])
	saves := store.saves

	_, err := j.Start(context.Background(), journal.StartOptions{At: at("08:01")})
	if !errors.Is(err, journal.ErrAlreadyStarted) || !errors.Is(err, journal.ErrInvalidTransition) {
		t.Fatalf("second start error = %v, want ErrAlreadyStarted", err)
	}
	if err.Error() != "Workblock already started, stop it before starting another one" {
		t.Errorf("message = %q", err)
	}
	if store.saves != saves || string(store.data["2020-09"]) != before {
		t.Error("rejected start must not write")
	}
	if n := len(today(t, j).WorkBlocks); n != 1 {
		t.Errorf("blocks = %d, want 1", n)
	}
}

func TestStop(t *testing.T) {
	j, _ := newJournal(t, "2020-09-23")

	if _, err := j.Stop(context.Background(), journal.StopOptions{At: at("09:00")}); !errors.Is(err, journal.ErrNotStarted) {
		t.Fatalf("stop before start error = %v, want ErrNotStarted", err)
	}

	mustStart(t, j, "08:00")
	comment := "first"
	if _, err := j.Stop(context.Background(), journal.StopOptions{At: at("08:07"), Comment: &comment}); err != nil {
		t.Fatal(err)
	}
	res, err := j.Stop(context.Background(), journal.StopOptions{At: at("09:00")})
	if err != nil {
		t.Fatalf("second stop: %v", err)
	}
	if !res.NoOp {
		t.Error("second stop should be a no-op")
	}
	last := today(t, j).LastBlock()
	if last.Stop.Short() != "08:07" {
		t.Errorf("stop = %s, want first stop 08:07", last.Stop.Short())
	}
	if last.Comment == nil || *last.Comment != "first" {
		t.Errorf("comment = %v, want first", last.Comment)
	}
}

func TestLunch(t *testing.T) {
	j, _ := newJournal(t, "2020-09-23")

	_, err := j.Lunch(context.Background(), nil)
	if !errors.Is(err, journal.ErrDayNotStarted) {
		t.Fatalf("lunch before start error = %v, want ErrDayNotStarted", err)
	}
	if err.Error() != "Could not find today in timesheet, did you start the day?" {
		t.Errorf("message = %q", err)
	}

	mustStart(t, j, "08:00")
	if _, err := j.Lunch(context.Background(), intp(-5)); !errors.Is(err, journal.ErrInvalidInput) {
		t.Errorf("negative lunch error = %v, want ErrInvalidInput", err)
	}
	if _, err := j.Lunch(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	res, err := j.Lunch(context.Background(), intp(25))
	if err != nil {
		t.Fatal(err)
	}
	if !res.NoOp || today(t, j).Lunch() != 30 {
		t.Errorf("second lunch: noop = %v lunch = %d, want first lunch 30 kept", res.NoOp, today(t, j).Lunch())
	}
}

func TestLunchAfterSwitchEstimatesOwedLunch(t *testing.T) {
	j, _ := newJournal(t, "2020-11-25")
	mustStart(t, j, "08:00")
	if _, err := j.Switch(context.Background(), journal.SwitchOptions{At: at("10:00")}); err != nil {
		t.Fatal(err)
	}
	res, err := j.Lunch(context.Background(), intp(45))
	if err != nil {
		t.Fatal(err)
	}
	// 10:00 + (480 - 120) + 45
	if res.Estimate.String() != "Estimated end time for today with 45 min lunch is 16:45:00" {
		t.Errorf("estimate = %q", res.Estimate)
	}
}

func TestTimeOff(t *testing.T) {
	j, store := newJournal(t, "2021-04-02") // A Friday
	ctx := context.Background()
	date := j.Now()

	if _, err := j.SetTimeOffHours(ctx, date, 9); !errors.Is(err, journal.ErrInvalidInput) {
		t.Fatalf("timeoff 9 error = %v, want ErrInvalidInput", err)
	}
	if store.saves != 0 {
		t.Error("rejected timeoff must not write")
	}
	if _, err := j.SetTimeOff(ctx, date, -1); !errors.Is(err, journal.ErrInvalidInput) {
		t.Errorf("negative timeoff error = %v, want ErrInvalidInput", err)
	}

	if _, err := j.SetTimeOffHours(ctx, date, 4); err != nil {
		t.Fatal(err)
	}
	est := mustStart(t, j, "08:00")
	if est.End.Short() != "12:30" {
		t.Errorf("estimated end with 4h off = %s, want 12:30", est.End.Short())
	}
	if res := mustStop(t, j, "12:02"); res.FlexMinutes != 2 {
		t.Errorf("flex = %d, want 2", res.FlexMinutes)
	}
}

func TestTimeOffOtherDate(t *testing.T) {
	j, _ := newJournal(t, "2021-04-02")
	ctx := context.Background()
	other := time.Date(2021, 3, 31, 0, 0, 0, 0, time.Local)
	flex, err := j.SetTimeOff(ctx, other, 480)
	if err != nil {
		t.Fatal(err)
	}
	if flex != 0 {
		t.Errorf("full day off flex = %d, want 0", flex)
	}
	ts, err := j.Timesheet(ctx, other)
	if err != nil {
		t.Fatal(err)
	}
	if ts.Days["2021-03-31"].TimeOffMinutes != 480 {
		t.Error("time off should be stored in the March timesheet")
	}
}

func TestSwitch(t *testing.T) {
	ctx := context.Background()

	t.Run("without active block", func(t *testing.T) {
		j, _ := newJournal(t, "2020-11-24")
		if _, err := j.Switch(ctx, journal.SwitchOptions{At: at("10:00")}); !errors.Is(err, journal.ErrNoActiveBlock) {
			t.Errorf("error = %v, want ErrNoActiveBlock", err)
		}
		mustStart(t, j, "08:00")
		mustStop(t, j, "09:00")
		if _, err := j.Switch(ctx, journal.SwitchOptions{At: at("10:00")}); !errors.Is(err, journal.ErrNoActiveBlock) {
			t.Errorf("after stop error = %v, want ErrNoActiveBlock", err)
		}
	})

	t.Run("before block start", func(t *testing.T) {
		j, store := newJournal(t, "2020-11-24")
		mustStart(t, j, "08:00")
		saves := store.saves
		_, err := j.Switch(ctx, journal.SwitchOptions{At: at("07:59")})
		var timeErr *journal.SwitchTimeError
		if !errors.As(err, &timeErr) || !errors.Is(err, journal.ErrInvalidTransition) {
			t.Fatalf("error = %v, want *SwitchTimeError", err)
		}
		if timeErr.Start.Short() != "08:00" || timeErr.At.Short() != "07:59" {
			t.Errorf("error times = %s/%s", timeErr.Start.Short(), timeErr.At.Short())
		}
		d := today(t, j)
		if store.saves != saves || len(d.WorkBlocks) != 1 || d.WorkBlocks[0].Stop != nil {
			t.Error("failed switch must leave the day untouched")
		}
	})

	t.Run("closes and opens", func(t *testing.T) {
		j, _ := newJournal(t, "2020-11-24")
		mustStart(t, j, "08:00")
		res, err := j.Switch(ctx, journal.SwitchOptions{At: at("10:15")})
		if err != nil {
			t.Fatal(err)
		}
		d := today(t, j)
		if len(d.WorkBlocks) != 2 {
			t.Fatalf("blocks = %d, want 2", len(d.WorkBlocks))
		}
		if d.WorkBlocks[0].Stop.Short() != "10:15" || d.WorkBlocks[1].Start.Short() != "10:15" || d.WorkBlocks[1].Stopped() {
			t.Errorf("blocks after switch = %+v", d.WorkBlocks)
		}
		if res.FlexMinutes != 135-480 || d.FlexMinutes != res.FlexMinutes {
			t.Errorf("flex = %d, want %d", res.FlexMinutes, 135-480)
		}
	})

	t.Run("prompt failure leaves state unchanged", func(t *testing.T) {
		j, store := newJournal(t, "2020-11-24")
		j.Projects = projectList{{ID: 1, Name: "Alpha"}}
		j.Picker = &scriptedPicker{answers: []*int{intp(1)}, errs: []error{nil, context.Canceled}}
		mustStart(t, j, "08:00")
		saves := store.saves
		if _, err := j.Switch(ctx, journal.SwitchOptions{At: at("09:00"), Prompt: true}); !errors.Is(err, context.Canceled) {
			t.Fatalf("error = %v, want context.Canceled", err)
		}
		d := today(t, j)
		if store.saves != saves || len(d.WorkBlocks) != 1 || d.WorkBlocks[0].Stopped() {
			t.Error("interrupted switch must not persist anything")
		}
	})

	t.Run("assigns prompted projects", func(t *testing.T) {
		j, _ := newJournal(t, "2020-11-24")
		j.Projects = projectList{{ID: 1, Name: "Alpha"}, {ID: 2, Name: "Beta"}}
		j.Picker = &scriptedPicker{answers: []*int{intp(1), intp(2)}}
		mustStart(t, j, "08:00")
		if _, err := j.Switch(ctx, journal.SwitchOptions{At: at("09:00"), Prompt: true}); err != nil {
			t.Fatal(err)
		}
		d := today(t, j)
		if d.WorkBlocks[0].ProjectKey() != 1 || d.WorkBlocks[1].ProjectKey() != 2 {
			t.Errorf("projects = %d/%d, want 1/2", d.WorkBlocks[0].ProjectKey(), d.WorkBlocks[1].ProjectKey())
		}
	})
}

func TestStartProjects(t *testing.T) {
	ctx := context.Background()

	t.Run("prompted", func(t *testing.T) {
		j, _ := newJournal(t, "2020-11-24")
		picker := &scriptedPicker{answers: []*int{intp(2)}}
		j.Projects = projectList{{ID: 1, Name: "Alpha", Deleted: true}, {ID: 2, Name: "Beta"}}
		j.Picker = picker
		if _, err := j.Start(ctx, journal.StartOptions{At: at("08:00"), Prompt: true}); err != nil {
			t.Fatal(err)
		}
		if picker.calls != 1 || today(t, j).LastBlock().ProjectKey() != 2 {
			t.Errorf("calls = %d project = %d", picker.calls, today(t, j).LastBlock().ProjectKey())
		}
	})

	t.Run("no projects skips prompt", func(t *testing.T) {
		j, _ := newJournal(t, "2020-11-24")
		picker := &scriptedPicker{}
		j.Projects = projectList{{ID: 1, Name: "Alpha", Deleted: true}}
		j.Picker = picker
		if _, err := j.Start(ctx, journal.StartOptions{At: at("08:00"), Prompt: true}); err != nil {
			t.Fatal(err)
		}
		if picker.calls != 0 || today(t, j).LastBlock().ProjectID != nil {
			t.Error("picker must not be asked without active projects")
		}
	})

	t.Run("explicit", func(t *testing.T) {
		j, _ := newJournal(t, "2020-11-24")
		j.Projects = projectList{{ID: 1, Name: "Alpha", Deleted: true}, {ID: 2, Name: "Beta"}}
		if _, err := j.Start(ctx, journal.StartOptions{At: at("08:00"), ProjectID: intp(9)}); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("unknown project error = %v, want ErrNotFound", err)
		}
		if _, err := j.Start(ctx, journal.StartOptions{At: at("08:00"), ProjectID: intp(1)}); !errors.Is(err, journal.ErrInvalidInput) {
			t.Errorf("deleted project error = %v, want ErrInvalidInput", err)
		}
		if _, err := j.Start(ctx, journal.StartOptions{At: at("08:00"), ProjectID: intp(2)}); err != nil {
			t.Fatal(err)
		}
		if today(t, j).LastBlock().ProjectKey() != 2 {
			t.Error("explicit project not assigned")
		}
	})
}

func TestSetComment(t *testing.T) {
	ctx := context.Background()
	j, store := newJournal(t, "2020-11-24")

	saves := store.saves
	if err := j.SetComment(ctx, "nothing running"); !errors.Is(err, journal.ErrNoOngoingBlock) {
		t.Fatalf("error = %v, want ErrNoOngoingBlock", err)
	}
	if store.saves == saves {
		t.Error("comment without ongoing block should still write the timesheet")
	}

	mustStart(t, j, "08:00")
	if err := j.SetComment(ctx, "first"); err != nil {
		t.Fatal(err)
	}
	if err := j.SetComment(ctx, "second"); err != nil {
		t.Fatal(err)
	}
	if c := today(t, j).LastBlock().Comment; c == nil || *c != "second" {
		t.Errorf("comment = %v, want second", c)
	}
}

func TestSetTargetHours(t *testing.T) {
	ctx := context.Background()
	j, _ := newJournal(t, "2020-11-24")
	if err := j.SetTargetHours(ctx, -1); !errors.Is(err, journal.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
	if err := j.SetTargetHours(ctx, 120); err != nil {
		t.Fatal(err)
	}
	ts, err := j.Timesheet(ctx, j.Now())
	if err != nil {
		t.Fatal(err)
	}
	if ts.TargetHours != 120 {
		t.Errorf("target hours = %d, want 120", ts.TargetHours)
	}
}

func TestRecalc(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	for key, day := range map[string]string{"2019-12": "2019-12-02", "2020-11": "2020-11-24"} {
		ts := model.NewTimesheet(167)
		d := ts.GetOrCreateDay(day)
		d.WorkBlocks = []model.WorkBlock{{Start: at("08:00"), Stop: at("16:40")}}
		d.FlexMinutes = 999
		if err := store.SaveTimesheet(key, ts); err != nil {
			t.Fatal(err)
		}
	}
	j := journal.New(settings, store)

	done, err := j.Recalc(ctx, journal.RecalcOptions{Year: 2020})
	if err != nil {
		t.Fatal(err)
	}
	if len(done) != 1 || done[0] != "2020-11" {
		t.Errorf("recalculated %v, want [2020-11]", done)
	}
	total, err := j.TotalFlex(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if total != 999+40 {
		t.Errorf("total flex = %d, want %d", total, 999+40)
	}

	if _, err := j.Recalc(ctx, journal.RecalcOptions{}); err != nil {
		t.Fatal(err)
	}
	first := string(store.data["2019-12"])
	if _, err := j.Recalc(ctx, journal.RecalcOptions{}); err != nil {
		t.Fatal(err)
	}
	if string(store.data["2019-12"]) != first {
		t.Error("recalc is not idempotent")
	}
	if total, _ := j.TotalFlex(ctx); total != 80 {
		t.Errorf("total flex = %d, want 80", total)
	}
}

func TestDaysSpansPeriods(t *testing.T) {
	j, store := newJournal(t, "2020-12-02")
	from := time.Date(2020, 11, 30, 0, 0, 0, 0, time.Local)
	to := time.Date(2020, 12, 2, 0, 0, 0, 0, time.Local)
	days, err := j.Days(context.Background(), from, to)
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 3 || days[0].Date != "2020-11-30" || days[2].Date != "2020-12-02" {
		t.Fatalf("days = %d", len(days))
	}
	var ts model.Timesheet
	if err := json.Unmarshal(store.data["2020-11"], &ts); err != nil {
		t.Fatal(err)
	}
	if len(ts.Days) != 0 {
		t.Error("viewing a range must not persist the created days")
	}
}
