// Package summary aggregates days into weekly, monthly and per-project
// figures.
package summary

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Tiliavir/worktimer/internal/model"
	"github.com/Tiliavir/worktimer/internal/timecalc"
)

// Flex sums the flex of the given days.
func Flex(days []*model.Day) int {
	total := 0
	for _, d := range days {
		total += d.FlexMinutes
	}
	return total
}

// Worked sums the worked time of the given days.
func Worked(days []*model.Day) int {
	total := 0
	for _, d := range days {
		total += d.WorkedTime()
	}
	return total
}

// Month holds the figures of one calendar month.
type Month struct {
	Label         string
	WorkedMinutes int
	FlexMinutes   int
	// ExpectedHours is the quota less time off, over days with work.
	ExpectedHours float64
	TargetHours   int
}

// MonthOf aggregates the days of ts that fall in the month containing t.
func MonthOf(ts *model.Timesheet, t time.Time, quotaMinutes int) Month {
	prefix := timecalc.PeriodKey(t) + "-"
	m := Month{Label: t.Format("January 2006"), TargetHours: ts.TargetHours}
	for _, d := range ts.SortedDays() {
		if !strings.HasPrefix(d.Date, prefix) {
			continue
		}
		worked := d.WorkedTime()
		m.WorkedMinutes += worked
		m.FlexMinutes += d.FlexMinutes
		if worked != 0 {
			expected, timeOff := d.Expected(quotaMinutes)
			m.ExpectedHours += float64(expected-timeOff) / 60
		}
	}
	return m
}

// WorkedHours is the worked time in hours.
func (m Month) WorkedHours() float64 { return float64(m.WorkedMinutes) / 60 }

// NoProjectName labels work without a project.
const NoProjectName = "No project"

// ProjectRow is one project's worked minutes per day.
type ProjectRow struct {
	ProjectID int
	Name      string
	Minutes   []int
	Total     int
}

// ProjectTable buckets worked time by project and day.
type ProjectTable struct {
	Dates     []string
	Rows      []ProjectRow
	DayTotals []int
	Total     int
}

// ByProject builds the project table for days. Unstarted days are kept as
// columns; rows only exist for projects with worked time.
func ByProject(days []*model.Day, projects []model.Project) ProjectTable {
	names := map[int]string{model.NoProject: NoProjectName}
	for _, p := range projects {
		names[p.ID] = p.Name
	}

	t := ProjectTable{DayTotals: make([]int, len(days))}
	rows := map[int]*ProjectRow{}
	for i, d := range days {
		t.Dates = append(t.Dates, d.Date)
		for _, b := range d.WorkBlocks {
			worked := b.WorkedTime()
			if worked == 0 {
				continue
			}
			id := b.ProjectKey()
			row, ok := rows[id]
			if !ok {
				name, known := names[id]
				if !known {
					name = fmt.Sprintf("#%d", id)
				}
				row = &ProjectRow{ProjectID: id, Name: name, Minutes: make([]int, len(days))}
				rows[id] = row
			}
			row.Minutes[i] += worked
			row.Total += worked
			t.DayTotals[i] += worked
			t.Total += worked
		}
	}

	ids := make([]int, 0, len(rows))
	for id := range rows {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		t.Rows = append(t.Rows, *rows[id])
	}
	return t
}
