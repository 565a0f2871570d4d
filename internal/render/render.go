// Package render formats days and summaries for the terminal.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Tiliavir/worktimer/internal/model"
	"github.com/Tiliavir/worktimer/internal/summary"
	"github.com/Tiliavir/worktimer/internal/timecalc"
)

// Renderer formats output, coloured when the destination supports it.
type Renderer struct {
	header   lipgloss.Style
	muted    lipgloss.Style
	positive lipgloss.Style
	negative lipgloss.Style
	border   lipgloss.Style

	projects map[int]string
}

// New returns a Renderer styled for w.
func New(w io.Writer, projects []model.Project) *Renderer {
	lr := lipgloss.NewRenderer(w)
	r := &Renderer{
		header:   lr.NewStyle().Bold(true),
		muted:    lr.NewStyle().Foreground(lipgloss.Color("#888888")),
		positive: lr.NewStyle().Foreground(lipgloss.Color("#95E1A3")),
		negative: lr.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
		border:   lr.NewStyle().Foreground(lipgloss.Color("#333333")),
	}
	r.SetProjects(projects)
	return r
}

// Plain returns a Renderer without any styling.
func Plain(projects []model.Project) *Renderer {
	return New(io.Discard, projects)
}

// SetProjects sets the names used for project ids.
func (r *Renderer) SetProjects(projects []model.Project) {
	r.projects = map[int]string{}
	for _, p := range projects {
		r.projects[p.ID] = p.Name
	}
}

func (r *Renderer) projectName(id int) string {
	if name, ok := r.projects[id]; ok {
		return name
	}
	return fmt.Sprintf("#%d", id)
}

func (r *Renderer) flex(mins int) string {
	s := timecalc.FormatMinutes(mins, false)
	switch {
	case mins > 0:
		return r.positive.Render(s)
	case mins < 0:
		return r.negative.Render(s)
	}
	return s
}

// Day renders the day's header line followed by one line per block.
func (r *Renderer) Day(d *model.Day) string {
	var b strings.Builder
	b.WriteString(r.header.Render(d.Date))
	fmt.Fprintf(&b, " | worked time: %s | lunch: %s | daily flex: %s",
		timecalc.FormatMinutes(d.WorkedTime(), true),
		timecalc.FormatMinutes(d.Lunch(), false),
		r.flex(d.FlexMinutes),
	)
	if d.TimeOffMinutes > 0 {
		fmt.Fprintf(&b, " | time off: %s", timecalc.FormatMinutes(d.TimeOffMinutes, false))
	}
	for i := range d.WorkBlocks {
		blk := &d.WorkBlocks[i]
		if !blk.Started() {
			continue
		}
		b.WriteString("\n  ")
		b.WriteString(blk.Start.Short())
		b.WriteString("-")
		if blk.Stopped() {
			b.WriteString(blk.Stop.Short())
			b.WriteString(" => ")
			b.WriteString(timecalc.FormatMinutes(blk.Duration(), true))
		}
		if blk.ProjectID != nil {
			b.WriteString(" ")
			b.WriteString(r.muted.Render("[" + r.projectName(*blk.ProjectID) + "]"))
		}
		if blk.Comment != nil && *blk.Comment != "" {
			b.WriteString(" ")
			b.WriteString(r.muted.Render(*blk.Comment))
		}
	}
	return b.String()
}

// Days renders days separated by blank lines.
func (r *Renderer) Days(days []*model.Day) string {
	parts := make([]string, 0, len(days))
	for _, d := range days {
		parts = append(parts, r.Day(d))
	}
	return strings.Join(parts, "\n\n")
}

// Banner renders the monthly progress lines.
func (r *Renderer) Banner(m summary.Month) string {
	return fmt.Sprintf("Worked %s of your %d target hours for this month\nMonthly flex: %s",
		timecalc.FormatMinutes(m.WorkedMinutes, true), m.TargetHours, r.flex(m.FlexMinutes))
}

// Summary renders weekly, monthly and total figures.
func (r *Renderer) Summary(o summary.Overview) string {
	var b strings.Builder
	b.WriteString(r.header.Render("Summary " + o.Month.Label))
	fmt.Fprintf(&b, "\nFlex this week:     %s", r.flex(o.CurrentWeekFlex))
	fmt.Fprintf(&b, "\nFlex previous week: %s", r.flex(o.PreviousWeekFlex))
	fmt.Fprintf(&b, "\nWorked this month:  %s (%.1fh expected)",
		timecalc.FormatMinutes(o.Month.WorkedMinutes, true), o.Month.ExpectedHours)
	fmt.Fprintf(&b, "\nTarget hours:       %d", o.Month.TargetHours)
	fmt.Fprintf(&b, "\nMonthly flex:       %s", r.flex(o.Month.FlexMinutes))
	fmt.Fprintf(&b, "\nTotal flex:         %s", r.flex(o.TotalFlex))
	return b.String()
}

// ProjectTable renders worked time per project (rows) and day (columns).
func (r *Renderer) ProjectTable(t summary.ProjectTable) string {
	headers := []string{"Project"}
	for _, d := range t.Dates {
		headers = append(headers, d[5:])
	}
	headers = append(headers, "Total")

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.border).
		Headers(headers...)
	for _, row := range t.Rows {
		cells := []string{row.Name}
		for _, m := range row.Minutes {
			cells = append(cells, cell(m))
		}
		cells = append(cells, cell(row.Total))
		tbl.Row(cells...)
	}
	totals := []string{"Total"}
	for _, m := range t.DayTotals {
		totals = append(totals, cell(m))
	}
	totals = append(totals, cell(t.Total))
	tbl.Row(totals...)
	return tbl.Render()
}

func cell(mins int) string {
	if mins == 0 {
		return "-"
	}
	return timecalc.FormatMinutes(mins, true)
}
