package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/worktimer/internal/journal"
	"github.com/Tiliavir/worktimer/internal/render"
	"github.com/Tiliavir/worktimer/internal/summary"
	"github.com/Tiliavir/worktimer/internal/timecalc"
)

var summaryFormat string

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show weekly, monthly and total flex with time per project",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

func init() {
	summaryCmd.Flags().StringVar(&summaryFormat, "format", "md", "Output format: md, csv, json")
}

type summaryJSON struct {
	Month            string               `json:"month"`
	Week             string               `json:"week"`
	WorkedMinutes    int                  `json:"worked_minutes"`
	ExpectedHours    float64              `json:"expected_hours"`
	TargetHours      int                  `json:"target_hours"`
	MonthlyFlex      int                  `json:"monthly_flex"`
	CurrentWeekFlex  int                  `json:"current_week_flex"`
	PreviousWeekFlex int                  `json:"previous_week_flex"`
	TotalFlex        int                  `json:"total_flex"`
	Projects         []summaryProjectJSON `json:"projects"`
}

type summaryProjectJSON struct {
	ID      int            `json:"id"`
	Name    string         `json:"name"`
	Minutes map[string]int `json:"minutes"`
	Total   int            `json:"total_minutes"`
}

func runSummary(cmd *cobra.Command, args []string) error {
	switch summaryFormat {
	case "md", "csv", "json":
	default:
		return fmt.Errorf("%w: unknown format %q, use md, csv or json", journal.ErrInvalidInput, summaryFormat)
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	o, err := summary.Load(ctx, a.journal, a.journal.Settings.QuotaMinutes())
	if err != nil {
		return err
	}
	now := a.journal.Now()
	from, _ := timecalc.MonthRange(now)
	days, err := a.journal.Days(ctx, from, timecalc.StartOfDay(now))
	if err != nil {
		return err
	}
	projects, err := a.projects.LoadProjects()
	if err != nil {
		return err
	}
	table := summary.ByProject(days, projects)

	out := cmd.OutOrStdout()
	switch summaryFormat {
	case "json":
		return writeSummaryJSON(out, timecalc.ISOWeekLabel(now), o, table)
	case "csv":
		writeSummaryCSV(out, table)
	default:
		r := render.New(out, projects)
		fmt.Fprintln(out, r.Banner(o.Month))
		fmt.Fprintln(out)
		fmt.Fprintln(out, r.Summary(o))
		if len(table.Rows) > 0 {
			fmt.Fprintln(out)
			fmt.Fprintln(out, r.ProjectTable(table))
		}
	}
	return nil
}

func writeSummaryJSON(out io.Writer, week string, o summary.Overview, table summary.ProjectTable) error {
	doc := summaryJSON{
		Month:            o.Month.Label,
		Week:             week,
		WorkedMinutes:    o.Month.WorkedMinutes,
		ExpectedHours:    o.Month.ExpectedHours,
		TargetHours:      o.Month.TargetHours,
		MonthlyFlex:      o.Month.FlexMinutes,
		CurrentWeekFlex:  o.CurrentWeekFlex,
		PreviousWeekFlex: o.PreviousWeekFlex,
		TotalFlex:        o.TotalFlex,
		Projects:         []summaryProjectJSON{},
	}
	for _, row := range table.Rows {
		p := summaryProjectJSON{ID: row.ProjectID, Name: row.Name, Minutes: map[string]int{}, Total: row.Total}
		for i, m := range row.Minutes {
			if m != 0 {
				p.Minutes[table.Dates[i]] = m
			}
		}
		doc.Projects = append(doc.Projects, p)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func writeSummaryCSV(out io.Writer, table summary.ProjectTable) {
	header := append([]string{"project"}, table.Dates...)
	fmt.Fprintln(out, strings.Join(append(header, "total_minutes"), ","))
	for _, row := range table.Rows {
		cells := []string{csvEscape(row.Name)}
		for _, m := range row.Minutes {
			cells = append(cells, strconv.Itoa(m))
		}
		cells = append(cells, strconv.Itoa(row.Total))
		fmt.Fprintln(out, strings.Join(cells, ","))
	}
}
