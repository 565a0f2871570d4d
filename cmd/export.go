package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/worktimer/internal/journal"
	"github.com/Tiliavir/worktimer/internal/model"
	"github.com/Tiliavir/worktimer/internal/render"
	"github.com/Tiliavir/worktimer/internal/timecalc"
)

var (
	exportFormat string
	exportFrom   string
	exportTo     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export work blocks to stdout",
	Long:  "Export the work blocks between --from and --to (default: this week) as csv, json or md.",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, json, md")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "First day (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "Last day (YYYY-MM-DD), default today")
}

// exportRange resolves --from and --to, defaulting to the current week.
func exportRange(from, to string, now time.Time) (time.Time, time.Time, error) {
	start, end := timecalc.CurrentWeek(now)
	if from != "" {
		d, err := timecalc.ParseDate(from)
		if err != nil {
			return start, end, fmt.Errorf("%w: invalid --from value %q", journal.ErrInvalidInput, from)
		}
		start, end = d, timecalc.StartOfDay(now)
	}
	if to != "" {
		d, err := timecalc.ParseDate(to)
		if err != nil {
			return start, end, fmt.Errorf("%w: invalid --to value %q", journal.ErrInvalidInput, to)
		}
		end = d
	}
	if end.Before(start) {
		return start, end, fmt.Errorf("%w: --to is before --from", journal.ErrInvalidInput)
	}
	return start, end, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	from, to, err := exportRange(exportFrom, exportTo, a.journal.Now())
	if err != nil {
		return err
	}
	days, err := a.journal.Days(cmd.Context(), from, to)
	if err != nil {
		return err
	}
	projects, err := a.projects.LoadProjects()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch exportFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(days); err != nil {
			return fmt.Errorf("error encoding JSON: %w", err)
		}
	case "md":
		fmt.Fprintln(out, render.Plain(projects).Days(days))
	default:
		writeCSV(out, days, projects)
	}
	return nil
}

// writeCSV writes one row per started work block.
func writeCSV(out io.Writer, days []*model.Day, projects []model.Project) {
	names := map[int]string{}
	for _, p := range projects {
		names[p.ID] = p.Name
	}
	fmt.Fprintln(out, "date,start,stop,lunch_minutes,worked_minutes,project,comment")
	for _, d := range days {
		for _, b := range d.WorkBlocks {
			if !b.Started() {
				continue
			}
			stop, worked := "", ""
			if b.Stopped() {
				stop = b.Stop.Short()
				worked = strconv.Itoa(b.WorkedTime())
			}
			project := ""
			if b.ProjectID != nil {
				project = names[*b.ProjectID]
			}
			comment := ""
			if b.Comment != nil {
				comment = *b.Comment
			}
			fmt.Fprintf(out, "%s,%s,%s,%d,%s,%s,%s\n",
				d.Date, b.Start.Short(), stop, b.Lunch, worked,
				csvEscape(project), csvEscape(comment))
		}
	}
}

// csvEscape quotes a field containing a comma, quote or line break.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\r\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
