package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/worktimer/internal/journal"
	"github.com/Tiliavir/worktimer/internal/render"
	"github.com/Tiliavir/worktimer/internal/timecalc"
)

var viewCmd = &cobra.Command{
	Use:       "view [today|week|month]",
	Short:     "Show the work blocks of today, this week or this month",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"today", "week", "month"},
	RunE:      runView,
}

// viewRange returns the days covered by a view period.
func viewRange(period string, now time.Time) (time.Time, time.Time, error) {
	switch strings.ToLower(period) {
	case "", "today":
		today := timecalc.StartOfDay(now)
		return today, today, nil
	case "week":
		from, to := timecalc.CurrentWeek(now)
		return from, to, nil
	case "month":
		from, _ := timecalc.MonthRange(now)
		return from, timecalc.StartOfDay(now), nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("%w: unknown view %q, use today, week or month", journal.ErrInvalidInput, period)
}

func runView(cmd *cobra.Command, args []string) error {
	period := ""
	if len(args) == 1 {
		period = args[0]
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	from, to, err := viewRange(period, a.journal.Now())
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
	fmt.Fprintln(out, render.New(out, projects).Days(days))
	return nil
}
