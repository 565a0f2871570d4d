package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/worktimer/internal/render"
	"github.com/Tiliavir/worktimer/internal/summary"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show monthly progress and today's estimated end time",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	now := a.journal.Now()
	ts, err := a.journal.Timesheet(ctx, now)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	r := render.New(out, nil)
	fmt.Fprintln(out, r.Banner(summary.MonthOf(ts, now, a.journal.Settings.QuotaMinutes())))

	day := ts.GetOrCreateToday(now)
	last := day.LastBlock()
	if last == nil || !last.Started() {
		fmt.Fprintln(out, "No work block started today.")
		return nil
	}
	fmt.Fprintf(out, "You started last work block @ %s\n", last.Start)
	if est, ok := a.journal.EstimateEnd(day); ok {
		fmt.Fprintln(out, est)
	}
	return nil
}
