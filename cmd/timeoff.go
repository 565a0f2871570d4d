package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/worktimer/internal/journal"
	"github.com/Tiliavir/worktimer/internal/timecalc"
)

var timeoffDate string

var timeoffCmd = &cobra.Command{
	Use:   "timeoff <hours>",
	Short: "Record approved time off for today or --date",
	Args:  cobra.ExactArgs(1),
	RunE:  runTimeoff,
}

func init() {
	timeoffCmd.Flags().StringVar(&timeoffDate, "date", "", "Day to record time off for (YYYY-MM-DD), default today")
}

func runTimeoff(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	hours, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("%w: Invalid timeoff value, must be an int between 0 and %d inclusive.",
			journal.ErrInvalidInput, a.cfg.WorkhoursPerDay)
	}
	date := a.journal.Now()
	if timeoffDate != "" {
		if date, err = timecalc.ParseDate(timeoffDate); err != nil {
			return fmt.Errorf("%w: invalid --date value %q", journal.ErrInvalidInput, timeoffDate)
		}
	}
	flex, err := a.journal.SetTimeOffHours(cmd.Context(), date, hours)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Time off on %s: %dh\n", timecalc.DateKey(date), hours)
	printFlex(out, flex)
	return nil
}
