package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/worktimer/internal/journal"
)

var lunchCmd = &cobra.Command{
	Use:   "lunch [minutes]",
	Short: "Record lunch on the current work block",
	Long:  "Record lunch on the current work block. Without an argument the configured lunch_minutes is used.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLunch,
}

func runLunch(cmd *cobra.Command, args []string) error {
	var mins *int
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("%w: lunch must be a number of minutes, got %q", journal.ErrInvalidInput, args[0])
		}
		mins = &n
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	res, err := a.journal.Lunch(cmd.Context(), mins)
	if err != nil {
		return reportTransition(out, err)
	}
	if res.NoOp {
		fmt.Fprintf(out, "Lunch already recorded: %d min\n", res.Minutes)
		return nil
	}
	fmt.Fprintf(out, "Lunch: %d min\n", res.Minutes)
	if res.HasEstimate {
		fmt.Fprintln(out, res.Estimate)
	}
	return nil
}
