package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/worktimer/internal/journal"
)

var targetCmd = &cobra.Command{
	Use:     "target <hours>",
	Aliases: []string{"target_hours"},
	Short:   "Set this month's target hours",
	Args:    cobra.ExactArgs(1),
	RunE:    runTarget,
}

func runTarget(cmd *cobra.Command, args []string) error {
	hours, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("%w: target hours must be a whole number, got %q", journal.ErrInvalidInput, args[0])
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.journal.SetTargetHours(cmd.Context(), hours); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Target hours for this month: %d\n", hours)
	return nil
}
