package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/worktimer/internal/journal"
	"github.com/Tiliavir/worktimer/internal/timecalc"
)

var (
	startProject  int
	startNoPrompt bool
)

var startCmd = &cobra.Command{
	Use:   "start [hh:mm]",
	Short: "Start a work block now or at the given time",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStart,
}

func init() {
	startCmd.Flags().IntVarP(&startProject, "project", "p", 0, "Project id for the block (0 for none)")
	startCmd.Flags().BoolVar(&startNoPrompt, "no-prompt", false, "Do not ask for a project")
}

// parseAt returns the optional hh:mm argument, nil meaning now.
func parseAt(args []string) (*timecalc.TimeOfDay, error) {
	if len(args) == 0 {
		return nil, nil
	}
	t, err := timecalc.ParseTimeOfDay(args[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", journal.ErrInvalidInput, err)
	}
	return &t, nil
}

// projectFlag returns the flag's value if it was given on the command line.
func projectFlag(cmd *cobra.Command, value int) *int {
	if !cmd.Flags().Changed("project") {
		return nil
	}
	return &value
}

func runStart(cmd *cobra.Command, args []string) error {
	at, err := parseAt(args)
	if err != nil {
		return err
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	est, err := a.journal.Start(cmd.Context(), journal.StartOptions{
		At:        at,
		ProjectID: projectFlag(cmd, startProject),
		Prompt:    !startNoPrompt,
	})
	if err != nil {
		return reportTransition(out, err)
	}
	fmt.Fprintln(out, est)
	return nil
}
