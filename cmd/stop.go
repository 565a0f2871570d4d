package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/worktimer/internal/journal"
	"github.com/Tiliavir/worktimer/internal/timecalc"
)

var (
	stopComment  string
	stopProject  int
	stopNoPrompt bool
)

var stopCmd = &cobra.Command{
	Use:   "stop [hh:mm]",
	Short: "Stop the current work block now or at the given time",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStop,
}

func init() {
	stopCmd.Flags().StringVarP(&stopComment, "comment", "c", "", "Comment for the block")
	stopCmd.Flags().IntVarP(&stopProject, "project", "p", 0, "Project id for the block (0 for none)")
	stopCmd.Flags().BoolVar(&stopNoPrompt, "no-prompt", false, "Do not ask for a project")
}

func runStop(cmd *cobra.Command, args []string) error {
	at, err := parseAt(args)
	if err != nil {
		return err
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	var comment *string
	if cmd.Flags().Changed("comment") {
		comment = &stopComment
	}
	out := cmd.OutOrStdout()
	res, err := a.journal.Stop(cmd.Context(), journal.StopOptions{
		At:        at,
		Comment:   comment,
		ProjectID: projectFlag(cmd, stopProject),
		Prompt:    !stopNoPrompt,
	})
	if err != nil {
		return reportTransition(out, err)
	}
	printFlex(out, res.FlexMinutes)
	return nil
}

func printFlex(out io.Writer, mins int) {
	fmt.Fprintf(out, "Daily flex: %s\n", timecalc.FormatMinutes(mins, false))
}
