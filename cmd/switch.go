package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/worktimer/internal/journal"
)

var switchNoPrompt bool

var switchCmd = &cobra.Command{
	Use:   "switch [hh:mm]",
	Short: "Stop the current work block and start a new one at the same time",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSwitch,
}

func init() {
	switchCmd.Flags().BoolVar(&switchNoPrompt, "no-prompt", false, "Do not ask for projects")
}

func runSwitch(cmd *cobra.Command, args []string) error {
	at, err := parseAt(args)
	if err != nil {
		return err
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.journal.Switch(cmd.Context(), journal.SwitchOptions{At: at, Prompt: !switchNoPrompt})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Switched work block at %s\n", res.Started.Start.Short())
	printFlex(out, res.FlexMinutes)
	fmt.Fprintln(out, res.Estimate)
	return nil
}
