package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

var commentCmd = &cobra.Command{
	Use:   "comment <text>...",
	Short: "Set the comment of the ongoing work block",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runComment,
}

func runComment(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	err = a.journal.SetComment(cmd.Context(), strings.Join(args, " "))
	return reportTransition(cmd.OutOrStdout(), err)
}
