package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/worktimer/internal/journal"
	"github.com/Tiliavir/worktimer/internal/timecalc"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open this month's timesheet in your editor",
	Long: `Open this month's timesheet file in the configured editor, $EDITOR or vi.
The month's flex is recalculated afterwards. Only the json storage backend
keeps editable files.`,
	Args: cobra.NoArgs,
	RunE: runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.files == nil {
		return errors.New("edit needs the json storage backend")
	}
	now := a.journal.Now()
	key := timecalc.PeriodKey(now)
	// Loading creates the file if the month has none yet.
	if _, err := a.journal.Timesheet(cmd.Context(), now); err != nil {
		return err
	}

	editor := strings.Fields(a.cfg.ResolveEditor())
	if len(editor) == 0 {
		return errors.New("no editor configured")
	}
	c := exec.CommandContext(cmd.Context(), editor[0], append(editor[1:], a.files.Path(key))...)
	c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("running editor: %w", err)
	}

	if _, err := a.journal.Recalc(cmd.Context(), journal.RecalcOptions{Year: now.Year()}); err != nil {
		return fmt.Errorf("timesheet %s after editing: %w", a.files.Path(key), err)
	}
	ts, err := a.journal.Timesheet(cmd.Context(), now)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Monthly flex: %s\n", timecalc.FormatMinutes(ts.MonthlyFlex(), false))
	return nil
}
