package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/worktimer/internal/journal"
	"github.com/Tiliavir/worktimer/internal/timecalc"
)

var (
	recalcYear int
	recalcAll  bool
)

var recalcCmd = &cobra.Command{
	Use:   "recalc",
	Short: "Recompute the flex of every stored day",
	Long:  "Recompute the flex of every day of the current year, of --year, or of every period with --all.",
	Args:  cobra.NoArgs,
	RunE:  runRecalc,
}

func init() {
	recalcCmd.Flags().IntVar(&recalcYear, "year", 0, "Year to recalculate (default current year)")
	recalcCmd.Flags().BoolVar(&recalcAll, "all", false, "Recalculate every stored period")
}

func runRecalc(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	opts := journal.RecalcOptions{Year: recalcYear}
	switch {
	case recalcAll:
		opts.Year = 0
	case opts.Year == 0:
		opts.Year = a.journal.Now().Year()
	}
	keys, err := a.journal.Recalc(cmd.Context(), opts)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, key := range keys {
		fmt.Fprintf(out, "Recalculated %s\n", key)
	}
	total, err := a.journal.TotalFlex(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Total flex: %s\n", timecalc.FormatMinutes(total, false))
	return nil
}
