package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/worktimer/internal/journal"
	"github.com/Tiliavir/worktimer/internal/msgraph"
	"github.com/Tiliavir/worktimer/internal/timecalc"
)

var (
	outlookSyncFrom   string
	outlookSyncTo     string
	outlookSyncDate   string
	outlookSyncDryRun bool
	outlookSyncTZ     string
)

var outlookCmd = &cobra.Command{
	Use:   "outlook",
	Short: "Outlook calendar integration",
}

var outlookSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Import out-of-office calendar events as time off",
	Args:  cobra.NoArgs,
	RunE:  runOutlookSync,
}

func init() {
	outlookSyncCmd.Flags().StringVar(&outlookSyncFrom, "from", "", "Start date (YYYY-MM-DD); required when --to is specified")
	outlookSyncCmd.Flags().StringVar(&outlookSyncTo, "to", "", "End date (YYYY-MM-DD); defaults to today")
	outlookSyncCmd.Flags().StringVar(&outlookSyncDate, "date", "", "Sync a specific date (YYYY-MM-DD)")
	outlookSyncCmd.Flags().BoolVar(&outlookSyncDryRun, "dry-run", false, "Print planned changes without writing")
	outlookSyncCmd.Flags().StringVar(&outlookSyncTZ, "timezone", "", "IANA timezone for event times (default from config)")
	outlookCmd.AddCommand(outlookSyncCmd)
}

// syncRange resolves the sync flags to a range of days. The default is today.
func syncRange(date, from, to string, now time.Time) (time.Time, time.Time, error) {
	parse := func(flag, v string) (time.Time, error) {
		d, err := timecalc.ParseDate(v)
		if err != nil {
			return d, fmt.Errorf("%w: invalid --%s value %q", journal.ErrInvalidInput, flag, v)
		}
		return d, nil
	}
	today := timecalc.StartOfDay(now)
	switch {
	case date != "":
		d, err := parse("date", date)
		return d, d, err
	case to != "" && from == "":
		return today, today, fmt.Errorf("%w: --from is required when --to is specified", journal.ErrInvalidInput)
	case from != "":
		start, err := parse("from", from)
		if err != nil {
			return start, start, err
		}
		end := today
		if to != "" {
			if end, err = parse("to", to); err != nil {
				return start, end, err
			}
		}
		if end.Before(start) {
			return start, end, fmt.Errorf("%w: --to is before --from", journal.ErrInvalidInput)
		}
		return start, end, nil
	}
	return today, today, nil
}

func runOutlookSync(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	from, to, err := syncRange(outlookSyncDate, outlookSyncFrom, outlookSyncTo, a.journal.Now())
	if err != nil {
		return err
	}
	timezone := outlookSyncTZ
	if timezone == "" {
		timezone = a.cfg.Outlook.Timezone
	}

	out := cmd.OutOrStdout()
	dryTag := ""
	if outlookSyncDryRun {
		dryTag = " [dry-run]"
	}
	fmt.Fprintf(out, "Syncing Outlook time off (%s → %s)%s...\n\n",
		timecalc.DateKey(from), timecalc.DateKey(to), dryTag)

	ctx := cmd.Context()
	oauthCfg := msgraph.OAuth2Config(a.cfg.Outlook.TenantID, a.cfg.Outlook.ClientID)
	tokens := msgraph.TokenFile{Path: msgraph.TokenPath(a.dataDir)}
	tok, err := msgraph.Authorize(ctx, oauthCfg, tokens, out)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	client := msgraph.NewClient(ctx, tok, oauthCfg, tokens)

	events, err := client.GetCalendarView(ctx, from, to.AddDate(0, 0, 1), timezone)
	if err != nil {
		return fmt.Errorf("failed to fetch calendar events: %w", err)
	}

	result, err := msgraph.SyncTimeOff(ctx, events, a.journal, msgraph.SyncOptions{
		From:         from,
		To:           to,
		DryRun:       outlookSyncDryRun,
		QuotaMinutes: a.journal.Settings.QuotaMinutes(),
		Timezone:     timezone,
		Out:          out,
	})
	if err != nil {
		return fmt.Errorf("sync error: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Summary:")
	fmt.Fprintf(out, "  %d updated\n", result.Updated)
	fmt.Fprintf(out, "  %d skipped\n", result.Skipped)
	if result.Errors > 0 {
		return fmt.Errorf("%d days could not be synced", result.Errors)
	}
	return nil
}
