package cmd

import (
	"fmt"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
	"github.com/spf13/cobra"
)

const repoSlug = "Tiliavir/worktimer"

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update worktimer to the latest release",
	Args:  cobra.NoArgs,
	RunE:  runUpdate,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "worktimer version %s\n", version)
	},
}

func runUpdate(cmd *cobra.Command, args []string) error {
	v, err := semver.Parse(version)
	if err != nil {
		return fmt.Errorf("invalid build version %q: %w", version, err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Checking and applying update")
	latest, err := selfupdate.UpdateSelf(v, repoSlug)
	if err != nil {
		return fmt.Errorf("binary update failed: %w", err)
	}
	if latest.Version.Equals(v) {
		log.Println("Current binary is the latest version", version)
		return nil
	}
	log.Println("Successfully updated to version", latest.Version)
	log.Println("Release note:\n", latest.ReleaseNotes)
	return nil
}
