package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/worktimer/internal/journal"
)

var projectListAll bool

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage the projects work blocks can be tagged with",
}

var projectAddCmd = &cobra.Command{
	Use:   "add <name>...",
	Short: "Add a project",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runProjectAdd,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Args:  cobra.NoArgs,
	RunE:  runProjectList,
}

var projectRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a project; blocks keep their reference",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectRm,
}

func init() {
	projectListCmd.Flags().BoolVar(&projectListAll, "all", false, "Include deleted projects")
	projectCmd.AddCommand(projectAddCmd, projectListCmd, projectRmCmd)
}

func runProjectAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.projects.AddProject(strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added project %d: %s\n", p.ID, p.Name)
	return nil
}

func runProjectList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	projects, err := a.projects.LoadProjects()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	shown := 0
	for _, p := range projects {
		if p.Deleted && !projectListAll {
			continue
		}
		suffix := ""
		if p.Deleted {
			suffix = " (deleted)"
		}
		fmt.Fprintf(out, "%3d  %s%s\n", p.ID, p.Name, suffix)
		shown++
	}
	if shown == 0 {
		fmt.Fprintln(out, "No projects.")
	}
	return nil
}

func runProjectRm(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("%w: project id must be a number, got %q", journal.ErrInvalidInput, args[0])
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.projects.DeleteProject(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %d: %s\n", p.ID, p.Name)
	return nil
}
