package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/brimstone/logger"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/worktimer/internal/config"
	"github.com/Tiliavir/worktimer/internal/journal"
	"github.com/Tiliavir/worktimer/internal/model"
	"github.com/Tiliavir/worktimer/internal/prompt"
	"github.com/Tiliavir/worktimer/internal/storage"
)

var log = logger.New()

// version is set at build time with -ldflags "-X".
var version = "0.0.0"

var (
	configPath string
	// clock overrides the system clock in tests.
	clock journal.Clock
)

var rootCmd = &cobra.Command{
	Use:   "worktimer",
	Short: "worktimer – track working hours and flex time",
	Long: `worktimer records the work blocks of each day and keeps a running
flex balance against a daily quota. Timesheets are stored per month in
~/.worktimer/ as JSON files or in a SQLite database.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/worktimer/config.yaml)")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(switchCmd)
	rootCmd.AddCommand(lunchCmd)
	rootCmd.AddCommand(timeoffCmd)
	rootCmd.AddCommand(targetCmd)
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(recalcCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(outlookCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}

// projectStore is the project directory with its management operations.
type projectStore interface {
	journal.ProjectDirectory
	AddProject(name string) (model.Project, error)
	DeleteProject(id int) (model.Project, error)
}

// app bundles everything a command needs.
type app struct {
	cfg      config.Config
	dataDir  string
	journal  *journal.Journal
	projects projectStore
	// files is nil unless the JSON backend is in use.
	files *storage.FileStore
	close func() error
}

// openApp loads the config and opens the configured storage backend.
func openApp(cmd *cobra.Command) (*app, error) {
	var (
		cfg config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if cfg.IsDev() {
		fmt.Fprintln(cmd.OutOrStdout(), "Running in dev mode.")
	}
	dataDir, err := cfg.ResolveDataDir()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, dataDir: dataDir, close: func() error { return nil }}
	var store journal.Store
	switch cfg.Storage {
	case config.StorageSQLite:
		db, err := storage.OpenSQLStore(storage.DBPath(dataDir), cfg.TargetHours)
		if err != nil {
			return nil, err
		}
		store, a.projects, a.close = db, db, db.Close
	default:
		fs := storage.NewFileStore(dataDir, cfg.TargetHours)
		store, a.projects, a.files = fs, fs, fs
	}
	log.Debug("opened storage", log.Field("backend", cfg.Storage), log.Field("dir", dataDir))

	a.journal = journal.New(journal.Settings{
		WorkhoursPerDay:     cfg.WorkhoursPerDay,
		DefaultLunchMinutes: cfg.LunchMinutes,
	}, store)
	a.journal.Projects = a.projects
	a.journal.Picker = prompt.New(os.Stdin, os.Stdout)
	if clock != nil {
		a.journal.Clock = clock
	}
	return a, nil
}

// Close releases the storage backend.
func (a *app) Close() error {
	return a.close()
}

// reportTransition prints rejected state changes as plain messages.
// Other errors are returned unchanged.
func reportTransition(out io.Writer, err error) error {
	if errors.Is(err, journal.ErrInvalidTransition) {
		fmt.Fprintln(out, err)
		return nil
	}
	return err
}
