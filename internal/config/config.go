package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration, stored as YAML in
// $XDG_CONFIG_HOME/worktimer/config.yaml.
type Config struct {
	WorkhoursPerDay int    `yaml:"workhours_per_day"`
	LunchMinutes    int    `yaml:"lunch_minutes"`
	TargetHours     int    `yaml:"target_hours"`
	DataDir         string `yaml:"data_dir"`
	// Storage selects the backend: "json" or "sqlite".
	Storage string        `yaml:"storage"`
	Editor  string        `yaml:"editor"`
	Mode    string        `yaml:"mode"`
	Outlook OutlookConfig `yaml:"outlook"`
}

// OutlookConfig holds Microsoft Graph / Outlook calendar sync settings.
type OutlookConfig struct {
	// TenantID is the Azure AD tenant. Use "common" for personal/multi-tenant accounts.
	TenantID string `yaml:"tenant_id"`
	// ClientID is the Azure app (client) ID for the OAuth2 device code flow.
	ClientID string `yaml:"client_id"`
	// Timezone is the IANA timezone for event times (e.g. "Europe/Berlin"). Empty = local.
	Timezone string `yaml:"timezone"`
}

const (
	DefaultWorkhoursPerDay = 8
	DefaultLunchMinutes    = 30
	DefaultTargetHours     = 167

	StorageJSON   = "json"
	StorageSQLite = "sqlite"

	// ModeDev keeps all data in ./.worktimer.
	ModeDev = "dev"

	// DefaultTenantID is the Microsoft "common" tenant (supports personal and
	// multi-tenant organisational accounts without additional registration).
	DefaultTenantID = "common"
	// DefaultClientID is the well-known public Azure CLI app ID. It supports
	// device code flow without a client secret.
	DefaultClientID = "04b07795-8542-4c4a-95af-30b2c573d5ab"

	appName = "worktimer"
)

const (
	EnvMode    = "WORKTIMER_MODE"
	EnvDataDir = "WORKTIMER_DATA_DIR"
	EnvStorage = "WORKTIMER_STORAGE"
)

// Default returns a Config pre-filled with the built-in defaults.
func Default() Config {
	return Config{
		WorkhoursPerDay: DefaultWorkhoursPerDay,
		LunchMinutes:    DefaultLunchMinutes,
		TargetHours:     DefaultTargetHours,
		Storage:         StorageJSON,
		Outlook: OutlookConfig{
			TenantID: DefaultTenantID,
			ClientID: DefaultClientID,
		},
	}
}

// configTemplate is the annotated config written on first run.
const configTemplate = `# worktimer configuration
#
# All settings are optional; missing values fall back to the defaults below.

# Expected hours of work per weekday (1-24). Weekends carry no quota.
workhours_per_day: 8

# Lunch in minutes used by "lunch" without an argument and by end-time estimates.
lunch_minutes: 30

# Monthly target hours for new timesheets.
target_hours: 167

# Where timesheets are kept. Empty means ~/.worktimer.
data_dir: ""

# Storage backend: "json" (one file per month) or "sqlite" (worktimer.db).
storage: json

# Editor for "worktimer edit". Empty means $EDITOR.
editor: ""

# "dev" keeps all data in ./.worktimer.
mode: ""

# Microsoft Graph / Outlook calendar sync.
outlook:
  # "common" for personal accounts and any organisation, or your tenant GUID.
  tenant_id: common
  # Azure application (client) ID for the device code flow. The built-in value
  # is the public Azure CLI app.
  client_id: 04b07795-8542-4c4a-95af-30b2c573d5ab
  # IANA timezone for calendar event times, e.g. "Europe/Berlin". Empty = local.
  timezone: ""
`

// FilePath returns the config file location, creating its directory.
func FilePath() (string, error) {
	path, err := xdg.ConfigFile(filepath.Join(appName, "config.yaml"))
	if err != nil {
		return "", fmt.Errorf("cannot determine config location: %w", err)
	}
	return path, nil
}

// Load reads the config file, creating it with annotated defaults on first
// run, and applies environment overrides.
func Load() (Config, error) {
	path, err := FilePath()
	if err != nil {
		return Default(), err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config file at path. A missing file is created from the
// template; unset fields are filled with defaults.
func LoadFrom(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
		data = []byte(configTemplate)
	} else if err != nil {
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}
	cfg.applyEnv()
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvMode); v != "" {
		c.Mode = v
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvStorage); v != "" {
		c.Storage = v
	}
}

func (c *Config) fillDefaults() {
	d := Default()
	if c.WorkhoursPerDay == 0 {
		c.WorkhoursPerDay = d.WorkhoursPerDay
	}
	if c.TargetHours == 0 {
		c.TargetHours = d.TargetHours
	}
	if c.Storage == "" {
		c.Storage = d.Storage
	}
	if c.Outlook.TenantID == "" {
		c.Outlook.TenantID = d.Outlook.TenantID
	}
	if c.Outlook.ClientID == "" {
		c.Outlook.ClientID = d.Outlook.ClientID
	}
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.WorkhoursPerDay < 1 || c.WorkhoursPerDay > 24 {
		return fmt.Errorf("workhours_per_day must be between 1 and 24, got %d", c.WorkhoursPerDay)
	}
	if c.LunchMinutes < 0 {
		return fmt.Errorf("lunch_minutes must not be negative, got %d", c.LunchMinutes)
	}
	if c.TargetHours < 0 {
		return fmt.Errorf("target_hours must not be negative, got %d", c.TargetHours)
	}
	switch c.Storage {
	case StorageJSON, StorageSQLite:
	default:
		return fmt.Errorf("storage must be %q or %q, got %q", StorageJSON, StorageSQLite, c.Storage)
	}
	return nil
}

// IsDev reports whether dev mode is active.
func (c Config) IsDev() bool { return c.Mode == ModeDev }

// ResolveDataDir returns the directory holding timesheets: ./.worktimer in
// dev mode, else data_dir, else ~/.worktimer.
func (c Config) ResolveDataDir() (string, error) {
	if c.IsDev() {
		return filepath.Abs("." + appName)
	}
	if c.DataDir != "" {
		return expandHome(c.DataDir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, "."+appName), nil
}

// ResolveEditor returns the configured editor, falling back to $EDITOR and vi.
func (c Config) ResolveEditor() string {
	if c.Editor != "" {
		return c.Editor
	}
	if e := os.Getenv("EDITOR"); e != "" {
		return e
	}
	return "vi"
}

func expandHome(path string) (string, error) {
	if path != "~" && !hasHomePrefix(path) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

func hasHomePrefix(path string) bool {
	return len(path) > 1 && path[0] == '~' && (path[1] == '/' || path[1] == filepath.Separator)
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
