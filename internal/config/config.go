package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/example/boxkeep/internal/core/grid"
	"github.com/example/boxkeep/internal/logging"
)

// Storage drivers
const (
	DriverXLSX   = "xlsx"
	DriverSQLite = "sqlite"
)

// SettingsFile is the settings file name inside the data directory.
const SettingsFile = "settings.json"

// DefaultDataDir is used when neither flag nor environment names one.
const DefaultDataDir = "bin"

// envPrefix namespaces environment overrides, e.g. BOXKEEP_BOX_AMOUNT.
const envPrefix = "BOXKEEP"

// Settings holds the static configuration read once at startup.
type Settings struct {
	DataDir     string `mapstructure:"-" json:"-"`
	BoxAmount   int    `mapstructure:"box_amount" json:"box_amount"`
	CellAmount  int    `mapstructure:"cell_amount" json:"cell_amount"`
	EmptyString string `mapstructure:"empty_string" json:"empty_string"`
	FullString  string `mapstructure:"full_string" json:"full_string"`
	Driver      string `mapstructure:"driver" json:"driver"`
	LogLevel    string `mapstructure:"log_level" json:"log_level"`
	LogFormat   string `mapstructure:"log_format" json:"log_format"`
	Operator    string `mapstructure:"operator" json:"operator,omitempty"`
}

// Default returns the settings used when no file exists.
func Default() Settings {
	return Settings{
		DataDir:     DefaultDataDir,
		BoxAmount:   10,
		CellAmount:  10,
		EmptyString: "O",
		FullString:  "X",
		Driver:      DriverXLSX,
		LogLevel:    "warn",
		LogFormat:   "console",
	}
}

// ResolveDataDir picks the data directory: explicit flag, then
// BOXKEEP_DATA_DIR, then DefaultDataDir.
func ResolveDataDir(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(envPrefix + "_DATA_DIR"); env != "" {
		return env
	}
	return DefaultDataDir
}

// Load reads settings.json from dataDir, applying defaults and BOXKEEP_*
// environment overrides. A missing file is not an error.
func Load(dataDir string) (*Settings, error) {
	def := Default()

	v := viper.New()
	v.SetConfigFile(filepath.Join(dataDir, SettingsFile))
	v.SetConfigType("json")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("box_amount", def.BoxAmount)
	v.SetDefault("cell_amount", def.CellAmount)
	v.SetDefault("empty_string", def.EmptyString)
	v.SetDefault("full_string", def.FullString)
	v.SetDefault("driver", def.Driver)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_format", def.LogFormat)
	v.SetDefault("operator", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read settings: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	s.DataDir = dataDir

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Save writes settings.json into dataDir.
func Save(dataDir string, s *Settings) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	path := filepath.Join(dataDir, SettingsFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}

	return nil
}

// Validate checks the settings describe a usable grid and store.
func (s *Settings) Validate() error {
	if s.BoxAmount < 1 {
		return fmt.Errorf("box_amount must be at least 1 (got %d)", s.BoxAmount)
	}
	if s.CellAmount < 1 {
		return fmt.Errorf("cell_amount must be at least 1 (got %d)", s.CellAmount)
	}
	if err := s.Markers().Validate(); err != nil {
		return fmt.Errorf("invalid markers: %w", err)
	}
	switch s.Driver {
	case DriverXLSX, DriverSQLite:
	default:
		return fmt.Errorf("unknown driver %q (want %s or %s)", s.Driver, DriverXLSX, DriverSQLite)
	}
	if _, err := logging.ParseLevel(s.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	switch s.LogFormat {
	case "", "console", "json":
	default:
		return fmt.Errorf("unknown log_format %q (want console or json)", s.LogFormat)
	}
	return nil
}

// Markers returns the grid display tokens.
func (s *Settings) Markers() grid.Markers {
	return grid.Markers{Empty: s.EmptyString, Full: s.FullString}
}

// Capacity returns the total number of slots.
func (s *Settings) Capacity() int {
	return s.BoxAmount * s.CellAmount
}

// DatabasePath returns the sqlite file used by the sqlite driver.
func (s *Settings) DatabasePath() string {
	return filepath.Join(s.DataDir, "boxkeep.db")
}
