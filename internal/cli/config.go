package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/boxkeep/internal/config"
	"github.com/example/boxkeep/internal/wire"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage settings.json",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default settings file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		dataDir := config.ResolveDataDir(globalOpts.dataDir)
		path := filepath.Join(dataDir, config.SettingsFile)

		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to check settings: %w", err)
		}

		s := config.Default()
		if globalOpts.driver != "" {
			s.Driver = globalOpts.driver
		}
		if err := s.Validate(); err != nil {
			return err
		}
		if err := config.Save(dataDir, &s); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Settings written to %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := wire.Settings()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Data dir:  %s\n", s.DataDir)
		fmt.Fprintf(out, "Driver:    %s\n", s.Driver)
		fmt.Fprintf(out, "Grid:      %d boxes x %d cells (%d slots)\n", s.BoxAmount, s.CellAmount, s.Capacity())
		fmt.Fprintf(out, "Markers:   empty=%q full=%q\n", s.EmptyString, s.FullString)
		fmt.Fprintf(out, "Logging:   %s (%s)\n", s.LogLevel, s.LogFormat)
		if s.Operator != "" {
			fmt.Fprintf(out, "Operator:  %s\n", s.Operator)
		}
		return nil
	},
}

func init() {
	configInitCmd.Flags().Bool("force", false, "overwrite an existing settings file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

// ConfigCmd returns the config command
func ConfigCmd() *cobra.Command {
	return configCmd
}
