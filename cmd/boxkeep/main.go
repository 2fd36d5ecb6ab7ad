package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/boxkeep/internal/cli"
	"github.com/example/boxkeep/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "boxkeep",
		Short:   "boxkeep - storage box and cell tracker",
		Version: version.String(),
		Long: `boxkeep tracks items placed in storage boxes divided into numbered cells.
It assigns free cells, records retrievals and keeps one snapshot per month.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cli.RegisterGlobalFlags(rootCmd)

	// Month lifecycle
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.GridCmd())
	rootCmd.AddCommand(cli.CommitCmd())

	// Items
	rootCmd.AddCommand(cli.PlaceCmd())
	rootCmd.AddCommand(cli.RetrieveCmd())
	rootCmd.AddCommand(cli.DeleteCmd())
	rootCmd.AddCommand(cli.PendingCmd())
	rootCmd.AddCommand(cli.SearchCmd())
	rootCmd.AddCommand(cli.ReportCmd())

	// Interactive session
	rootCmd.AddCommand(cli.ShellCmd())

	// Settings and storage
	rootCmd.AddCommand(cli.ConfigCmd())
	rootCmd.AddCommand(cli.SnapshotCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
