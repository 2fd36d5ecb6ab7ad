package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/example/boxkeep/internal/wire"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Open the current month, carrying over items still in storage",
		Long: `Open the snapshot of the current month. On the first run of a month the
snapshot is created from the previous month's items that are still in storage.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext()
			_, err := wire.WarehouseAdapterWithOutput(cmd.OutOrStdout()).Init(ctx, time.Now())
			return err
		},
	}
}

// GridCmd returns the grid command
func GridCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grid",
		Short: "Show box and cell occupancy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext()
			if err := openPeriod(ctx, time.Now()); err != nil {
				return err
			}
			_, err := wire.WarehouseAdapterWithOutput(cmd.OutOrStdout()).Grid(ctx)
			return err
		},
	}
}

// CommitCmd returns the commit command
func CommitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commit",
		Short: "Commit pending placements and save",
		Long: `Mark every pending placement as reported and save the month snapshot.
Only committed items can be retrieved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext()
			now := time.Now()
			if err := openPeriod(ctx, now); err != nil {
				return err
			}
			return wire.WarehouseAdapterWithOutput(cmd.OutOrStdout()).Commit(ctx, now)
		},
	}
}
