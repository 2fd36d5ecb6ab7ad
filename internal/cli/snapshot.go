package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/example/boxkeep/internal/core/ledger"
	"github.com/example/boxkeep/internal/ports/secondary"
	"github.com/example/boxkeep/internal/wire"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Inspect and transfer monthly snapshots",
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved months",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext()
		store, err := wire.SnapshotStore(wire.Settings().Driver)
		if err != nil {
			return err
		}
		periods, err := store.Periods(ctx)
		if err != nil {
			return fmt.Errorf("failed to list snapshots: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(periods) == 0 {
			fmt.Fprintln(out, "No snapshots found.")
			return nil
		}
		for _, p := range periods {
			fmt.Fprintln(out, p)
		}
		return nil
	},
}

var snapshotCopyCmd = &cobra.Command{
	Use:   "copy",
	Short: "Copy snapshots from one store to another",
	Long: `Copy monthly snapshots between stores, for example to move legacy
workbooks into sqlite:

  boxkeep snapshot copy --from xlsx --to sqlite`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		only, _ := cmd.Flags().GetString("period")

		if from == to {
			return fmt.Errorf("--from and --to must differ")
		}

		src, err := wire.SnapshotStore(from)
		if err != nil {
			return err
		}
		dst, err := wire.SnapshotStore(to)
		if err != nil {
			return err
		}

		var periods []ledger.Period
		if only != "" {
			p, err := ledger.ParsePeriod(only)
			if err != nil {
				return err
			}
			periods = []ledger.Period{p}
		}

		_, err = copySnapshots(commandContext(), src, dst, periods, cmd.OutOrStdout())
		return err
	},
}

func init() {
	snapshotCopyCmd.Flags().String("from", "xlsx", "source store: xlsx or sqlite")
	snapshotCopyCmd.Flags().String("to", "sqlite", "destination store: xlsx or sqlite")
	snapshotCopyCmd.Flags().String("period", "", "copy a single month (YYYYMM)")
	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotCopyCmd)
}

// SnapshotCmd returns the snapshot command
func SnapshotCmd() *cobra.Command {
	return snapshotCmd
}

// copySnapshots copies the listed periods, or every source period when
// periods is empty. Rows are copied verbatim, sentinel included.
func copySnapshots(ctx context.Context, src, dst secondary.SnapshotStore, periods []ledger.Period, out io.Writer) (int, error) {
	if len(periods) == 0 {
		var err error
		periods, err = src.Periods(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to list source snapshots: %w", err)
		}
	}

	copied := 0
	for _, p := range periods {
		rows, err := src.Load(ctx, p)
		if err != nil {
			return copied, fmt.Errorf("failed to load %s: %w", p, err)
		}
		if err := dst.Save(ctx, p, rows); err != nil {
			return copied, fmt.Errorf("failed to save %s: %w", p, err)
		}
		fmt.Fprintf(out, "✓ Copied %s (%d row(s))\n", p, len(rows))
		copied++
	}

	if copied == 0 {
		fmt.Fprintln(out, "No snapshots to copy.")
	}
	return copied, nil
}
