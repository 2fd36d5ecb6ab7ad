package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/example/boxkeep/internal/ports/primary"
	"github.com/example/boxkeep/internal/wire"
)

// PlaceCmd returns the place command
func PlaceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "place <serial>...",
		Short: "Place items in the next free cells",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext()
			now := time.Now()
			if err := openPeriod(ctx, now); err != nil {
				return err
			}

			svc := wire.WarehouseService()
			_, placeErr := wire.WarehouseAdapterWithOutput(cmd.OutOrStdout()).Place(ctx, args, now)
			// Keep whatever was placed before a failure
			if svc.Dirty() {
				if err := svc.Save(ctx); err != nil {
					return err
				}
			}
			return placeErr
		},
	}
}

// RetrieveCmd returns the retrieve command
func RetrieveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "retrieve <id>...",
		Short: "Mark committed items as taken out of storage",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			ctx := commandContext()
			now := time.Now()
			if err := openPeriod(ctx, now); err != nil {
				return err
			}

			at := now
			if date, _ := cmd.Flags().GetString("date"); date != "" {
				day, err := parseDay(date, now)
				if err != nil {
					return err
				}
				y, mo, d := day.Date()
				h, mi, s := now.Clock()
				at = time.Date(y, mo, d, h, mi, s, 0, time.Local)
			}

			res, err := wire.WarehouseAdapterWithOutput(cmd.OutOrStdout()).Retrieve(ctx, ids, at)
			if err != nil {
				return err
			}
			if len(res.Updated) == 0 {
				return nil
			}
			return wire.WarehouseService().Save(ctx)
		},
	}
	cmd.Flags().String("date", "", "retrieval day as YYYY-MM-DD (default today)")
	return cmd
}

// DeleteCmd returns the delete command
func DeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete records and free their cells",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			ctx := commandContext()
			if err := openPeriod(ctx, time.Now()); err != nil {
				return err
			}
			if err := wire.WarehouseAdapterWithOutput(cmd.OutOrStdout()).Delete(ctx, ids); err != nil {
				return err
			}
			return wire.WarehouseService().Save(ctx)
		},
	}
}

// PendingCmd returns the pending command
func PendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List placements not yet committed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext()
			if err := openPeriod(ctx, time.Now()); err != nil {
				return err
			}
			_, err := wire.WarehouseAdapterWithOutput(cmd.OutOrStdout()).Pending(ctx)
			return err
		},
	}
}

// SearchCmd returns the search command
func SearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Find committed items still in storage",
		Long:  `Find committed items still in storage by serial prefix, placement day, or both.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			serial, _ := cmd.Flags().GetString("serial")
			date, _ := cmd.Flags().GetString("date")

			ctx := commandContext()
			now := time.Now()
			filters := primary.SearchFilters{SerialPrefix: serial}
			if date != "" {
				day, err := parseDay(date, now)
				if err != nil {
					return err
				}
				filters.PlacedOn = &day
			}

			if err := openPeriod(ctx, now); err != nil {
				return err
			}
			_, err := wire.WarehouseAdapterWithOutput(cmd.OutOrStdout()).Search(ctx, filters)
			return err
		},
	}
	cmd.Flags().StringP("serial", "s", "", "serial number prefix")
	cmd.Flags().StringP("date", "d", "", "placement day as YYYY-MM-DD")
	return cmd
}
