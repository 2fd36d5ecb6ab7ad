package cli

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/boxkeep/internal/wire"
)

// ReportCmd returns the report command
func ReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export the items placed on a day to a workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, _ := cmd.Flags().GetString("date")
			out, _ := cmd.Flags().GetString("out")

			now := time.Now()
			day, err := parseDay(date, now)
			if err != nil {
				return err
			}
			if out == "" {
				out = filepath.Join(".", defaultReportName(day))
			}

			ctx := commandContext()
			if err := openPeriod(ctx, now); err != nil {
				return err
			}
			_, err = wire.WarehouseAdapterWithOutput(cmd.OutOrStdout()).Report(ctx, day, out)
			return err
		},
	}
	cmd.Flags().StringP("date", "d", "", "placement day as YYYY-MM-DD (default today)")
	cmd.Flags().StringP("out", "o", "", "destination workbook (default ./YYYYMMDD_.xlsx)")
	return cmd
}
