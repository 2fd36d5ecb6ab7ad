package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/boxkeep/internal/core/ledger"
	"github.com/example/boxkeep/internal/ctxutil"
	"github.com/example/boxkeep/internal/wire"
)

// DateLayout is the command-line form of a calendar day.
const DateLayout = "2006-01-02"

var globalOpts struct {
	dataDir  string
	driver   string
	logLevel string
	operator string
}

// RegisterGlobalFlags adds the persistent flags shared by every command and
// hands them to wire before any command runs.
func RegisterGlobalFlags(root *cobra.Command) {
	pf := root.PersistentFlags()
	pf.StringVar(&globalOpts.dataDir, "data-dir", "", "data directory (default $BOXKEEP_DATA_DIR or ./bin)")
	pf.StringVar(&globalOpts.driver, "driver", "", "snapshot store: xlsx or sqlite (overrides settings)")
	pf.StringVar(&globalOpts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&globalOpts.operator, "operator", "", "operator name recorded in logs")

	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		wire.Configure(wire.Options{
			DataDir:  globalOpts.dataDir,
			Driver:   globalOpts.driver,
			LogLevel: globalOpts.logLevel,
		})
	}
	root.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return wire.Close()
	}
}

// commandContext returns a context carrying the operator: the flag, then
// the settings value, then $USER.
func commandContext() context.Context {
	op := globalOpts.operator
	if op == "" {
		op = wire.Settings().Operator
	}
	if op == "" {
		op = os.Getenv("USER")
	}
	return ctxutil.WithOperator(context.Background(), op)
}

// openPeriod opens the current period without printing anything.
func openPeriod(ctx context.Context, now time.Time) error {
	if _, err := wire.WarehouseService().InitializePeriod(ctx, now); err != nil {
		return fmt.Errorf("failed to open period: %w", err)
	}
	return nil
}

// parseIDs converts record id arguments.
func parseIDs(args []string) ([]int, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: record ids", ledger.ErrMissingInput)
	}
	ids := make([]int, 0, len(args))
	for _, a := range args {
		id, err := strconv.Atoi(a)
		if err != nil || id < 1 {
			return nil, fmt.Errorf("invalid record id %q", a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseDay reads a YYYY-MM-DD day in local time. An empty value is today.
func parseDay(s string, now time.Time) (time.Time, error) {
	if s == "" {
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), nil
	}
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

// defaultReportName follows the YYYYMMDD_.xlsx naming of daily reports.
func defaultReportName(day time.Time) string {
	return day.Format("20060102") + "_.xlsx"
}
