// Package wire provides dependency injection for the boxkeep application.
// It creates singleton services with lazy initialization.
package wire

import (
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/rs/zerolog"

	cliadapter "github.com/example/boxkeep/internal/adapters/cli"
	"github.com/example/boxkeep/internal/adapters/sqlite"
	"github.com/example/boxkeep/internal/adapters/xlsx"
	"github.com/example/boxkeep/internal/app"
	"github.com/example/boxkeep/internal/config"
	"github.com/example/boxkeep/internal/db"
	"github.com/example/boxkeep/internal/logging"
	"github.com/example/boxkeep/internal/ports/primary"
	"github.com/example/boxkeep/internal/ports/secondary"
)

// Options carries command-line overrides applied on top of settings.json.
type Options struct {
	DataDir  string
	Driver   string
	LogLevel string
}

var (
	opts             Options
	settings         *config.Settings
	logger           zerolog.Logger
	warehouseService primary.WarehouseService
	once             sync.Once

	database *sql.DB
	dbOnce   sync.Once
	dbErr    error
)

// Configure sets the overrides used at initialization. It has no effect
// once any service has been requested.
func Configure(o Options) {
	opts = o
}

// Settings returns the effective settings.
func Settings() *config.Settings {
	once.Do(initServices)
	return settings
}

// Logger returns the application logger.
func Logger() zerolog.Logger {
	once.Do(initServices)
	return logger
}

// WarehouseService returns the singleton WarehouseService instance.
func WarehouseService() primary.WarehouseService {
	once.Do(initServices)
	return warehouseService
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	dataDir := config.ResolveDataDir(opts.DataDir)

	loaded, err := config.Load(dataDir)
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}
	if opts.Driver != "" {
		loaded.Driver = opts.Driver
	}
	if opts.LogLevel != "" {
		loaded.LogLevel = opts.LogLevel
	}
	if err := loaded.Validate(); err != nil {
		log.Fatalf("invalid settings: %v", err)
	}
	settings = loaded

	logger = logging.New(logging.Options{
		Level:  settings.LogLevel,
		Format: settings.LogFormat,
	}).With().Str("driver", settings.Driver).Logger()

	snapshots, err := snapshotStore(settings.Driver)
	if err != nil {
		log.Fatalf("failed to initialize snapshot store: %v", err)
	}

	// Create services (primary ports implementation)
	recordStore := app.NewRecordStore(snapshots, xlsx.NewReportWriter())
	warehouseService = app.NewWarehouseService(*settings, recordStore, logger)
}

// SnapshotStore returns a snapshot store for driver rooted at the
// configured data directory.
func SnapshotStore(driver string) (secondary.SnapshotStore, error) {
	once.Do(initServices)
	return snapshotStore(driver)
}

func snapshotStore(driver string) (secondary.SnapshotStore, error) {
	switch driver {
	case config.DriverXLSX:
		return xlsx.NewSnapshotStore(settings.DataDir), nil
	case config.DriverSQLite:
		dbOnce.Do(func() {
			database, dbErr = db.Open(settings.DatabasePath())
		})
		if dbErr != nil {
			return nil, fmt.Errorf("failed to open database: %w", dbErr)
		}
		return sqlite.NewSnapshotRepository(database), nil
	default:
		return nil, fmt.Errorf("unknown driver %q", driver)
	}
}

// Close releases the database connection if one was opened.
func Close() error {
	if database != nil {
		return database.Close()
	}
	return nil
}

// WarehouseAdapter returns a new WarehouseAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func WarehouseAdapter() *cliadapter.WarehouseAdapter {
	return WarehouseAdapterWithOutput(os.Stdout)
}

// WarehouseAdapterWithOutput returns a new WarehouseAdapter writing to the given output.
func WarehouseAdapterWithOutput(out io.Writer) *cliadapter.WarehouseAdapter {
	once.Do(initServices)
	return cliadapter.NewWarehouseAdapter(warehouseService, out)
}
