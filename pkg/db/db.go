package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
	"luckyman-server/internal/config"

	_ "github.com/golang-migrate/migrate/v4/source/file" // needed
	_ "github.com/lib/pq"                                // needed
	_ "modernc.org/sqlite"                               // needed
)

// Supported drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

//go:embed migrations
var migrations embed.FS

var (
	mu       sync.Mutex
	instance *sql.DB
)

// Instance returns a database instance
// The driver and DSN come from the configuration
func Instance() *sql.DB {
	mu.Lock()
	defer mu.Unlock()

	if instance == nil {
		cfg := config.Instance()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		dbh, err := Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			panic(err)
		}

		instance = dbh
	}

	return instance
}

// Open opens and pings a database
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverPostgres:
	case DriverSQLite:
		if dsn != ":memory:" {
			if parent := filepath.Dir(dsn); parent != "" && parent != "." {
				if err := os.MkdirAll(parent, 0o755); err != nil {
					return nil, err
				}
			}
		}
	default:
		return nil, fmt.Errorf("unknown database driver: %s", driver)
	}

	dbh, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if driver == DriverSQLite {
		// sqlite allows one writer, and an in-memory database only lives as long as its connection
		dbh.SetMaxOpenConns(1)
		dbh.SetMaxIdleConns(1)
		dbh.SetConnMaxLifetime(0)

		for _, pragma := range []string{`PRAGMA busy_timeout = 5000`, `PRAGMA foreign_keys = ON`} {
			if _, err := dbh.ExecContext(ctx, pragma); err != nil {
				_ = dbh.Close()
				return nil, err
			}
		}
	}

	if err := dbh.PingContext(ctx); err != nil {
		_ = dbh.Close()
		return nil, err
	}

	return dbh, nil
}

// Migrate runs the migrations
// If migrationsPath is empty, the migrations built into the binary are used
func Migrate(dbh *sql.DB, driver, migrationsPath string) error {
	var driverInstance database.Driver
	var err error
	switch driver {
	case DriverPostgres:
		driverInstance, err = postgres.WithInstance(dbh, &postgres.Config{})
	case DriverSQLite:
		driverInstance, err = sqlite.WithInstance(dbh, &sqlite.Config{})
	default:
		return fmt.Errorf("unknown database driver: %s", driver)
	}

	if err != nil {
		return err
	}

	var m *migrate.Migrate
	if migrationsPath == "" {
		logrus.WithField("driver", driver).Info("running built-in migrations")
		source, err := iofs.New(migrations, "migrations/"+driver)
		if err != nil {
			return err
		}

		m, err = migrate.NewWithInstance("iofs", source, driver, driverInstance)
		if err != nil {
			return err
		}
	} else {
		logrus.WithField("migrationsPath", migrationsPath).Info("running migrations")
		m, err = migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsPath), driver, driverInstance)
		if err != nil {
			return err
		}
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}

// Scanner is an interface that sql should've provided
// No snark here...
type Scanner interface {
	Scan(...interface{}) error
}
