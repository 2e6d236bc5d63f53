package database

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"path"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver

	"accountly/internal/config"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var embedMigrations embed.FS

// NewConnection opens and pings a database for the given driver ("postgres" or "sqlite").
// For SQLite use a file path or ":memory:".
func NewConnection(driver, databaseURL string) (*sql.DB, error) {
	driverName, err := sqlDriverName(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == config.DriverSQLite {
		// SQLite allows a single writer; an in-memory database also lives only as long as its connection.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		for _, pragma := range []string{"PRAGMA foreign_keys = ON;", "PRAGMA busy_timeout = 5000;"} {
			if _, err := db.Exec(pragma); err != nil {
				db.Close()
				return nil, fmt.Errorf("failed to set pragma: %w", err)
			}
		}
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("connected to database", "driver", driver)
	return db, nil
}

// RunMigrations applies the embedded goose migrations for the driver's dialect.
func RunMigrations(db *sql.DB, driver string) error {
	dialect, err := gooseDialect(driver)
	if err != nil {
		return err
	}

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(db, path.Join("migrations", driver)); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("database migrations completed", "driver", driver)
	return nil
}

// Open connects and migrates in one step.
func Open(driver, databaseURL string) (*sql.DB, error) {
	db, err := NewConnection(driver, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(db, driver); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func sqlDriverName(driver string) (string, error) {
	switch driver {
	case config.DriverPostgres:
		return "postgres", nil
	case config.DriverSQLite:
		return "sqlite", nil
	}
	return "", fmt.Errorf("unsupported database driver %q", driver)
}

func gooseDialect(driver string) (string, error) {
	switch driver {
	case config.DriverPostgres:
		return "postgres", nil
	case config.DriverSQLite:
		return "sqlite3", nil
	}
	return "", fmt.Errorf("unsupported database driver %q", driver)
}
