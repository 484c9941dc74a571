package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

// Driver names as registered with database/sql.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// goose keeps its dialect and base FS in package globals.
var gooseMu sync.Mutex

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Open opens (or creates) a SQLite database and bootstraps the schema.
// Foreign keys and the busy timeout are set through the DSN so that every
// pooled connection carries them; ON DELETE CASCADE depends on it.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		path = "app.db"
	}
	d, err := sql.Open(DriverSQLite, sqliteDSN(path))
	if err != nil {
		return nil, err
	}
	if strings.Contains(path, "mode=memory") || path == ":memory:" {
		// shared-cache memory databases report table locks under concurrent connections
		d.SetMaxOpenConns(1)
	}
	if err := d.Ping(); err != nil {
		_ = d.Close()
		return nil, err
	}
	// journal_mode may not be supported in some contexts (e.g., in-memory). Ignore errors.
	_, _ = d.Exec(`PRAGMA journal_mode=WAL`)
	if err := Migrate(context.Background(), d, DriverSQLite); err != nil {
		_ = d.Close()
		return nil, err
	}
	return d, nil
}

// OpenPostgres connects through the pgx stdlib driver and bootstraps the schema.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	d, err := sql.Open(DriverPostgres, dsn)
	if err != nil {
		return nil, err
	}
	if err := d.PingContext(ctx); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := Migrate(ctx, d, DriverPostgres); err != nil {
		_ = d.Close()
		return nil, err
	}
	return d, nil
}

// Migrate applies the embedded schema for the given driver. It is idempotent.
func Migrate(ctx context.Context, d *sql.DB, driver string) error {
	dir, err := migrationsDir(driver)
	if err != nil {
		return err
	}
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(driver); err != nil {
		return fmt.Errorf("goose dialect %s: %w", driver, err)
	}
	if err := gooseUpContext(ctx, d, dir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func migrationsDir(driver string) (string, error) {
	switch driver {
	case DriverSQLite:
		return "migrations/sqlite", nil
	case DriverPostgres:
		return "migrations/postgres", nil
	default:
		return "", fmt.Errorf("no migrations for driver %q", driver)
	}
}

func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	if !strings.HasPrefix(path, "file:") && path != ":memory:" {
		path = "file:" + path
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000"
}
