package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/pressly/goose/v3"
	"modernc.org/sqlite" // registers the "sqlite" driver
)

// Dialect selects the SQL flavour of the backing store.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

const (
	sqliteDriverName   = "sqlite"
	postgresDriverName = "pgx" // pgx/v5/stdlib registers as "pgx"

	defaultSQLitePath = "film.db"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

// Options configures Open.
type Options struct {
	Driver       string // "sqlite" (default) or "postgres"
	DSN          string // file path for sqlite, connection URL for postgres
	MaxOpenConns int    // ignored for sqlite
	Logger       goose.Logger
}

// DriverName is the database/sql driver registered for d.
func (d Dialect) DriverName() string {
	if d == DialectPostgres {
		return postgresDriverName
	}
	return sqliteDriverName
}

// ParseDialect maps a configured driver name onto a Dialect.
func ParseDialect(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite", "sqlite3":
		return DialectSQLite, nil
	case "postgres", "postgresql", "pgx":
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("unsupported db driver %q", driver)
	}
}

// Open connects to the configured store, verifies the connection and applies
// pending migrations.
func Open(ctx context.Context, opts Options) (*sql.DB, Dialect, error) {
	dialect, err := ParseDialect(opts.Driver)
	if err != nil {
		return nil, "", err
	}

	var handle *sql.DB
	switch dialect {
	case DialectPostgres:
		handle, err = openPostgres(ctx, opts)
	default:
		handle, err = openSQLite(ctx, opts)
	}
	if err != nil {
		return nil, "", err
	}

	if err := Migrate(ctx, handle, dialect, opts.Logger); err != nil {
		_ = handle.Close()
		return nil, "", err
	}
	return handle, dialect, nil
}

var registerPragmas sync.Once

// sqlitePragmas run on every new connection so a recycled connection keeps
// foreign keys (and with them ON DELETE SET NULL) enforced.
const sqlitePragmas = `
	pragma journal_mode = WAL;
	pragma foreign_keys = ON;
	pragma busy_timeout = 5000;
	`

func openSQLite(ctx context.Context, opts Options) (*sql.DB, error) {
	path := opts.DSN
	if path == "" {
		path = defaultSQLitePath
	}

	registerPragmas.Do(func() {
		sqlite.RegisterConnectionHook(func(conn sqlite.ExecQuerierContext, _ string) error {
			_, err := conn.ExecContext(context.Background(), sqlitePragmas, nil)
			return err
		})
	})

	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// Conservative pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is not great with many writers
	db.SetMaxIdleConns(1)

	// Fail fast if the DB cannot be reached
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

func openPostgres(ctx context.Context, opts Options) (*sql.DB, error) {
	if opts.DSN == "" {
		return nil, fmt.Errorf("postgres requires a connection string")
	}
	db, err := sql.Open(postgresDriverName, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate applies every embedded migration for dialect that has not run yet.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect, logger goose.Logger) error {
	gooseDialect := goose.DialectSQLite3
	if dialect == DialectPostgres {
		gooseDialect = goose.DialectPostgres
	}

	dir, err := fs.Sub(migrations, "migrations/"+string(dialect))
	if err != nil {
		return fmt.Errorf("locate %s migrations: %w", dialect, err)
	}

	if logger == nil {
		logger = goose.NopLogger()
	}
	provider, err := goose.NewProvider(gooseDialect, db, dir,
		goose.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
