package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite" // Pure Go sqlite driver
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// BusyTimeout is how long a statement waits on a lock held by another process,
// e.g. the CLI writing an export while the bot records a reminder.
const BusyTimeout = 5 * time.Second

// ErrDirtySchema is returned when a previous migration stopped half way.
// The schema has to be repaired by hand before Lembas can use the file again.
var ErrDirtySchema = errors.New("database schema is dirty")

// DB is the local store for shopping list exports and reminder bookkeeping.
type DB struct {
	SQL  *sql.DB
	path string
}

// Schema describes the migration state of a database file.
type Schema struct {
	Version uint
	Dirty   bool
}

// NewDB creates the directory for dbPath if needed, brings the schema up to date
// and opens a connection for the application.
func NewDB(dbPath string, log logrus.FieldLogger) (*DB, error) {
	log = log.WithField("path", dbPath)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	if err := RunMigrations(dbPath, log); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	conn, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite serialises writers; one connection keeps the pragmas and avoids SQLITE_BUSY
	// between our own goroutines.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{SQL: conn, path: dbPath}
	schema, err := db.Schema()
	if err != nil {
		conn.Close()
		return nil, err
	}
	log.WithField("schema_version", schema.Version).Debug("Database ready")
	return db, nil
}

// dsn builds a modernc sqlite DSN applying the connection pragmas.
func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", BusyTimeout.Milliseconds()))
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "foreign_keys(1)")
	return "file:" + path + "?" + q.Encode()
}

// Path returns the file the database was opened from.
func (d *DB) Path() string {
	return d.path
}

// Schema reads the migration state recorded by RunMigrations.
func (d *DB) Schema() (Schema, error) {
	var s Schema
	err := d.SQL.QueryRow(`SELECT version, dirty FROM schema_migrations LIMIT 1`).Scan(&s.Version, &s.Dirty)
	if errors.Is(err, sql.ErrNoRows) {
		return Schema{}, nil
	}
	if err != nil {
		return Schema{}, fmt.Errorf("failed to read schema version: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.SQL.Close()
}

// RunMigrations applies the embedded migrations to the file at databasePath.
// A dirty schema is reported as ErrDirtySchema instead of being migrated further.
func RunMigrations(databasePath string, log logrus.FieldLogger) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create iofs driver: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite://"+databasePath)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	before, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
	case err != nil:
		return fmt.Errorf("failed to read migration version: %w", err)
	case dirty:
		return fmt.Errorf("%w at version %d", ErrDirtySchema, before)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	after, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	if after != before {
		log.WithFields(logrus.Fields{"from": before, "to": after}).Info("Database migrated")
	}
	return nil
}
