package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed files/*.sql
var migrationFiles embed.FS

// Status describes where a database sits relative to the migration set
// embedded in this binary.
type Status struct {
	Current  uint // version recorded in the database; 0 when unmigrated
	Latest   uint // highest version in the embedded set
	Dirty    bool // a previous migration failed partway through
	Migrated bool // the database carries any schema version at all
}

// Pending reports how many migrations the database is behind.
func (s Status) Pending() uint {
	if !s.Migrated || s.Current >= s.Latest {
		return 0
	}
	return s.Latest - s.Current
}

// DBStatus reads the database's schema version and compares it against the
// embedded migration set.
func DBStatus(db *sql.DB) (Status, error) {
	m, err := newMigrate(db)
	if err != nil {
		return Status{}, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	// m is not closed here: closing it would close the db connection,
	// which the caller owns.

	st := Status{Latest: latestVersion()}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return st, nil
	case err != nil:
		return Status{}, fmt.Errorf("failed to get database version: %w", err)
	}

	st.Current = version
	st.Dirty = dirty
	st.Migrated = true
	return st, nil
}

// CheckDBMigrationStatus verifies that the database schema is up-to-date.
// Returns nil if the database is at the latest version.
func CheckDBMigrationStatus(db *sql.DB) error {
	st, err := DBStatus(db)
	if err != nil {
		return err
	}

	switch {
	case st.Dirty:
		return fmt.Errorf("database is in dirty state at version %d (migration failed previously)", st.Current)
	case !st.Migrated:
		return fmt.Errorf("database has no schema version (needs migration)")
	case st.Current < st.Latest:
		return fmt.Errorf("database is at version %d but latest is %d (%d migrations behind)",
			st.Current, st.Latest, st.Pending())
	case st.Current > st.Latest:
		return fmt.Errorf("database version %d is ahead of binary version %d (binary needs update)",
			st.Current, st.Latest)
	}

	return nil
}

// MigrateUp runs all pending migrations to bring the database to the latest
// version. Running against an up-to-date database is a no-op.
func MigrateUp(db *sql.DB) error {
	m, err := newMigrate(db)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// newMigrate creates a migrate instance over the embedded migration files.
func newMigrate(db *sql.DB) (*migrate.Migrate, error) {
	sourceDriver, err := iofs.New(migrationFiles, "files")
	if err != nil {
		return nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	dbDriver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		sourceDriver.Close()
		return nil, fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", dbDriver)
	if err != nil {
		sourceDriver.Close()
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return m, nil
}

// latestVersion walks the embedded set for its highest version number. The
// set is compiled into the binary, so a read failure is a build defect;
// 0 means the set is empty.
func latestVersion() uint {
	src, err := iofs.New(migrationFiles, "files")
	if err != nil {
		return 0
	}
	defer src.Close()

	version, err := src.First()
	if err != nil {
		return 0
	}
	for {
		next, err := src.Next(version)
		if err != nil {
			// Next errors once the last migration is reached.
			return version
		}
		version = next
	}
}
