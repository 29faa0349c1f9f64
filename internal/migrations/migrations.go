// Package migrations embeds the Postgres schema and applies it with
// golang-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed *.sql
var files embed.FS

// Status is the schema version before and after a run.
type Status struct {
	Before uint
	After  uint
	Dirty  bool
}

func newMigrate(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(files, ".")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	driver, err := migratepostgres.WithInstance(db, &migratepostgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("postgres migrate driver: %w", err)
	}
	return migrate.NewWithInstance("iofs", src, "postgres", driver)
}

func version(m *migrate.Migrate) (uint, bool, error) {
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

// Up applies every pending migration.
func Up(db *sql.DB) (Status, error) {
	return run(db, func(m *migrate.Migrate) error { return m.Up() })
}

// Down rolls back the given number of migrations.
func Down(db *sql.DB, steps int) (Status, error) {
	if steps <= 0 {
		return Status{}, fmt.Errorf("steps must be positive, got %d", steps)
	}
	return run(db, func(m *migrate.Migrate) error { return m.Steps(-steps) })
}

// Version reports the current schema version.
func Version(db *sql.DB) (Status, error) {
	return run(db, func(*migrate.Migrate) error { return nil })
}

func run(db *sql.DB, op func(*migrate.Migrate) error) (Status, error) {
	m, err := newMigrate(db)
	if err != nil {
		return Status{}, err
	}
	var st Status
	if st.Before, _, err = version(m); err != nil {
		return st, err
	}
	if err := op(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return st, err
	}
	if st.After, st.Dirty, err = version(m); err != nil {
		return st, err
	}
	return st, nil
}
