// Package store is the local SQLite store. The client keeps its remembered
// identity here and the bridge keeps favorites.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"github.com/matheus3301/waha-client/internal/store/migrations"
)

// Schema is the migration state found or produced by Open.
type Schema struct {
	Version  uint
	Dirty    bool
	Upgraded bool
}

// DB is an open, migrated store.
type DB struct {
	*sql.DB
	schema Schema
}

var pragmas = url.Values{
	"_journal_mode": {"WAL"},
	"_busy_timeout": {"5000"},
	"_foreign_keys": {"on"},
}

// Open opens the database at path and brings its schema up to date.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path+"?"+pragmas.Encode())
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	schema, err := upgrade(conn)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &DB{DB: conn, schema: schema}, nil
}

// Schema reports the state Open left the schema in.
func (db *DB) Schema() Schema { return db.schema }

func upgrade(conn *sql.DB) (Schema, error) {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return Schema{}, fmt.Errorf("migration source: %w", err)
	}
	drv, err := sqlite3.WithInstance(conn, &sqlite3.Config{})
	if err != nil {
		return Schema{}, fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", drv)
	if err != nil {
		return Schema{}, fmt.Errorf("migration instance: %w", err)
	}

	var s Schema
	switch err := m.Up(); {
	case err == nil:
		s.Upgraded = true
	case errors.Is(err, migrate.ErrNoChange):
	default:
		return Schema{}, fmt.Errorf("migration up: %w", err)
	}
	s.Version, s.Dirty, err = m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return Schema{}, fmt.Errorf("migration version: %w", err)
	}
	return s, nil
}
