// Package sqliteutil holds the sqlite connection and migration wiring
// shared by the catalog and journal stores.
package sqliteutil

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite" // pure Go sqlite driver
)

// pragmas tuned for a single-writer, many-short-transaction workload: WAL
// mode lets readers proceed while a writer holds the log, NORMAL sync
// trades a little durability-under-power-loss for throughput (acceptable
// since the journal/catalog are the source of truth for resumption, not
// the only copy of anything externally committed), and busy_timeout
// serializes concurrent writers without returning SQLITE_BUSY to callers.
var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA foreign_keys=ON",
}

// Open opens path as a sqlite database, applies the standard pragma set,
// and runs the migrations embedded in fsys (rooted at dir) to completion.
func Open(path string, fsys embed.FS, dir string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// The connection-scoped pragmas below reach only the connection they
	// run on, so the pool is held to that one connection.
	db.SetMaxOpenConns(1)
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("configure %s: %w", path, err)
		}
	}
	if err := migrateUp(db, fsys, dir); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return db, nil
}

func migrateUp(db *sql.DB, fsys embed.FS, dir string) error {
	source, err := iofs.New(fsys, dir)
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("migrator: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

// ReadVersion returns the value of key "version" from table metaTable,
// used by readers to refuse an unrecognized schema version before
// touching any other table.
func ReadVersion(db *sql.DB, metaTable string) (string, error) {
	var v string
	q := fmt.Sprintf("SELECT value FROM %s WHERE key = 'version'", metaTable)
	if err := db.QueryRow(q).Scan(&v); err != nil {
		return "", err
	}
	return v, nil
}
