// Package journal implements the append/update-only durable ledger of
// per-plug-in scan state: the record of in-flight and terminal
// worker outcomes for one scan, which the orchestrator consults to decide
// what to dispatch and what to commit.
package journal

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/twardoch/pedalboard-pluginary/internal/model"
	"github.com/twardoch/pedalboard-pluginary/internal/pluginerr"
	"github.com/twardoch/pedalboard-pluginary/internal/sqliteutil"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SchemaVersion is the version this build knows how to read.
const SchemaVersion = "1"

// Store is the journal's sqlite-backed storage engine. Any number of
// worker processes may call Update concurrently on distinct rows; sqlite's
// WAL mode plus a shared busy_timeout serializes the underlying writes
// without the callers deadlocking.
type Store struct {
	db   *sql.DB
	path string
}

// Exists reports whether a journal file is present at path, the signal
// that a prior scan was interrupted and should be resumed.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Open opens (creating if absent) the journal database at path.
func Open(path string) (*Store, error) {
	db, err := sqliteutil.Open(path, migrationsFS, "migrations")
	if err != nil {
		return nil, pluginerr.New(pluginerr.CodeCorruptJournal, "failed to open journal").
			WithContext("path", path).WithCause(err)
	}
	version, err := sqliteutil.ReadVersion(db, "journal_meta")
	if err != nil {
		db.Close()
		return nil, pluginerr.New(pluginerr.CodeCorruptJournal, "failed to read journal version").
			WithContext("path", path).WithCause(err)
	}
	if version != SchemaVersion {
		db.Close()
		return nil, pluginerr.New(pluginerr.CodeIncompatibleSchema, "unrecognized journal schema version").
			WithContext("path", path).WithContext("found", version).WithContext("expected", SchemaVersion)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database handle without deleting the file.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the journal's backing file path.
func (s *Store) Path() string { return s.path }

// AddPending inserts each candidate with status=pending if its plugin_id
// (file path) is not already present. Existing rows are left untouched,
// making this safe to call repeatedly across resumes.
func (s *Store) AddPending(candidates []model.Candidate, now int64) error {
	if len(candidates) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO journal_entries (plugin_id, tentative_name, plugin_type, status, result, timestamp)
		VALUES (?, ?, ?, ?, NULL, ?)
		ON CONFLICT(plugin_id) DO NOTHING
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range candidates {
		if _, err := stmt.Exec(c.Path, c.TentativeName, string(c.PluginType), string(model.StatusPending), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetByStatus returns every row currently in the given status.
func (s *Store) GetByStatus(status model.JournalStatus) ([]model.JournalEntry, error) {
	rows, err := s.db.Query(`SELECT plugin_id, tentative_name, plugin_type, status, result, timestamp FROM journal_entries WHERE status = ?`, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

// All returns every row in the journal, regardless of status.
func (s *Store) All() ([]model.JournalEntry, error) {
	rows, err := s.db.Query(`SELECT plugin_id, tentative_name, plugin_type, status, result, timestamp FROM journal_entries`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]model.JournalEntry, error) {
	var out []model.JournalEntry
	for rows.Next() {
		var e model.JournalEntry
		var pluginType, status string
		var result sql.NullString
		if err := rows.Scan(&e.PluginID, &e.TentativeName, &pluginType, &status, &result, &e.Timestamp); err != nil {
			return nil, err
		}
		e.PluginType = model.PluginType(pluginType)
		e.Status = model.JournalStatus(status)
		if result.Valid {
			if e.Status == model.StatusSuccess {
				var rec model.PluginRecord
				if err := json.Unmarshal([]byte(result.String), &rec); err != nil {
					return nil, fmt.Errorf("decode journal result for %s: %w", e.PluginID, err)
				}
				e.Record = &rec
			} else {
				e.ErrorMessage = result.String
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Update transactionally writes one row's terminal or transitional state.
// Each call is durable before it returns: sqlite commits the surrounding
// implicit transaction to the WAL before Exec returns control.
func (s *Store) Update(pluginID string, status model.JournalStatus, record *model.PluginRecord, errMsg string, now int64) error {
	var result sql.NullString
	switch {
	case status == model.StatusSuccess && record != nil:
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		result = sql.NullString{String: string(data), Valid: true}
	case errMsg != "":
		result = sql.NullString{String: errMsg, Valid: true}
	}

	res, err := s.db.Exec(`
		UPDATE journal_entries SET status = ?, result = ?, timestamp = ? WHERE plugin_id = ?
	`, string(status), result, now, pluginID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("journal: no row for plugin_id %q", pluginID)
	}
	return nil
}

// GetStatus returns the current status of a single row, for the
// orchestrator's post-worker reconciliation check.
func (s *Store) GetStatus(pluginID string) (model.JournalStatus, error) {
	var status string
	err := s.db.QueryRow(`SELECT status FROM journal_entries WHERE plugin_id = ?`, pluginID).Scan(&status)
	if err != nil {
		return "", err
	}
	return model.JournalStatus(status), nil
}

// Summary returns the count of rows per status.
func (s *Store) Summary() (map[model.JournalStatus]int, error) {
	rows, err := s.db.Query(`SELECT status, COUNT(*) FROM journal_entries GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[model.JournalStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		out[model.JournalStatus(status)] = count
	}
	return out, rows.Err()
}

// Drop closes and removes the journal file, along with any WAL/SHM
// sidecar files sqlite left behind. Called after a successful commit, by
// rescan, and by the CLI's clear command. After a commit, an error here
// does not mean the commit failed: the catalog transaction has already
// landed.
func Drop(path string, s *Store) error {
	if s != nil {
		s.Close()
	}
	for _, suffix := range []string{"", "-wal", "-shm"} {
		if err := os.Remove(path + suffix); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
