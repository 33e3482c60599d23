// Package catalog implements the durable, indexed store of committed
// plug-in records. Only the orchestrator writes to it; readers take
// no locks beyond what sqlite's WAL mode already provides for concurrent
// reads.
package catalog

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/twardoch/pedalboard-pluginary/internal/model"
	"github.com/twardoch/pedalboard-pluginary/internal/pluginerr"
	"github.com/twardoch/pedalboard-pluginary/internal/sqliteutil"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SchemaVersion is the version this build knows how to read.
const SchemaVersion = "1"

// Store is the catalog's sqlite-backed storage engine.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if absent) the catalog database at path, applying
// migrations and refusing to proceed if its schema version is one this
// build does not recognize.
func Open(path string) (*Store, error) {
	db, err := sqliteutil.Open(path, migrationsFS, "migrations")
	if err != nil {
		return nil, pluginerr.New(pluginerr.CodeCorruptCatalog, "failed to open catalog").
			WithContext("path", path).WithCause(err)
	}
	version, err := sqliteutil.ReadVersion(db, "cache_meta")
	if err != nil {
		db.Close()
		return nil, pluginerr.New(pluginerr.CodeCorruptCatalog, "failed to read catalog version").
			WithContext("path", path).WithCause(err)
	}
	if version != SchemaVersion {
		db.Close()
		return nil, pluginerr.New(pluginerr.CodeIncompatibleSchema, "unrecognized catalog schema version").
			WithContext("path", path).WithContext("found", version).WithContext("expected", SchemaVersion)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// LoadAll returns every committed record, keyed by id.
func (s *Store) LoadAll() (map[string]model.PluginRecord, error) {
	rows, err := s.db.Query(`SELECT id, name, path, filename, plugin_type, manufacturer, parameters, file_mtime FROM plugin_records`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]model.PluginRecord)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out[rec.ID] = rec
	}
	return out, rows.Err()
}

// KnownPaths returns the set of plug-in file paths already cached, for the
// orchestrator's probe-diff step. O(n) in the number of cached records via
// the path index, independent of how many rows are scanned.
func (s *Store) KnownPaths() (map[string]struct{}, error) {
	rows, err := s.db.Query(`SELECT path FROM plugin_records`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out[p] = struct{}{}
	}
	return out, rows.Err()
}

// UpsertMany inserts or overwrites records in a single transaction. This
// is the orchestrator's commit step: it either fully
// succeeds or leaves the catalog untouched.
func (s *Store) UpsertMany(records []model.PluginRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO plugin_records (id, name, path, filename, plugin_type, manufacturer, parameters, file_mtime)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, path=excluded.path, filename=excluded.filename,
			plugin_type=excluded.plugin_type, manufacturer=excluded.manufacturer,
			parameters=excluded.parameters, file_mtime=excluded.file_mtime
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		params, err := encodeParameters(rec.Parameters)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(rec.ID, rec.Name, rec.Path, rec.Filename, string(rec.PluginType), rec.Manufacturer, params, rec.FileMtime); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Delete removes a single record by id.
func (s *Store) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM plugin_records WHERE id = ?`, id)
	return err
}

// Clear removes every record, used by rescan and the CLI's clear command.
func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM plugin_records`)
	return err
}

// Search ranks records by token-prefix match over name and manufacturer
// using the catalog's FTS5 index. A query that matches only the middle
// of a token ("filter" in "FabFilter") does not match.
func (s *Store) Search(q string, limit int) ([]model.PluginRecord, error) {
	if strings.TrimSpace(q) == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT p.id, p.name, p.path, p.filename, p.plugin_type, p.manufacturer, p.parameters, p.file_mtime
		FROM catalog_fts f
		JOIN plugin_records p ON p.rowid = f.rowid
		WHERE catalog_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, ftsQuery(q), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PluginRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ftsQuery turns a free-text query into an FTS5 prefix-match expression so
// partial tokens ("fab" matching "FabFilter") still rank.
func ftsQuery(q string) string {
	fields := strings.Fields(q)
	for i, f := range fields {
		f = strings.ReplaceAll(f, `"`, "")
		fields[i] = fmt.Sprintf(`"%s"*`, f)
	}
	return strings.Join(fields, " ")
}

// FilterByType returns every record of the given plug-in type.
func (s *Store) FilterByType(t model.PluginType) ([]model.PluginRecord, error) {
	rows, err := s.db.Query(`SELECT id, name, path, filename, plugin_type, manufacturer, parameters, file_mtime FROM plugin_records WHERE plugin_type = ?`, string(t))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PluginRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, rows.Err()
}

// Stats summarizes the catalog's contents and on-disk footprint.
type Stats struct {
	TotalPlugins int
	ByType       map[model.PluginType]int
	SizeBytes    int64
}

func (s *Store) Stats() (Stats, error) {
	stats := Stats{ByType: make(map[model.PluginType]int)}

	rows, err := s.db.Query(`SELECT plugin_type, COUNT(*) FROM plugin_records GROUP BY plugin_type`)
	if err != nil {
		return stats, err
	}
	defer rows.Close()
	for rows.Next() {
		var t string
		var c int
		if err := rows.Scan(&t, &c); err != nil {
			return stats, err
		}
		stats.ByType[model.PluginType(t)] = c
		stats.TotalPlugins += c
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}

	if info, err := os.Stat(s.path); err == nil {
		stats.SizeBytes = info.Size()
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(rows rowScanner) (model.PluginRecord, error) {
	var rec model.PluginRecord
	var pluginType, paramsJSON string
	if err := rows.Scan(&rec.ID, &rec.Name, &rec.Path, &rec.Filename, &pluginType, &rec.Manufacturer, &paramsJSON, &rec.FileMtime); err != nil {
		return rec, err
	}
	rec.PluginType = model.PluginType(pluginType)
	params, err := decodeParameters(paramsJSON)
	if err != nil {
		return rec, err
	}
	rec.Parameters = params
	return rec, nil
}

// jsonParam is the on-disk encoding of a model.ParameterValue.
type jsonParam struct {
	Kind  string  `json:"kind"`
	Float float64 `json:"float,omitempty"`
	Bool  bool    `json:"bool,omitempty"`
	Text  string  `json:"text,omitempty"`
}

func encodeParameters(params map[string]model.PluginParameter) (string, error) {
	out := make(map[string]jsonParam, len(params))
	for name, p := range params {
		jp := jsonParam{}
		switch p.Value.Kind {
		case model.ValueKindFloat:
			jp.Kind = "float"
			jp.Float = p.Value.Float
		case model.ValueKindBool:
			jp.Kind = "bool"
			jp.Bool = p.Value.Bool
		default:
			jp.Kind = "text"
			jp.Text = p.Value.Text
		}
		out[name] = jp
	}
	data, err := json.Marshal(out)
	return string(data), err
}

func decodeParameters(data string) (map[string]model.PluginParameter, error) {
	if data == "" {
		return map[string]model.PluginParameter{}, nil
	}
	var raw map[string]jsonParam
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, err
	}
	out := make(map[string]model.PluginParameter, len(raw))
	for name, jp := range raw {
		var v model.ParameterValue
		switch jp.Kind {
		case "float":
			v = model.FloatValue(jp.Float)
		case "bool":
			v = model.BoolValue(jp.Bool)
		default:
			v = model.TextValue(jp.Text)
		}
		out[name] = model.PluginParameter{Name: name, Value: v}
	}
	return out, nil
}
