// Package persistence archives generated sectors and their faction turn history in SQLite.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/sector-forge/internal/engine"
	"github.com/talgya/sector-forge/internal/social"
	"github.com/talgya/sector-forge/internal/world"
)

// ErrNotFound is returned when a sector or metadata key is not archived.
var ErrNotFound = errors.New("not found")

// DB wraps a SQLite connection for the sector archive.
type DB struct {
	conn *sqlx.DB
	now  func() time.Time
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn, now: time.Now}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sectors (
		sector_key TEXT PRIMARY KEY,
		id TEXT NOT NULL,
		layout_seed TEXT NOT NULL,
		content_iteration INTEGER NOT NULL,
		systems INTEGER NOT NULL,
		pois INTEGER NOT NULL,
		core_hex TEXT NOT NULL,
		generated_at TEXT NOT NULL,
		saved_at TEXT NOT NULL,
		record_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS faction_turns (
		sector_key TEXT NOT NULL,
		turn INTEGER NOT NULL,
		contested INTEGER NOT NULL,
		state_json TEXT NOT NULL,
		saved_at TEXT NOT NULL,
		PRIMARY KEY (sector_key, turn)
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_faction_turns_sector ON faction_turns(sector_key);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SectorRow is the archive's index view of one sector, without the record body.
type SectorRow struct {
	SectorKey        string `db:"sector_key"`
	ID               string `db:"id"`
	LayoutSeed       string `db:"layout_seed"`
	ContentIteration int    `db:"content_iteration"`
	Systems          int    `db:"systems"`
	Pois             int    `db:"pois"`
	CoreHex          string `db:"core_hex"`
	GeneratedAt      string `db:"generated_at"`
	SavedAt          string `db:"saved_at"`
}

// SaveSector stores a record under its sector key, replacing any earlier
// record and its faction history. It returns the new archive id.
func (db *DB) SaveSector(rec *engine.SectorRecord) (string, error) {
	body, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode sector %s: %w", rec.SectorKey, err)
	}
	id := uuid.NewString()

	tx, err := db.conn.Beginx()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM sectors WHERE sector_key = ?", rec.SectorKey); err != nil {
		return "", err
	}
	if _, err := tx.Exec("DELETE FROM faction_turns WHERE sector_key = ?", rec.SectorKey); err != nil {
		return "", err
	}
	_, err = tx.Exec(`INSERT INTO sectors
		(sector_key, id, layout_seed, content_iteration, systems, pois, core_hex,
		 generated_at, saved_at, record_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SectorKey, id, rec.LayoutSeed, rec.ContentIteration,
		len(rec.Sectors), len(rec.DeepSpacePois), rec.CoreSystemHexID,
		rec.GeneratedAt.UTC().Format(time.RFC3339), db.stamp(), string(body),
	)
	if err != nil {
		return "", fmt.Errorf("insert sector %s: %w", rec.SectorKey, err)
	}
	if rec.FactionState != nil {
		if err := saveTurn(tx, rec.SectorKey, rec.FactionState, db.stamp()); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	slog.Info("sector archived", "sector", rec.SectorKey, "id", id, "systems", len(rec.Sectors))
	return id, nil
}

// LoadSector returns the archived record for key.
func (db *DB) LoadSector(key world.SectorKey) (*engine.SectorRecord, error) {
	var body string
	err := db.conn.Get(&body, "SELECT record_json FROM sectors WHERE sector_key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sector %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return decodeSector(key, body)
}

// LoadAll returns every archived record ordered by sector key.
func (db *DB) LoadAll() ([]*engine.SectorRecord, error) {
	var rows []struct {
		Key  string `db:"sector_key"`
		Body string `db:"record_json"`
	}
	if err := db.conn.Select(&rows, "SELECT sector_key, record_json FROM sectors ORDER BY sector_key"); err != nil {
		return nil, err
	}
	out := make([]*engine.SectorRecord, 0, len(rows))
	for _, r := range rows {
		rec, err := decodeSector(world.SectorKey(r.Key), r.Body)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// ListSectors returns the archive index ordered by sector key.
func (db *DB) ListSectors() ([]SectorRow, error) {
	var rows []SectorRow
	err := db.conn.Select(&rows, `SELECT sector_key, id, layout_seed, content_iteration,
		systems, pois, core_hex, generated_at, saved_at FROM sectors ORDER BY sector_key`)
	return rows, err
}

func decodeSector(key world.SectorKey, body string) (*engine.SectorRecord, error) {
	var rec engine.SectorRecord
	if err := json.Unmarshal([]byte(body), &rec); err != nil {
		return nil, fmt.Errorf("decode sector %s: %w", key, err)
	}
	return &rec, nil
}

// SaveFactionTurn records one turn of a sector's faction state and makes it
// the archived record's current state.
func (db *DB) SaveFactionTurn(key world.SectorKey, state *social.FactionState) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := saveTurn(tx, key, state, db.stamp()); err != nil {
		return err
	}

	var body string
	err = tx.Get(&body, "SELECT record_json FROM sectors WHERE sector_key = ?", key)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("sector %s: %w", key, ErrNotFound)
	case err != nil:
		return err
	}
	rec, err := decodeSector(key, body)
	if err != nil {
		return err
	}
	rec.FactionState = state
	updated, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode sector %s: %w", key, err)
	}
	if _, err := tx.Exec("UPDATE sectors SET record_json = ? WHERE sector_key = ?", string(updated), key); err != nil {
		return err
	}
	return tx.Commit()
}

func saveTurn(tx *sqlx.Tx, key world.SectorKey, state *social.FactionState, stamp string) error {
	body, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode turn %d: %w", state.Turn, err)
	}
	_, err = tx.Exec(`INSERT OR REPLACE INTO faction_turns
		(sector_key, turn, contested, state_json, saved_at) VALUES (?, ?, ?, ?, ?)`,
		key, state.Turn, len(state.Contested()), string(body), stamp,
	)
	if err != nil {
		return fmt.Errorf("insert turn %d for %s: %w", state.Turn, key, err)
	}
	return nil
}

// FactionHistory returns a sector's archived faction states, oldest turn first.
func (db *DB) FactionHistory(key world.SectorKey) ([]*social.FactionState, error) {
	var bodies []string
	if err := db.conn.Select(&bodies,
		"SELECT state_json FROM faction_turns WHERE sector_key = ? ORDER BY turn", key,
	); err != nil {
		return nil, err
	}
	out := make([]*social.FactionState, 0, len(bodies))
	for _, b := range bodies {
		var s social.FactionState
		if err := json.Unmarshal([]byte(b), &s); err != nil {
			return nil, fmt.Errorf("decode turn for %s: %w", key, err)
		}
		out = append(out, &s)
	}
	return out, nil
}

// SaveMeta stores a key-value pair in archive metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("meta %q: %w", key, ErrNotFound)
	}
	return value, err
}

func (db *DB) stamp() string {
	return db.now().UTC().Format(time.RFC3339)
}
