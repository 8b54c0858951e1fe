// Package storage provides reference persistence.Port backends. Neither
// backend is required by the engine itself; a host picks one (or supplies
// its own) at wiring time.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure Go driver, no cgo

	domlvl "github.com/briarwatch/survivalcore/internal/domain/leveling"
	"github.com/briarwatch/survivalcore/internal/domain/player"
	"github.com/briarwatch/survivalcore/internal/persistence"
)

// SQLite is a persistence.Port backed by a local SQLite file. Grounded on
// the teacher's InitSQLite/createSchemas pair: open, ping, migrate.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if absent) the database at dbPath and applies
// the schema.
func OpenSQLite(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	if err := sqliteSchema(db); err != nil {
		return nil, fmt.Errorf("failed to create schemas: %w", err)
	}
	return &SQLite{db: db}, nil
}

func sqliteSchema(db *sql.DB) error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS player_stats (
			player_id TEXT PRIMARY KEY,
			hunger REAL NOT NULL,
			thirst REAL NOT NULL,
			energy REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS player_leveling (
			player_id TEXT PRIMARY KEY,
			progress_json TEXT NOT NULL
		);`,
	}
	for _, q := range schemas {
		if _, err := db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) LoadStats(ctx context.Context, id player.ID) (*persistence.StatRecord, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT hunger, thirst, energy FROM player_stats WHERE player_id = ?`, id.String())
	var rec persistence.StatRecord
	rec.PlayerID = id
	if err := row.Scan(&rec.Hunger, &rec.Thirst, &rec.Energy); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &rec, true, nil
}

func (s *SQLite) SaveStats(ctx context.Context, rec persistence.StatRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO player_stats (player_id, hunger, thirst, energy)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(player_id) DO UPDATE SET
			hunger=excluded.hunger, thirst=excluded.thirst, energy=excluded.energy
	`, rec.PlayerID.String(), rec.Hunger, rec.Thirst, rec.Energy)
	return err
}

// progressRow is the JSON wire shape for domlvl.Progress, whose internal
// map is unexported; round-tripping goes through this instead.
type progressRow struct {
	Records map[string]domlvl.ProgressRecord `json:"records"`
}

func encodeProgress(p domlvl.Progress) ([]byte, error) {
	row := progressRow{Records: make(map[string]domlvl.ProgressRecord, len(domlvl.AllProfessions))}
	for _, prof := range domlvl.AllProfessions {
		row.Records[prof.String()] = p.Get(prof)
	}
	return json.Marshal(row)
}

func decodeProgress(data []byte) (domlvl.Progress, error) {
	var row progressRow
	if err := json.Unmarshal(data, &row); err != nil {
		return domlvl.Progress{}, err
	}
	progress := domlvl.NewProgress()
	for _, prof := range domlvl.AllProfessions {
		if rec, ok := row.Records[prof.String()]; ok {
			progress = progress.With(prof, rec)
		}
	}
	return progress, nil
}

func (s *SQLite) LoadLeveling(ctx context.Context, id player.ID) (*persistence.LevelingRecord, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT progress_json FROM player_leveling WHERE player_id = ?`, id.String())
	var raw string
	if err := row.Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}
	progress, err := decodeProgress([]byte(raw))
	if err != nil {
		return nil, false, err
	}
	return &persistence.LevelingRecord{PlayerID: id, Progress: progress}, true, nil
}

func (s *SQLite) SaveLeveling(ctx context.Context, rec persistence.LevelingRecord) error {
	raw, err := encodeProgress(rec.Progress)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO player_leveling (player_id, progress_json)
		VALUES (?, ?)
		ON CONFLICT(player_id) DO UPDATE SET progress_json=excluded.progress_json
	`, rec.PlayerID.String(), string(raw))
	return err
}
