//go:build sqlite

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"axonet/internal/model"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func newSQLiteStore(path string) (Store, error) {
	return NewSQLiteStore(path), nil
}

func DefaultStoreKind() string {
	return "sqlite"
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveTopology(ctx context.Context, cfg model.NetworkCfg) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	if cfg.ID == "" {
		return errors.New("topology id is required")
	}

	payload, err := EncodeTopology(cfg)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO topologies (id, schema_version, codec_version, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`, cfg.ID, CurrentSchemaVersion, CurrentCodecVersion, payload)
	return err
}

func (s *SQLiteStore) GetTopology(ctx context.Context, id string) (model.NetworkCfg, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.NetworkCfg{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM topologies WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.NetworkCfg{}, false, nil
		}
		return model.NetworkCfg{}, false, err
	}

	cfg, err := DecodeTopology(payload)
	if err != nil {
		return model.NetworkCfg{}, false, fmt.Errorf("decode topology %s: %w", id, err)
	}
	return cfg, true, nil
}

func (s *SQLiteStore) ListTopologies(ctx context.Context) ([]string, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT id FROM topologies ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) SaveActivity(ctx context.Context, networkID string, records []model.ActivityRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	if networkID == "" {
		return errors.New("network id is required")
	}
	if len(records) == 0 {
		return nil
	}

	payload, err := EncodeActivity(records)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO activity (network_id, payload) VALUES (?, ?)
	`, networkID, payload)
	return err
}

func (s *SQLiteStore) GetActivity(ctx context.Context, networkID string) ([]model.ActivityRecord, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT payload FROM activity WHERE network_id = ? ORDER BY seq
	`, networkID)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var all []model.ActivityRecord
	found := false
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, false, err
		}
		batch, err := DecodeActivity(payload)
		if err != nil {
			return nil, false, fmt.Errorf("decode activity for %s: %w", networkID, err)
		}
		all = append(all, batch...)
		found = true
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return all, found, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS topologies (
			id TEXT PRIMARY KEY,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS activity (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			network_id TEXT NOT NULL,
			payload BLOB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS activity_network ON activity (network_id);
	`)
	return err
}
