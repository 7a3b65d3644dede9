package continuity

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store persists one ContinuityState per (user_id, manuscript_filename).
type Store interface {
	Load(ctx context.Context, userID, manuscriptFilename string) (*ContinuityState, error)
	Save(ctx context.Context, state *ContinuityState) error
}

// SQLiteStore is a Store backed by SQLite, adapted from
// store/sqlite.SqliteCheckpointStore's connection and schema-init
// wiring (same driver, a different table: one JSON blob column per
// tracked manuscript instead of per-checkpoint rows).
type SQLiteStore struct {
	db        *sql.DB
	tableName string
}

// SQLiteStoreOptions configures a SQLiteStore.
type SQLiteStoreOptions struct {
	Path      string
	TableName string // default "continuity_states"
}

// NewSQLiteStore opens (creating if necessary) a SQLite-backed Store.
func NewSQLiteStore(opts SQLiteStoreOptions) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("continuity: open sqlite: %w", err)
	}

	tableName := opts.TableName
	if tableName == "" {
		tableName = "continuity_states"
	}

	s := &SQLiteStore{db: db, tableName: tableName}
	if err := s.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			user_id              TEXT NOT NULL,
			manuscript_filename  TEXT NOT NULL,
			state_json           TEXT NOT NULL,
			updated_at           TEXT NOT NULL,
			PRIMARY KEY (user_id, manuscript_filename)
		)`, s.tableName)
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// Load returns the tracked state for (userID, manuscriptFilename), or nil
// if no state has ever been saved for it.
func (s *SQLiteStore) Load(ctx context.Context, userID, manuscriptFilename string) (*ContinuityState, error) {
	query := fmt.Sprintf(`SELECT state_json FROM %s WHERE user_id = ? AND manuscript_filename = ?`, s.tableName)
	row := s.db.QueryRowContext(ctx, query, userID, manuscriptFilename)

	var blob string
	if err := row.Scan(&blob); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("continuity: load: %w", err)
	}

	var state ContinuityState
	if err := json.Unmarshal([]byte(blob), &state); err != nil {
		return nil, fmt.Errorf("continuity: decode stored state: %w", err)
	}
	return &state, nil
}

// Save upserts state keyed by its own UserID/ManuscriptFilename fields.
func (s *SQLiteStore) Save(ctx context.Context, state *ContinuityState) error {
	blob, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("continuity: encode state: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, manuscript_filename, state_json, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, manuscript_filename)
		DO UPDATE SET state_json = excluded.state_json, updated_at = excluded.updated_at
	`, s.tableName)
	_, err = s.db.ExecContext(ctx, query, state.UserID, state.ManuscriptFilename, string(blob), state.LastUpdated)
	return err
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// MemoryStore is an in-process Store for tests and small deployments.
type MemoryStore struct {
	states map[string]*ContinuityState
}

// NewMemoryStore returns an empty in-process Store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]*ContinuityState)}
}

func memoryKey(userID, manuscriptFilename string) string {
	return userID + "\x00" + manuscriptFilename
}

func (m *MemoryStore) Load(_ context.Context, userID, manuscriptFilename string) (*ContinuityState, error) {
	return m.states[memoryKey(userID, manuscriptFilename)], nil
}

func (m *MemoryStore) Save(_ context.Context, state *ContinuityState) error {
	m.states[memoryKey(state.UserID, state.ManuscriptFilename)] = state
	return nil
}
