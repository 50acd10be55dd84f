package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/hearthside/tourplan/internal/tour"
	"github.com/hearthside/tourplan/internal/tracing"
)

// PostgresRepository persists the tour state as a single JSONB row.
// The schema is one document per deployment; there is exactly one writer
// (the store) so no row-level contention exists.
type PostgresRepository struct {
	db *sql.DB
}

const createStateTable = `
CREATE TABLE IF NOT EXISTS tour_state (
    id         INTEGER PRIMARY KEY CHECK (id = 1),
    state      JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// NewPostgresRepository opens a repository over the given connection and
// ensures the backing table exists.
func NewPostgresRepository(ctx context.Context, db *sql.DB) (*PostgresRepository, error) {
	if _, err := db.ExecContext(ctx, createStateTable); err != nil {
		return nil, fmt.Errorf("create tour_state table: %w", err)
	}
	return &PostgresRepository{db: db}, nil
}

// Load reads the persisted state. A missing row or undecodable document
// returns (nil, nil).
func (r *PostgresRepository) Load(ctx context.Context) (state *tour.State, err error) {
	ctx, end := tracing.StartStorageSpan(ctx, "postgresql", tracing.StorageOperationLoad)
	defer func() { end(err) }()

	var data []byte
	err = r.db.QueryRowContext(ctx, `SELECT state FROM tour_state WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state from postgres: %w", err)
	}
	return decodeState(data, json.Unmarshal)
}

// Save upserts the single state row.
func (r *PostgresRepository) Save(ctx context.Context, state *tour.State) (err error) {
	ctx, end := tracing.StartStorageSpan(ctx, "postgresql", tracing.StorageOperationSave)
	defer func() { end(err) }()

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO tour_state (id, state, updated_at)
		VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET state = EXCLUDED.state, updated_at = now()`,
		data)
	if err != nil {
		return fmt.Errorf("write state to postgres: %w", err)
	}
	return nil
}
