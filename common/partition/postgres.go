package partition

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lyzr/crewledger/common/db"
)

// Schema creates the partition table. The document column is json rather
// than jsonb so member key order survives a round trip.
const Schema = `
CREATE TABLE IF NOT EXISTS ledger_partition (
    name        TEXT PRIMARY KEY,
    document    JSON NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore keeps partitions as rows of ledger_partition
type PostgresStore struct {
	db *db.DB
}

// NewPostgresStore creates a new Postgres-backed store
func NewPostgresStore(database *db.DB) *PostgresStore {
	return &PostgresStore{db: database}
}

// Load reads a partition document
func (s *PostgresStore) Load(ctx context.Context, name string) (Object, error) {
	if err := ValidateName(name); err != nil {
		return Object{}, err
	}

	query := `SELECT document::text, updated_at FROM ledger_partition WHERE name = $1`

	var doc string
	var obj Object
	err := s.db.QueryRow(ctx, query, name).Scan(&doc, &obj.ModTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return Object{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return Object{}, fmt.Errorf("load partition %s: %w", name, err)
	}
	obj.Data = []byte(doc)
	return obj, nil
}

// Stat returns the partition's last update time
func (s *PostgresStore) Stat(ctx context.Context, name string) (time.Time, error) {
	if err := ValidateName(name); err != nil {
		return time.Time{}, err
	}

	query := `SELECT updated_at FROM ledger_partition WHERE name = $1`

	var modTime time.Time
	err := s.db.QueryRow(ctx, query, name).Scan(&modTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("stat partition %s: %w", name, err)
	}
	return modTime, nil
}

// Save upserts a partition document in a single statement
func (s *PostgresStore) Save(ctx context.Context, name string, data []byte) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	query := `
		INSERT INTO ledger_partition (name, document, updated_at)
		VALUES ($1, $2::json, clock_timestamp())
		ON CONFLICT (name) DO UPDATE
		SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at
	`

	if _, err := s.db.Exec(ctx, query, name, string(data)); err != nil {
		return fmt.Errorf("save partition %s: %w", name, err)
	}
	return nil
}
