package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/opportunity-hack/grantfinder/internal/domain"
)

// opportunitiesSchema creates the records table. Structured fields live in a
// jsonb column; the crawl never queries them, downstream reporting does.
const opportunitiesSchema = `
CREATE TABLE IF NOT EXISTS opportunities (
	id             UUID PRIMARY KEY,
	url            TEXT NOT NULL UNIQUE,
	source_name    TEXT NOT NULL,
	title          TEXT NOT NULL,
	description    TEXT NOT NULL DEFAULT '',
	excerpt        TEXT NOT NULL DEFAULT '',
	fields         JSONB NOT NULL DEFAULT '{}',
	score          DOUBLE PRECISION NOT NULL,
	source_kind    TEXT NOT NULL,
	depth          INT NOT NULL,
	discovered_at  TIMESTAMPTZ NOT NULL,
	found_at       TIMESTAMPTZ NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// RecordStore persists accepted opportunity records. It satisfies the
// crawler's record sink contract.
type RecordStore struct {
	db *sqlx.DB
}

// NewRecordStore creates a record store over an open connection.
func NewRecordStore(db *sqlx.DB) *RecordStore {
	return &RecordStore{db: db}
}

// EnsureSchema creates the opportunities table when missing.
func (s *RecordStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, opportunitiesSchema); err != nil {
		return fmt.Errorf("ensure opportunities schema: %w", err)
	}
	return nil
}

// Write inserts a batch of records in one transaction. Re-crawled URLs keep
// their existing row; a record is immutable once stored.
func (s *RecordStore) Write(ctx context.Context, records []*domain.OpportunityRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record batch: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	query := `
		INSERT INTO opportunities (
			id, url, source_name, title, description, excerpt,
			fields, score, source_kind, depth, discovered_at, found_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (url) DO NOTHING
	`

	for _, record := range records {
		fields, marshalErr := json.Marshal(record.Fields)
		if marshalErr != nil {
			return fmt.Errorf("marshal record fields: %w", marshalErr)
		}

		if _, execErr := tx.ExecContext(
			ctx, query,
			record.ID, record.URL, record.SourceName, record.Title,
			record.Description, record.Excerpt, fields, record.Score,
			string(record.Source), record.Depth, record.DiscoveredAt, record.FoundAt,
		); execErr != nil {
			return fmt.Errorf("insert record %q: %w", record.URL, execErr)
		}
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return fmt.Errorf("commit record batch: %w", commitErr)
	}

	return nil
}

// Close closes the underlying connection.
func (s *RecordStore) Close() error {
	return s.db.Close()
}
