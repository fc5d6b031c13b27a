package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresStore persists the ledger in a single table. Every operation is one
// upsert statement, so atomicity comes from the database rather than from
// read-modify-write at the caller.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the ledger table if it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS ledger_records (
			user_id    TEXT PRIMARY KEY,
			tokens     BIGINT NOT NULL DEFAULT 0,
			registered BOOLEAN NOT NULL DEFAULT FALSE
		)`)
	if err != nil {
		return fmt.Errorf("ensure ledger schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetOrCreate(ctx context.Context, userID string) (Record, error) {
	// The no-op DO UPDATE makes the statement return the existing row on
	// conflict; DO NOTHING would return nothing at all.
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO ledger_records (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING tokens, registered`, userID)
	return scanRecord(row, userID, "get-or-create")
}

func (s *PostgresStore) Increment(ctx context.Context, userID string, delta int64) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO ledger_records (user_id, tokens) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET tokens = ledger_records.tokens + EXCLUDED.tokens
		RETURNING tokens, registered`, userID, delta)
	return scanRecord(row, userID, "increment")
}

func (s *PostgresStore) Register(ctx context.Context, userID string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO ledger_records (user_id, registered) VALUES ($1, TRUE)
		ON CONFLICT (user_id) DO UPDATE SET registered = TRUE
		RETURNING tokens, registered`, userID)
	return scanRecord(row, userID, "register")
}

func scanRecord(row *sql.Row, userID, op string) (Record, error) {
	rec := Record{UserID: userID}
	if err := row.Scan(&rec.Tokens, &rec.Registered); err != nil {
		return Record{}, fmt.Errorf("postgres %s %q: %w", op, userID, err)
	}
	return rec, nil
}
