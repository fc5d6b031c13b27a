// Package store persists per-user ledger records. Implementations must make
// Increment atomic: concurrent increments for the same user never lose an
// update. Records are created lazily with a zero balance and never deleted.
package store

import "context"

// Record is the persisted shape of a ledger entry. The league label is
// derived, not stored; the service recomputes it on every read.
type Record struct {
	UserID     string
	Tokens     int64
	Registered bool
}

// Store is the persistence contract for the ledger.
type Store interface {
	// GetOrCreate returns the record for userID, creating a zero-balance
	// unregistered one if absent. Idempotent.
	GetOrCreate(ctx context.Context, userID string) (Record, error)

	// Increment atomically applies delta (which may be negative) to the
	// balance, creating the record first if absent, and returns the
	// post-increment record.
	Increment(ctx context.Context, userID string, delta int64) (Record, error)

	// Register marks the record as registered, creating it if absent. The
	// flag never transitions back to false. Idempotent.
	Register(ctx context.Context, userID string) (Record, error)
}
