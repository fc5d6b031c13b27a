// Package service implements the ledger operations on top of a store,
// recomputing the league label before any record is returned.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"leagueledger/internal/league"
	"leagueledger/internal/ledger/models"
	"leagueledger/internal/ledger/store"
	"leagueledger/internal/platform/metrics"
)

type Service struct {
	store  store.Store
	logger *slog.Logger
}

func New(st store.Store, logger *slog.Logger) *Service {
	return &Service{store: st, logger: logger}
}

// GetOrCreate returns the ledger record for userID, creating the zero record
// on first access.
func (s *Service) GetOrCreate(ctx context.Context, userID string) (models.Record, error) {
	rec, err := s.store.GetOrCreate(ctx, userID)
	if err != nil {
		return models.Record{}, fmt.Errorf("get or create %q: %w", userID, err)
	}
	metrics.LedgerOperations.WithLabelValues("get").Inc()
	return toModel(rec), nil
}

// Increment atomically applies delta to the balance and returns the updated
// record. Deltas may be negative; the balance is not floored.
func (s *Service) Increment(ctx context.Context, userID string, delta int64) (models.Record, error) {
	rec, err := s.store.Increment(ctx, userID, delta)
	if err != nil {
		return models.Record{}, fmt.Errorf("increment %q: %w", userID, err)
	}
	metrics.LedgerOperations.WithLabelValues("add").Inc()
	s.logger.InfoContext(ctx, "ledger increment applied",
		"user_id", userID,
		"delta", delta,
		"new_total", rec.Tokens,
	)
	return toModel(rec), nil
}

// Register marks the record as registered, creating it if absent.
func (s *Service) Register(ctx context.Context, userID string) (models.Record, error) {
	rec, err := s.store.Register(ctx, userID)
	if err != nil {
		return models.Record{}, fmt.Errorf("register %q: %w", userID, err)
	}
	metrics.LedgerOperations.WithLabelValues("register").Inc()
	return toModel(rec), nil
}

func toModel(rec store.Record) models.Record {
	return models.Record{
		UserID:       rec.UserID,
		Tokens:       rec.Tokens,
		League:       league.Classify(rec.Tokens),
		IsRegistered: rec.Registered,
	}
}
