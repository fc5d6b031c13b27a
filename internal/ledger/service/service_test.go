package service

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leagueledger/internal/league"
	"leagueledger/internal/ledger/store"
)

func newService() *Service {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return New(store.NewInMemoryStore(), logger)
}

func TestGetOrCreateReturnsZeroRecord(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	rec, err := svc.GetOrCreate(ctx, "U1")
	require.NoError(t, err)

	assert.Equal(t, "U1", rec.UserID)
	assert.Equal(t, int64(0), rec.Tokens)
	assert.Equal(t, league.Bronze, rec.League)
	assert.False(t, rec.IsRegistered)
}

func TestIncrementRecomputesLeague(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	rec, err := svc.Increment(ctx, "U1", 12)
	require.NoError(t, err)
	assert.Equal(t, int64(12), rec.Tokens)
	assert.Equal(t, league.Silver, rec.League)

	rec, err = svc.Increment(ctx, "U1", 40)
	require.NoError(t, err)
	assert.Equal(t, int64(52), rec.Tokens)
	assert.Equal(t, league.Diamond, rec.League)
}

func TestIncrementTierMatchesClassifier(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	var total int64
	for _, delta := range []int64{3, 9, -2, 20, 25} {
		total += delta
		rec, err := svc.Increment(ctx, "U1", delta)
		require.NoError(t, err)
		assert.Equal(t, total, rec.Tokens)
		assert.Equal(t, league.Classify(total), rec.League,
			"league must equal classify(balance) after every mutation")
	}
}

func TestRegisterIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	rec, err := svc.Register(ctx, "U1")
	require.NoError(t, err)
	assert.True(t, rec.IsRegistered)
	assert.Equal(t, int64(0), rec.Tokens)

	rec, err = svc.Register(ctx, "U1")
	require.NoError(t, err)
	assert.True(t, rec.IsRegistered)

	// Registration survives later mutations.
	rec, err = svc.Increment(ctx, "U1", 1)
	require.NoError(t, err)
	assert.True(t, rec.IsRegistered)
}
