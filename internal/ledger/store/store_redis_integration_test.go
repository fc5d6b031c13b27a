//go:build integration

package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"leagueledger/internal/ledger/store"
	"leagueledger/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *store.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = store.NewRedisStore(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestGetOrCreateIdempotent() {
	ctx := context.Background()

	first, err := s.store.GetOrCreate(ctx, "U1")
	s.Require().NoError(err)
	s.Equal(int64(0), first.Tokens)
	s.False(first.Registered)

	second, err := s.store.GetOrCreate(ctx, "U1")
	s.Require().NoError(err)
	s.Equal(first, second)
}

func (s *RedisStoreSuite) TestIncrementIsAtomic() {
	ctx := context.Background()
	const goroutines = 50

	var wg sync.WaitGroup
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Increment(ctx, "contended", 1)
			s.NoError(err)
		}()
	}
	wg.Wait()

	rec, err := s.store.GetOrCreate(ctx, "contended")
	s.Require().NoError(err)
	s.Equal(int64(goroutines), rec.Tokens, "no increment may be lost")
}

func (s *RedisStoreSuite) TestIncrementNegativeDelta() {
	ctx := context.Background()

	_, err := s.store.Increment(ctx, "U1", 5)
	s.Require().NoError(err)
	rec, err := s.store.Increment(ctx, "U1", -8)
	s.Require().NoError(err)
	s.Equal(int64(-3), rec.Tokens)
}

func (s *RedisStoreSuite) TestRegisterMonotonic() {
	ctx := context.Background()

	rec, err := s.store.Register(ctx, "U1")
	s.Require().NoError(err)
	s.True(rec.Registered)
	s.Equal(int64(0), rec.Tokens)

	rec, err = s.store.Increment(ctx, "U1", 3)
	s.Require().NoError(err)
	s.True(rec.Registered)

	rec, err = s.store.Register(ctx, "U1")
	s.Require().NoError(err)
	s.True(rec.Registered)
	s.Equal(int64(3), rec.Tokens, "re-registration must not touch the balance")
}

func (s *RedisStoreSuite) TestRecordsAreIndependent() {
	ctx := context.Background()

	_, err := s.store.Increment(ctx, "A", 10)
	s.Require().NoError(err)
	_, err = s.store.Register(ctx, "B")
	s.Require().NoError(err)

	a, err := s.store.GetOrCreate(ctx, "A")
	s.Require().NoError(err)
	b, err := s.store.GetOrCreate(ctx, "B")
	s.Require().NoError(err)

	s.Equal(int64(10), a.Tokens)
	s.False(a.Registered)
	s.Equal(int64(0), b.Tokens)
	s.True(b.Registered)
}
