package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const recordKeyPrefix = "ledger:user:"

// RedisStore keeps each record in a hash keyed by user id. Balance updates go
// through HINCRBY, which Redis applies atomically, so concurrent increments
// for the same user never lose an update even across service instances.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func recordKey(userID string) string {
	return recordKeyPrefix + userID
}

func (s *RedisStore) GetOrCreate(ctx context.Context, userID string) (Record, error) {
	key := recordKey(userID)

	pipe := s.client.TxPipeline()
	pipe.HSetNX(ctx, key, "tokens", 0)
	pipe.HSetNX(ctx, key, "registered", 0)
	getAll := pipe.HGetAll(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return Record{}, fmt.Errorf("redis get-or-create %q: %w", userID, err)
	}

	return parseHash(userID, getAll.Val())
}

func (s *RedisStore) Increment(ctx context.Context, userID string, delta int64) (Record, error) {
	key := recordKey(userID)

	pipe := s.client.TxPipeline()
	incr := pipe.HIncrBy(ctx, key, "tokens", delta)
	registered := pipe.HGet(ctx, key, "registered")
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return Record{}, fmt.Errorf("redis increment %q: %w", userID, err)
	}

	rec := Record{UserID: userID, Tokens: incr.Val()}
	if v, err := registered.Result(); err == nil {
		rec.Registered = v == "1"
	}
	return rec, nil
}

func (s *RedisStore) Register(ctx context.Context, userID string) (Record, error) {
	key := recordKey(userID)

	pipe := s.client.TxPipeline()
	pipe.HSetNX(ctx, key, "tokens", 0)
	pipe.HSet(ctx, key, "registered", 1)
	tokens := pipe.HGet(ctx, key, "tokens")
	if _, err := pipe.Exec(ctx); err != nil {
		return Record{}, fmt.Errorf("redis register %q: %w", userID, err)
	}

	balance, err := tokens.Int64()
	if err != nil {
		return Record{}, fmt.Errorf("redis register %q: parse tokens: %w", userID, err)
	}
	return Record{UserID: userID, Tokens: balance, Registered: true}, nil
}

func parseHash(userID string, fields map[string]string) (Record, error) {
	rec := Record{UserID: userID}
	if v, ok := fields["tokens"]; ok {
		if _, err := fmt.Sscan(v, &rec.Tokens); err != nil {
			return Record{}, fmt.Errorf("parse tokens for %q: %w", userID, err)
		}
	}
	rec.Registered = fields["registered"] == "1"
	return rec, nil
}
