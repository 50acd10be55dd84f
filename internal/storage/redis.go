package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/redis/go-redis/v9"

	"github.com/hearthside/tourplan/internal/tour"
	"github.com/hearthside/tourplan/internal/tracing"
)

// stateKey is the single Redis key the tour state lives under.
const stateKey = "tourplan:state"

// RedisRepository persists the tour state as one CBOR-encoded value.
type RedisRepository struct {
	client *redis.Client
}

// NewRedisRepository creates a repository backed by the given client.
func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

// Load reads the persisted state. A missing key or undecodable value
// returns (nil, nil).
func (r *RedisRepository) Load(ctx context.Context) (state *tour.State, err error) {
	ctx, end := tracing.StartStorageSpan(ctx, "redis", tracing.StorageOperationLoad)
	defer func() { end(err) }()

	data, err := r.client.Get(ctx, stateKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state from redis: %w", err)
	}
	return decodeState(data, cbor.Unmarshal)
}

// Save replaces the persisted state. The value never expires; published
// snapshots accumulate for the lifetime of the store.
func (r *RedisRepository) Save(ctx context.Context, state *tour.State) (err error) {
	ctx, end := tracing.StartStorageSpan(ctx, "redis", tracing.StorageOperationSave)
	defer func() { end(err) }()

	data, err := cbor.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := r.client.Set(ctx, stateKey, data, 0).Err(); err != nil {
		return fmt.Errorf("write state to redis: %w", err)
	}
	return nil
}
