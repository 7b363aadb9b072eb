package usage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gianmichelesiano/brokerai-sub001/pkg/plan"
)

// Redis hash field names, one per resource counter.
const (
	fieldAnalyses   = "analyses_used"
	fieldAIAnalyses = "ai_analyses_used"
	fieldExports    = "exports_generated"
	fieldCompanies  = "companies_active"
	fieldUpdatedAt  = "updated_at"
)

// RedisStore implements Store on a Redis hash per (customer, period).
// HINCRBY gives the per-key atomicity the contract requires; different keys
// live in different hashes and never contend.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix overrides the default "usage" key prefix, e.g. to namespace
// several environments inside one Redis database.
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(rs *RedisStore) {
		if prefix != "" {
			rs.keyPrefix = prefix
		}
	}
}

// NewRedisStore creates a usage store backed by the given Redis client.
// Panics if client is nil to fail fast during initialization.
func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) *RedisStore {
	if client == nil {
		panic("usage: redis client is required")
	}

	rs := &RedisStore{
		client:    client,
		keyPrefix: "usage",
	}

	for _, opt := range opts {
		opt(rs)
	}

	return rs
}

func (rs *RedisStore) key(customerID string, period Period) string {
	return fmt.Sprintf("%s:%s:%s", rs.keyPrefix, customerID, period)
}

// Get returns the record for (customerID, period), zeroed if the hash does
// not exist yet.
func (rs *RedisStore) Get(ctx context.Context, customerID string, period Period) (Record, error) {
	if err := validateKey(customerID, period, 0); err != nil {
		return Record{}, err
	}

	fields, err := rs.client.HGetAll(ctx, rs.key(customerID, period)).Result()
	if err != nil {
		return Record{}, errors.Join(ErrStoreUnavailable, err)
	}

	return recordFromHash(customerID, period, fields)
}

// Increment adds delta to the resource counter with HINCRBY and refreshes the
// updated_at field, then reads back the full record.
func (rs *RedisStore) Increment(ctx context.Context, customerID string, period Period, res plan.Resource, delta int64) (Record, error) {
	if err := validateKey(customerID, period, delta); err != nil {
		return Record{}, err
	}

	key := rs.key(customerID, period)

	pipe := rs.client.TxPipeline()
	pipe.HIncrBy(ctx, key, hashField(res), delta)
	pipe.HSet(ctx, key, fieldUpdatedAt, time.Now().UTC().Format(time.RFC3339Nano))
	if _, err := pipe.Exec(ctx); err != nil {
		return Record{}, errors.Join(ErrStoreUnavailable, err)
	}

	fields, err := rs.client.HGetAll(ctx, key).Result()
	if err != nil {
		return Record{}, errors.Join(ErrStoreUnavailable, err)
	}

	return recordFromHash(customerID, period, fields)
}

func hashField(res plan.Resource) string {
	switch res {
	case plan.ResourceAnalyses:
		return fieldAnalyses
	case plan.ResourceAIAnalyses:
		return fieldAIAnalyses
	case plan.ResourceExports:
		return fieldExports
	case plan.ResourceCompanies:
		return fieldCompanies
	}
	panic("usage: unknown resource " + string(res))
}

func recordFromHash(customerID string, period Period, fields map[string]string) (Record, error) {
	rec := zeroRecord(customerID, period)

	var err error
	if rec.Analyses, err = parseCounter(fields, fieldAnalyses); err != nil {
		return Record{}, err
	}
	if rec.AIAnalyses, err = parseCounter(fields, fieldAIAnalyses); err != nil {
		return Record{}, err
	}
	if rec.Exports, err = parseCounter(fields, fieldExports); err != nil {
		return Record{}, err
	}
	if rec.Companies, err = parseCounter(fields, fieldCompanies); err != nil {
		return Record{}, err
	}

	if raw, ok := fields[fieldUpdatedAt]; ok {
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			rec.UpdatedAt = ts
		}
	}

	return rec, nil
}

func parseCounter(fields map[string]string, name string) (int64, error) {
	raw, ok := fields[name]
	if !ok {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.Join(ErrStoreUnavailable, fmt.Errorf("corrupt counter %s: %w", name, err))
	}
	return n, nil
}

var _ Store = (*RedisStore)(nil)
