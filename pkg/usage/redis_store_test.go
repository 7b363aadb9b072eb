package usage_test

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gianmichelesiano/brokerai-sub001/pkg/plan"
	"github.com/gianmichelesiano/brokerai-sub001/pkg/usage"
)

func newRedisStore(t *testing.T, opts ...usage.RedisStoreOption) *usage.RedisStore {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return usage.NewRedisStore(client, opts...)
}

func TestRedisStore(t *testing.T) {
	t.Parallel()

	t.Run("unseen key returns a zeroed record", func(t *testing.T) {
		t.Parallel()

		store := newRedisStore(t)
		rec, err := store.Get(context.Background(), testCustomer, testPeriod)

		require.NoError(t, err)
		assert.Equal(t, testCustomer, rec.CustomerID)
		assert.Zero(t, rec.Analyses)
	})

	t.Run("increment and read back", func(t *testing.T) {
		t.Parallel()

		store := newRedisStore(t)
		ctx := context.Background()

		rec, err := store.Increment(ctx, testCustomer, testPeriod, plan.ResourceAIAnalyses, 1)
		require.NoError(t, err)
		assert.EqualValues(t, 1, rec.AIAnalyses)
		assert.False(t, rec.UpdatedAt.IsZero())

		rec, err = store.Increment(ctx, testCustomer, testPeriod, plan.ResourceAIAnalyses, 2)
		require.NoError(t, err)
		assert.EqualValues(t, 3, rec.AIAnalyses)

		got, err := store.Get(ctx, testCustomer, testPeriod)
		require.NoError(t, err)
		assert.EqualValues(t, 3, got.AIAnalyses)
		assert.Zero(t, got.Analyses)
	})

	t.Run("period rollover isolates hashes", func(t *testing.T) {
		t.Parallel()

		store := newRedisStore(t)
		ctx := context.Background()

		_, err := store.Increment(ctx, testCustomer, "2024-05", plan.ResourceAnalyses, 5)
		require.NoError(t, err)

		fresh, err := store.Get(ctx, testCustomer, "2024-06")
		require.NoError(t, err)
		assert.Zero(t, fresh.Analyses)

		old, err := store.Get(ctx, testCustomer, "2024-05")
		require.NoError(t, err)
		assert.EqualValues(t, 5, old.Analyses)
	})

	t.Run("custom key prefix", func(t *testing.T) {
		t.Parallel()

		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })

		store := usage.NewRedisStore(client, usage.WithKeyPrefix("staging:usage"))
		_, err := store.Increment(context.Background(), testCustomer, testPeriod, plan.ResourceAnalyses, 1)
		require.NoError(t, err)

		assert.True(t, mr.Exists("staging:usage:"+testCustomer+":"+string(testPeriod)))
	})

	t.Run("unreachable server surfaces ErrStoreUnavailable", func(t *testing.T) {
		t.Parallel()

		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		store := usage.NewRedisStore(client)

		mr.Close()

		_, err := store.Get(context.Background(), testCustomer, testPeriod)
		assert.ErrorIs(t, err, usage.ErrStoreUnavailable)

		_, err = store.Increment(context.Background(), testCustomer, testPeriod, plan.ResourceAnalyses, 1)
		assert.ErrorIs(t, err, usage.ErrStoreUnavailable)
	})

	t.Run("concurrent increments lose nothing", func(t *testing.T) {
		t.Parallel()

		store := newRedisStore(t)
		ctx := context.Background()

		const m = 50
		var wg sync.WaitGroup
		for range m {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.Increment(ctx, testCustomer, testPeriod, plan.ResourceExports, 1)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		rec, err := store.Get(ctx, testCustomer, testPeriod)
		require.NoError(t, err)
		assert.EqualValues(t, m, rec.Exports)
	})
}
