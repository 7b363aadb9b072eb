package quota_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gianmichelesiano/brokerai-sub001/pkg/plan"
	"github.com/gianmichelesiano/brokerai-sub001/pkg/quota"
	"github.com/gianmichelesiano/brokerai-sub001/pkg/usage"
)

const gatePeriod = usage.Period("2024-05")

func checkResultAt(limit int64, res plan.Resource) quota.CheckResult {
	return quota.CheckResult{
		Resource:   res,
		Limit:      limit,
		Tier:       plan.TierFree,
		CustomerID: "user-123",
		Period:     gatePeriod,
	}
}

func recordWith(analyses int64) usage.Record {
	return usage.Record{
		CustomerID: "user-123",
		Period:     gatePeriod,
		Analyses:   analyses,
	}
}

func TestGate_Observe(t *testing.T) {
	t.Parallel()

	t.Run("silent below the limit", func(t *testing.T) {
		t.Parallel()

		gate := quota.NewGate()

		for i := int64(1); i < 5; i++ {
			signal := gate.Observe(checkResultAt(5, plan.ResourceAnalyses), recordWith(i))
			assert.Nil(t, signal)
		}
	})

	t.Run("fires exactly once at the limit", func(t *testing.T) {
		t.Parallel()

		gate := quota.NewGate()

		signal := gate.Observe(checkResultAt(5, plan.ResourceAnalyses), recordWith(5))
		require.NotNil(t, signal)
		assert.NotEmpty(t, signal.ID)
		assert.Equal(t, "user-123", signal.CustomerID)
		assert.Equal(t, plan.ResourceAnalyses, signal.Resource)
		assert.EqualValues(t, 5, signal.Current)
		assert.EqualValues(t, 5, signal.Limit)
		assert.Equal(t, gatePeriod, signal.Period)

		// Further commits past the limit stay silent.
		assert.Nil(t, gate.Observe(checkResultAt(5, plan.ResourceAnalyses), recordWith(6)))
		assert.Nil(t, gate.Observe(checkResultAt(5, plan.ResourceAnalyses), recordWith(7)))
	})

	t.Run("never fires for unlimited resources", func(t *testing.T) {
		t.Parallel()

		gate := quota.NewGate()

		assert.Nil(t, gate.Observe(checkResultAt(plan.Unlimited, plan.ResourceAnalyses), recordWith(1_000_000)))
	})

	t.Run("resources are independent", func(t *testing.T) {
		t.Parallel()

		gate := quota.NewGate()

		first := gate.Observe(checkResultAt(5, plan.ResourceAnalyses), recordWith(5))
		require.NotNil(t, first)

		rec := usage.Record{CustomerID: "user-123", Period: gatePeriod, Exports: 5}
		second := gate.Observe(checkResultAt(5, plan.ResourceExports), rec)
		require.NotNil(t, second)
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("customers are independent", func(t *testing.T) {
		t.Parallel()

		gate := quota.NewGate()

		require.NotNil(t, gate.Observe(checkResultAt(5, plan.ResourceAnalyses), recordWith(5)))

		other := checkResultAt(5, plan.ResourceAnalyses)
		other.CustomerID = "user-456"
		rec := recordWith(5)
		rec.CustomerID = "user-456"
		assert.NotNil(t, gate.Observe(other, rec))
	})

	t.Run("fires again in a new period", func(t *testing.T) {
		t.Parallel()

		gate := quota.NewGate()

		require.NotNil(t, gate.Observe(checkResultAt(5, plan.ResourceAnalyses), recordWith(5)))
		require.Nil(t, gate.Observe(checkResultAt(5, plan.ResourceAnalyses), recordWith(6)))

		next := checkResultAt(5, plan.ResourceAnalyses)
		next.Period = usage.Period("2024-06")
		rec := recordWith(5)
		rec.Period = usage.Period("2024-06")
		assert.NotNil(t, gate.Observe(next, rec))
	})

	t.Run("signals are pushed on the channel", func(t *testing.T) {
		t.Parallel()

		gate := quota.NewGate(quota.WithSignalBuffer(1))

		signal := gate.Observe(checkResultAt(5, plan.ResourceAnalyses), recordWith(5))
		require.NotNil(t, signal)

		select {
		case pushed := <-gate.Signals():
			assert.Equal(t, *signal, pushed)
		default:
			t.Fatal("expected a buffered signal")
		}
	})

	t.Run("full channel does not block", func(t *testing.T) {
		t.Parallel()

		gate := quota.NewGate(quota.WithSignalBuffer(1))

		require.NotNil(t, gate.Observe(checkResultAt(5, plan.ResourceAnalyses), recordWith(5)))

		// Nobody drains the channel; the next emit must still return.
		rec := usage.Record{CustomerID: "user-123", Period: gatePeriod, Exports: 5}
		assert.NotNil(t, gate.Observe(checkResultAt(5, plan.ResourceExports), rec))
	})
}

// TestGate_FifthCommitSignalsOnce drives a real Enforcer and Gate together
// through the free-tier analyses budget.
func TestGate_FifthCommitSignalsOnce(t *testing.T) {
	t.Parallel()

	store := usage.NewMemoryStore()
	now := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	enforcer := quota.NewEnforcer(testRegistry(t), store, quota.StaticTierResolver(plan.TierFree),
		quota.WithClock(func() time.Time { return now }))
	gate := quota.NewGate()
	ctx := context.Background()

	var signals []*quota.UpgradeSignal
	for range 5 {
		result, err := enforcer.Check(ctx, testCustomer, plan.ResourceAnalyses)
		require.NoError(t, err)
		require.True(t, result.Allowed)

		rec, err := enforcer.Commit(ctx, testCustomer, plan.ResourceAnalyses)
		require.NoError(t, err)

		if signal := gate.Observe(result, rec); signal != nil {
			signals = append(signals, signal)
		}
	}

	require.Len(t, signals, 1, "exactly one signal across the whole budget")
	assert.EqualValues(t, 5, signals[0].Current)

	denied, err := enforcer.Check(ctx, testCustomer, plan.ResourceAnalyses)
	require.NoError(t, err)
	assert.False(t, denied.Allowed)
	assert.Nil(t, gate.Observe(denied, recordWith(5)), "denied check does not re-signal")
}
