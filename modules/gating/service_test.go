package gating_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gianmichelesiano/brokerai-sub001/modules/gating"
	"github.com/gianmichelesiano/brokerai-sub001/pkg/identity"
	"github.com/gianmichelesiano/brokerai-sub001/pkg/plan"
	"github.com/gianmichelesiano/brokerai-sub001/pkg/quota"
	"github.com/gianmichelesiano/brokerai-sub001/pkg/usage"
)

func authenticatedProvider(id, email, name string) identity.Provider {
	return identity.ProviderFunc(func(ctx context.Context) (*identity.ProviderUser, error) {
		return &identity.ProviderUser{ID: id, Email: email, FullName: name}, nil
	})
}

func newService(t *testing.T, tier plan.Tier, provider identity.Provider) *gating.Service {
	t.Helper()

	registry, err := plan.NewRegistry(context.Background(), plan.NewInMemSource(plan.DefaultCatalog()))
	require.NoError(t, err)

	resolver := identity.NewResolver(provider)
	enforcer := quota.NewEnforcer(registry, usage.NewMemoryStore(), quota.StaticTierResolver(tier))
	return gating.NewService(resolver, enforcer, quota.NewGate())
}

func TestService_FreeTierBudget(t *testing.T) {
	t.Parallel()

	svc := newService(t, plan.TierFree, authenticatedProvider("user-123", "ada@example.com", "Ada Lovelace"))
	ctx := context.Background()
	customer := svc.ResolveIdentity(ctx)

	require.True(t, customer.Authenticated())
	require.Equal(t, "user-123", customer.ID)

	var signals []*quota.UpgradeSignal
	for i := range 5 {
		result, err := svc.CheckLimit(ctx, customer, plan.ResourceAnalyses)
		require.NoError(t, err)
		require.True(t, result.Allowed, "attempt %d should be within budget", i+1)

		rec, signal, err := svc.CommitUsage(ctx, customer, plan.ResourceAnalyses)
		require.NoError(t, err)
		assert.EqualValues(t, i+1, rec.Analyses)
		if signal != nil {
			signals = append(signals, signal)
		}
	}

	require.Len(t, signals, 1, "the budget-exhausting commit signals exactly once")
	assert.EqualValues(t, 5, signals[0].Current)
	assert.EqualValues(t, 5, signals[0].Limit)
	assert.Equal(t, plan.TierFree, signals[0].Tier)

	denied, err := svc.CheckLimit(ctx, customer, plan.ResourceAnalyses)
	require.NoError(t, err)
	assert.False(t, denied.Allowed)
	assert.EqualValues(t, 5, denied.Current)
	assert.EqualValues(t, 5, denied.Limit)
	assert.Equal(t, plan.TierFree, denied.Tier)

	// The signal also reached the push channel, once.
	select {
	case pushed := <-svc.Signals():
		assert.Equal(t, *signals[0], pushed)
	default:
		t.Fatal("expected a pushed upgrade signal")
	}
	select {
	case extra := <-svc.Signals():
		t.Fatalf("unexpected second signal %+v", extra)
	default:
	}
}

func TestService_AnonymousCallerIsGatedToo(t *testing.T) {
	t.Parallel()

	noSession := identity.ProviderFunc(func(ctx context.Context) (*identity.ProviderUser, error) {
		return nil, nil
	})
	svc := newService(t, plan.TierFree, noSession)
	ctx := context.Background()

	customer := svc.ResolveIdentity(ctx)
	require.False(t, customer.Authenticated())
	require.Equal(t, identity.SourceFallback, customer.Source)
	require.NotEmpty(t, customer.ID)

	// Fallback identities consume quota under their synthetic key like
	// anyone else.
	rec, _, err := svc.CommitUsage(ctx, customer, plan.ResourceAnalyses)
	require.NoError(t, err)
	assert.EqualValues(t, 1, rec.Analyses)
	assert.Equal(t, customer.ID, rec.CustomerID)
}

func TestService_Usage(t *testing.T) {
	t.Parallel()

	svc := newService(t, plan.TierProfessional, authenticatedProvider("user-123", "ada@example.com", "Ada"))
	ctx := context.Background()
	customer := svc.ResolveIdentity(ctx)

	_, _, err := svc.CommitUsage(ctx, customer, plan.ResourceExports)
	require.NoError(t, err)

	all, err := svc.Usage(ctx, customer)
	require.NoError(t, err)
	require.Len(t, all, len(plan.AllResources))

	assert.EqualValues(t, 1, all[plan.ResourceExports].Current)
	assert.EqualValues(t, 0, all[plan.ResourceAnalyses].Current)
	for _, res := range plan.AllResources {
		assert.Equal(t, plan.TierProfessional, all[res].Tier)
	}
}

func TestNewService_NilDependenciesPanic(t *testing.T) {
	t.Parallel()

	resolver := identity.NewResolver(authenticatedProvider("u", "u@example.com", "U"))
	registry, err := plan.NewRegistry(context.Background(), plan.NewInMemSource(plan.DefaultCatalog()))
	require.NoError(t, err)
	enforcer := quota.NewEnforcer(registry, usage.NewMemoryStore(), quota.StaticTierResolver(plan.TierFree))

	assert.Panics(t, func() { gating.NewService(nil, enforcer, quota.NewGate()) })
	assert.Panics(t, func() { gating.NewService(resolver, nil, quota.NewGate()) })
	assert.Panics(t, func() { gating.NewService(resolver, enforcer, nil) })
}
