package quota

import (
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/gianmichelesiano/brokerai-sub001/pkg/plan"
	"github.com/gianmichelesiano/brokerai-sub001/pkg/usage"
)

// defaultSignalBuffer bounds the push channel; emits beyond it are dropped
// rather than blocking the committing request.
const defaultSignalBuffer = 64

// Gate observes committed usage and emits a one-time upgrade signal when a
// finite limit is first reached. Idempotent per (customer, period, resource):
// subsequent denied checks or further commits in the same period stay silent.
type Gate struct {
	mu      sync.Mutex
	fired   map[gateKey]struct{}
	signals chan UpgradeSignal
	logger  *slog.Logger
}

type gateKey struct {
	customerID string
	period     usage.Period
	resource   plan.Resource
}

// GateOption configures a Gate during construction.
type GateOption func(*Gate)

// WithGateLogger sets the logger for emitted signals.
func WithGateLogger(logger *slog.Logger) GateOption {
	return func(g *Gate) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithSignalBuffer sets the capacity of the push channel.
func WithSignalBuffer(size int) GateOption {
	return func(g *Gate) {
		if size > 0 {
			g.signals = make(chan UpgradeSignal, size)
		}
	}
}

// NewGate creates an empty notification gate.
func NewGate(opts ...GateOption) *Gate {
	g := &Gate{
		fired:   make(map[gateKey]struct{}),
		signals: make(chan UpgradeSignal, defaultSignalBuffer),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Observe inspects the record produced by a Commit against the CheckResult
// that preceded it. It returns the UpgradeSignal exactly once per
// (customer, period, resource) when the counter first reaches (or, under
// overshoot, first exceeds) a finite limit, and nil in every other case.
// Unlimited resources never signal.
func (g *Gate) Observe(prev CheckResult, rec usage.Record) *UpgradeSignal {
	if prev.Limit == plan.Unlimited {
		return nil
	}

	current := rec.Count(prev.Resource)
	if current < prev.Limit {
		return nil
	}

	key := gateKey{
		customerID: rec.CustomerID,
		period:     rec.Period,
		resource:   prev.Resource,
	}

	g.mu.Lock()
	if _, seen := g.fired[key]; seen {
		g.mu.Unlock()
		return nil
	}
	g.fired[key] = struct{}{}
	g.pruneLocked(rec.Period)
	g.mu.Unlock()

	signal := UpgradeSignal{
		ID:         uuid.NewString(),
		CustomerID: rec.CustomerID,
		Resource:   prev.Resource,
		Current:    current,
		Limit:      prev.Limit,
		Tier:       prev.Tier,
		Period:     rec.Period,
	}

	g.logger.Info("limit reached",
		slog.String("signal_id", signal.ID),
		slog.String("customer_id", signal.CustomerID),
		slog.String("resource", string(signal.Resource)),
		slog.Int64("current", signal.Current),
		slog.Int64("limit", signal.Limit),
		slog.String("tier", string(signal.Tier)),
	)

	// Push delivery is best-effort: a slow or absent consumer must not block
	// the committing request, and the caller still has the returned signal.
	select {
	case g.signals <- signal:
	default:
	}

	return &signal
}

// Signals exposes emitted upgrade signals for push-style consumers.
func (g *Gate) Signals() <-chan UpgradeSignal {
	return g.signals
}

// pruneLocked drops idempotency entries from periods older than the current
// one. They can never fire again, so keeping them only grows the map.
func (g *Gate) pruneLocked(current usage.Period) {
	for key := range g.fired {
		if key.period < current {
			delete(g.fired, key)
		}
	}
}
