package usage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gianmichelesiano/brokerai-sub001/pkg/plan"
)

// PostgresStore implements Store on the usage_records table (see
// pkg/usage/migrations). Increments are single conditional upserts, so the
// database serializes concurrent writers on the (customer_id, period) row
// without any read-modify-write in application code.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a usage store backed by the given connection pool.
// Panics if pool is nil to fail fast during initialization.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("usage: pgx pool is required")
	}
	return &PostgresStore{pool: pool}
}

const selectRecordQuery = `
SELECT customer_id, period, analyses_used, ai_analyses_used, exports_generated, companies_active, updated_at
FROM usage_records
WHERE customer_id = $1 AND period = $2`

// Get returns the record for (customerID, period), zeroed if no row exists.
func (ps *PostgresStore) Get(ctx context.Context, customerID string, period Period) (Record, error) {
	if err := validateKey(customerID, period, 0); err != nil {
		return Record{}, err
	}

	rec, err := scanRecord(ps.pool.QueryRow(ctx, selectRecordQuery, customerID, string(period)))
	if errors.Is(err, pgx.ErrNoRows) {
		return zeroRecord(customerID, period), nil
	}
	if err != nil {
		return Record{}, errors.Join(ErrStoreUnavailable, err)
	}
	return rec, nil
}

// Increment upserts the (customer, period) row adding delta to the resource
// column, and returns the post-increment record from the same statement.
func (ps *PostgresStore) Increment(ctx context.Context, customerID string, period Period, res plan.Resource, delta int64) (Record, error) {
	if err := validateKey(customerID, period, delta); err != nil {
		return Record{}, err
	}

	col := columnFor(res)
	query := fmt.Sprintf(`
INSERT INTO usage_records (customer_id, period, %[1]s, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (customer_id, period)
DO UPDATE SET %[1]s = usage_records.%[1]s + $3, updated_at = now()
RETURNING customer_id, period, analyses_used, ai_analyses_used, exports_generated, companies_active, updated_at`, col)

	rec, err := scanRecord(ps.pool.QueryRow(ctx, query, customerID, string(period), delta))
	if err != nil {
		return Record{}, errors.Join(ErrStoreUnavailable, err)
	}
	return rec, nil
}

// columnFor maps a resource to its counter column. The column name is always
// one of four compile-time constants, never caller input.
func columnFor(res plan.Resource) string {
	switch res {
	case plan.ResourceAnalyses:
		return "analyses_used"
	case plan.ResourceAIAnalyses:
		return "ai_analyses_used"
	case plan.ResourceExports:
		return "exports_generated"
	case plan.ResourceCompanies:
		return "companies_active"
	}
	panic("usage: unknown resource " + string(res))
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	var period string
	if err := row.Scan(&rec.CustomerID, &period, &rec.Analyses, &rec.AIAnalyses, &rec.Exports, &rec.Companies, &rec.UpdatedAt); err != nil {
		return Record{}, err
	}
	rec.Period = Period(period)
	return rec, nil
}

var _ Store = (*PostgresStore)(nil)
