// Package usage holds the authoritative, period-scoped usage counters behind
// quota enforcement.
//
// Counters are keyed by (customer, period, resource) with the period being the
// calendar month in YYYY-MM form. Rollover is lazy: the first access in a new
// period starts a fresh zeroed record, and prior periods are retained for
// audit but never consulted by enforcement again.
//
// Every Store implementation must make Increment atomic per key - a naive
// read-modify-write is a correctness bug under concurrent writers. The
// provided backends use per-record atomics (MemoryStore), HINCRBY
// (RedisStore), INSERT .. ON CONFLICT DO UPDATE (PostgresStore), and
// FindOneAndUpdate with $inc (MongoStore).
package usage
