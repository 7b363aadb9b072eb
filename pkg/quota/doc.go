// Package quota combines the plan registry and the usage store to answer
// "may this action proceed" and "record that it happened".
//
// Enforcement follows a soft-limit policy: Check is read-only and Commit
// increments without re-checking, trusting that Check ran first. Under high
// concurrency two callers can both pass Check and both Commit, so usage can
// exceed the nominal limit by at most the number of in-flight requests for
// that key. Overshoot is logged and tolerated, never rolled back; lost
// updates are not (the store increments atomically).
//
// Backend failures degrade instead of denying: an unreachable tier source
// falls back to the configured degraded tier (Free by default) and an
// unreadable usage counter is treated as zero. Both paths mark the result
// as Degraded and log a warning, so the choice is visible at the call site.
//
// The Gate observes committed usage and emits a one-time UpgradeSignal per
// (customer, period, resource) when a finite limit is first reached, for the
// caller to render an upsell prompt. It has no further side effects.
package quota
