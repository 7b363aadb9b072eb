// Package gating wires the identity resolver, quota enforcer and
// notification gate into the surface callers integrate against, plus a thin
// chi router exposing it over JSON.
package gating
