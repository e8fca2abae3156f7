// Package inbound maps billing host lifecycle hooks onto provisioning
// operations.
//
// Hosts re-fire lifecycle hooks on timeouts, so dispatch uses
// claim/complete/fail idempotency semantics to keep retries safe.
package inbound
