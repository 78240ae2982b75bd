// Package health provides health status tracking for EdgeTune client
// components.
//
// The stream client reports one status per concern: the connection itself
// (healthy when open, unhealthy when disconnected) and, when the staleness
// watchdog is enabled, the heartbeat (degraded when no frame has arrived
// within the configured window). Monitor aggregates these into a single
// client-level status for the CLI's health endpoint.
//
// Error messages embedded in statuses should pass through SanitizeMessage
// first so URLs, paths, addresses, and credentials never leak into
// monitoring output.
package health
