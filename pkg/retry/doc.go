// Package retry provides simple exponential backoff retry logic for transient failures.
//
// # Overview
//
// This package offers a minimal retry mechanism with exponential backoff,
// used for one-shot operations (control-plane requests) via Do, and for the
// stream client's open-ended reconnection schedule via Config.DelayFor.
//
// # Core Functions
//
//   - Do: Execute function with retry and exponential backoff
//   - DoWithResult: Execute function with retry, returns both result and error
//   - Config.DelayFor: Compute the delay for a given attempt without executing
//
// # Configuration Presets
//
//   - DefaultConfig(): 3 attempts, 100ms-5s delay (normal operations)
//   - Quick(): 10 attempts, 50ms-1s delay (startup probing)
//   - Reconnect(): 1s-30s doubling, no jitter (stream reconnection schedule)
//
// # Usage Examples
//
// Basic retry with defaults:
//
//	err := retry.Do(ctx, retry.DefaultConfig(), func() error {
//	    return client.StartInference(ctx, req)
//	})
//
// Driving a reconnection loop directly:
//
//	cfg := retry.Reconnect()
//	delay := cfg.DelayFor(attempt) // 1s, 2s, 4s, 8s, 16s, 30s, 30s, ...
//
// Marking an error as non-retryable:
//
//	return retry.NonRetryable(fmt.Errorf("bad request: %w", err))
package retry
