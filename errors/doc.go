// Package errors provides standardized error handling patterns for EdgeTune.
//
// # Overview
//
// The errors package implements a three-class error classification system:
// Transient (temporary, retryable), Invalid (bad input, non-retryable), and
// Fatal (unrecoverable, stop processing).
//
// The stream client maps its failure taxonomy onto these classes: transport
// failures are Transient (the connection manager retries them with backoff),
// decode failures and unknown envelope types are Invalid (discarded
// silently), and only configuration mistakes caught at construction time are
// Fatal. Nothing in the running stream core produces a Fatal error.
//
// # Quick Start
//
// Use standard error variables for known conditions:
//
//	if env.Type == "" {
//	    return fmt.Errorf("%w: missing type tag", errors.ErrInvalidData)
//	}
//
// Wrap errors with component context and classification:
//
//	if err := json.Unmarshal(raw, &env); err != nil {
//	    return errors.WrapInvalid(err, "router", "decode", "unmarshal envelope")
//	}
//
// Check classification when handling:
//
//	if errors.IsTransient(err) {
//	    // schedule a reconnect
//	}
//
// The classification system integrates with Go's standard error handling,
// supporting errors.Is(), errors.As(), and error wrapping chains.
package errors
