// Package edgetune provides the stream-client core for the EdgeTune
// real-time inference monitoring dashboard.
//
// # Architecture
//
// The client owns one persistent WebSocket to the EdgeTune backend and
// fans every inbound envelope out to an appropriate sink:
//
//	┌─────────────────────────────────────┐
//	│        Connection Manager           │  dial, backoff, teardown
//	│        (stream.Client)              │  Idle→Connecting→Open→Closed
//	└─────────────────────────────────────┘
//	           ↓ hands frames to
//	┌─────────────────────────────────────┐
//	│         Message Router              │  decode, dispatch by type tag
//	└─────────────────────────────────────┘
//	           ↓ fans out to
//	┌──────────────┬──────────┬───────────┐
//	│ Histories    │ Latest   │ Frame     │  bounded FIFO logs,
//	│ (buffer)     │ slots    │ publisher │  overwrite slots,
//	│              │          │ (framepub)│  direct callbacks
//	└──────────────┴──────────┴───────────┘
//
// Two delivery paths exist on purpose: aggregate dashboard state flows
// through histories and latest-value slots that consumers poll via
// snapshots, while video-rate payloads bypass that entirely and reach
// registered callbacks through framepub, so a 30 fps stream never forces
// the rest of the UI state to churn.
//
// # Packages
//
//   - stream: connection manager, router, and sinks (the core)
//   - envelope: wire envelope and typed payloads
//   - framepub: direct subscriber fan-out for video frames
//   - notify: single-slot self-expiring notification channel
//   - control: REST control-plane client (start/stop, mode, playback)
//   - pkg/buffer: generic bounded history with FIFO eviction
//   - pkg/retry: exponential backoff
//   - errors, metric, health, config: ambient infrastructure
//
// # Failure model
//
// There is no fatal error class in this client. Transport failures are
// retried forever with capped exponential backoff; malformed frames and
// unknown type tags are discarded silently. Callers observe only the
// connected/disconnected signal and the contents of the sinks.
package edgetune
