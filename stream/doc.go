// Package stream implements the client core of the EdgeTune dashboard: a
// connection manager that keeps one WebSocket open to the backend with
// capped exponential backoff, and a message router that fans inbound frames
// into bounded histories, latest-value slots, the notification channel, and
// the video frame publisher.
//
// The transport is deliberately boring. Frames are routed synchronously on
// the read loop, decode failures are dropped without side effects, and a
// lost connection costs nothing but freshness: sinks keep their contents
// across reconnects and only an explicit Reset empties them.
package stream
