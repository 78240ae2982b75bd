// Package buffer provides a thread-safe bounded history with strict FIFO
// eviction, built-in statistics tracking, and optional Prometheus metrics.
//
// # Overview
//
// History is the storage primitive behind every rolling collection the
// dashboard keeps: telemetry snapshots, autopilot decisions, explanations,
// advisor suggestions. Each history has a capacity fixed at construction;
// appending the (N+1)-th record drops the oldest one, so memory stays
// bounded under an unbounded-duration stream while survivor order is
// preserved.
//
// # Quick Start
//
// Basic history creation:
//
//	hist, err := buffer.NewHistory[Telemetry](120)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	hist.Append(snap)
//	records := hist.Snapshot() // ordered copy, oldest first
//
// With metrics:
//
//	hist, err := buffer.NewHistory[Decision](50,
//		buffer.WithMetrics[Decision](registry, "decisions"),
//	)
//
// # Concurrency
//
// All methods are safe for concurrent use. Snapshot returns a copy, so
// readers never observe in-place mutation; eviction callbacks run outside
// the history lock.
package buffer
