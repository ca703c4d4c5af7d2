// Package sim replays a solved bus allocation stop-by-stop to measure
// realized service quality.
//
// Each allocated (route, slot) pair expands into evenly spaced bus
// instances; every instance runs an independent state machine over the
// route's stop sequence, sampling boarding, alighting, dwell and
// travel times from named, deterministically seeded random streams.
// Instances simulate concurrently and publish into an event log that
// is drained in canonical order, so a fixed seed yields a
// byte-identical event log. Missing reference data is absorbed by
// documented fallbacks, never surfaced as an error.
package sim
