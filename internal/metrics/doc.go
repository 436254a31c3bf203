// Package metrics provides lock-free counters and latency histograms for
// frontauth observability.
//
// # Design
//
// Counters are stored in plain [sync/atomic.Uint64] slots and incremented
// atomically via [sync/atomic.Uint64.Add]. Histograms use 8 fixed buckets
// (≤1ms … +Inf). Both are allocation-free on the write path.
//
// # Architecture boundaries
//
// This package owns metric storage and snapshot creation. Metric export
// (Prometheus, OTel) lives in metrics/export/ and reads Snapshot values.
//
// # What this package must NOT do
//
//   - Perform I/O or network calls.
//   - Import frontauth or any sibling package.
//   - Expose global metric registries.
package metrics
