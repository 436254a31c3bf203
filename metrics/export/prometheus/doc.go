// Package prometheus provides a Prometheus text-exposition renderer for
// frontauth metrics.
//
// [NewExporter] accepts a [frontauth.Engine] and exposes an [http.Handler]
// that renders all frontauth counters and histograms in Prometheus text
// exposition format. Counter names are prefixed frontauth_*_total; the
// single histogram is frontauth_resolve_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus
