// Package prometheus provides Prometheus collectors for the client metrics.
//
// [NewPrometheusExporter] accepts an [aureum.Client] and exposes an
// [http.Handler] that renders all counters in Prometheus text exposition
// format. Counter names are prefixed aureum_*_total.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate client state.
package prometheus
