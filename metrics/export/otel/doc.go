// Package otel provides OpenTelemetry metric exporter bindings for the
// client counters.
//
// [NewOTelExporter] registers an Int64ObservableCounter instrument per
// counter. A single callback reads [aureum.Client.MetricsSnapshot] on each
// collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider — callers supply the Meter.
//   - Mutate client state.
package otel
