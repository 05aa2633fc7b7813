// Package component manages lifecycle-managed application infrastructure.
//
// A Component is started in registration order, stopped in reverse and
// polled for health. The inspector server and the telemetry exporters are
// registered as components by the bootstrap package; Func adapts plain
// functions for anything smaller.
package component
