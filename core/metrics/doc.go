// Package metrics defines the sinks recording trip activity. A sink must
// record trips; the optional recorder interfaces (rejections, day
// boundaries, garage occupancy) are detected by type assertion. Sinks such
// as PromSink and InfluxSink live in infra/metrics and register themselves
// with the factory so they can be selected from configuration. Several
// configured sinks are combined in a MultiSink.
package metrics
