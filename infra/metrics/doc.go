// Package metrics holds the sinks registered with core/metrics: a
// Prometheus sink with its /metrics server, an InfluxDB sink, and the
// collector feeding either from the session event bus.
package metrics
