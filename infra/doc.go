// Package infra contains the adapters around the session: the zerolog and
// logrus loggers, metrics sinks, the MQTT event publisher and the Sentry
// monitor. These packages depend only on interfaces defined in core.
package infra
