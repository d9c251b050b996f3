// Package instrumentation provides the server's metrics via OpenTelemetry
// with a Prometheus exporter. The provider is optional: when disabled it
// hands out a no-op Metrics recorder so callers never branch on whether
// instrumentation is on.
package instrumentation
