package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
const (
	attrOutcome   = "outcome"
	attrService   = "service"
	attrOperation = "operation"
	attrStatus    = "status"
	attrTool      = "tool"
)

// Metrics records the server's counters and histograms. The zero value is
// a no-op recorder, which is what callers get when instrumentation is
// disabled.
type Metrics struct {
	authExchangesTotal   metric.Int64Counter
	identityLookupsTotal metric.Int64Counter
	activeSessions       metric.Int64UpDownCounter
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram
	apiOperationsTotal   metric.Int64Counter
	apiOperationDuration metric.Float64Histogram
}

// NewMetrics creates a Metrics instance with all instruments registered
// on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.authExchangesTotal, err = meter.Int64Counter(
		"oauth_exchanges_total",
		metric.WithDescription("Authorization code exchange attempts by outcome"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_exchanges_total counter: %w", err)
	}

	m.identityLookupsTotal, err = meter.Int64Counter(
		"identity_lookups_total",
		metric.WithDescription("Userinfo identity lookups by outcome"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity_lookups_total counter: %w", err)
	}

	m.activeSessions, err = meter.Int64UpDownCounter(
		"active_sessions",
		metric.WithDescription("Number of active user sessions"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create active_sessions gauge: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"tool_invocations_total",
		metric.WithDescription("MCP tool invocations by tool and status"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"tool_duration_seconds",
		metric.WithDescription("MCP tool invocation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool_duration_seconds histogram: %w", err)
	}

	m.apiOperationsTotal, err = meter.Int64Counter(
		"google_api_operations_total",
		metric.WithDescription("Google API operations by service, operation, and status"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create google_api_operations_total counter: %w", err)
	}

	m.apiOperationDuration, err = meter.Float64Histogram(
		"google_api_operation_duration_seconds",
		metric.WithDescription("Google API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create google_api_operation_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordAuthExchange counts an authorization code exchange attempt.
// Outcomes: success, empty_code, code_reuse, exchange_error, identity_error.
func (m *Metrics) RecordAuthExchange(ctx context.Context, outcome string) {
	if m == nil || m.authExchangesTotal == nil {
		return
	}
	m.authExchangesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrOutcome, outcome),
	))
}

// RecordIdentityLookup counts a userinfo lookup attempt.
func (m *Metrics) RecordIdentityLookup(ctx context.Context, outcome string) {
	if m == nil || m.identityLookupsTotal == nil {
		return
	}
	m.identityLookupsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrOutcome, outcome),
	))
}

// SessionOpened increments the active session gauge.
func (m *Metrics) SessionOpened(ctx context.Context) {
	if m == nil || m.activeSessions == nil {
		return
	}
	m.activeSessions.Add(ctx, 1)
}

// SessionClosed decrements the active session gauge.
func (m *Metrics) SessionClosed(ctx context.Context) {
	if m == nil || m.activeSessions == nil {
		return
	}
	m.activeSessions.Add(ctx, -1)
}

// RecordToolInvocation counts a tool invocation and records its duration.
func (m *Metrics) RecordToolInvocation(ctx context.Context, tool, status string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrTool, tool),
		attribute.String(attrStatus, status),
	)
	m.toolInvocationsTotal.Add(ctx, 1, attrs)
	m.toolDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordAPIOperation counts a Google API call and records its duration.
func (m *Metrics) RecordAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m == nil || m.apiOperationsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	)
	m.apiOperationsTotal.Add(ctx, 1, attrs)
	m.apiOperationDuration.Record(ctx, duration.Seconds(), attrs)
}
