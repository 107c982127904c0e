// Package telemetry provides OpenTelemetry instrumentation for the sync engine.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// SyncMetricsMeterName is the name used for the sync metrics meter
	SyncMetricsMeterName = "github-history-sync/sync"

	KindCommit = "commit"
	KindIssue  = "issue"
)

// SyncMetrics holds the OpenTelemetry instruments for sync operations.
// A nil *SyncMetrics is valid and records nothing.
type SyncMetrics struct {
	repoDuration   metric.Float64Histogram
	itemsProcessed metric.Int64Counter
	skippedCycles  metric.Int64Counter
}

// NewSyncMetrics creates a new SyncMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewSyncMetrics(provider metric.MeterProvider) (*SyncMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(SyncMetricsMeterName)

	repoDuration, err := meter.Float64Histogram(
		"ghsync_repository_sync_duration_seconds",
		metric.WithDescription("Duration of a single repository sync pass in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600),
	)
	if err != nil {
		return nil, err
	}

	itemsProcessed, err := meter.Int64Counter(
		"ghsync_items_processed_total",
		metric.WithDescription("Commits and issues newly stored"),
		metric.WithUnit("{item}"),
	)
	if err != nil {
		return nil, err
	}

	skippedCycles, err := meter.Int64Counter(
		"ghsync_cycles_skipped_total",
		metric.WithDescription("Sync cycles skipped because the lock was held"),
		metric.WithUnit("{cycle}"),
	)
	if err != nil {
		return nil, err
	}

	return &SyncMetrics{
		repoDuration:   repoDuration,
		itemsProcessed: itemsProcessed,
		skippedCycles:  skippedCycles,
	}, nil
}

// RecordRepositorySync records the duration and outcome of one repository pass.
func (m *SyncMetrics) RecordRepositorySync(ctx context.Context, fullName string, duration time.Duration, success bool) {
	if m == nil || m.repoDuration == nil {
		return
	}
	m.repoDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("repository", fullName),
		attribute.Bool("success", success),
	))
}

// AddItemsProcessed counts newly stored items of the given kind.
func (m *SyncMetrics) AddItemsProcessed(ctx context.Context, fullName, kind string, n int) {
	if m == nil || m.itemsProcessed == nil || n <= 0 {
		return
	}
	m.itemsProcessed.Add(ctx, int64(n), metric.WithAttributes(
		attribute.String("repository", fullName),
		attribute.String("kind", kind),
	))
}

// RecordSkippedCycle counts a cycle that did not run because another holder owned the lock.
func (m *SyncMetrics) RecordSkippedCycle(ctx context.Context) {
	if m == nil || m.skippedCycles == nil {
		return
	}
	m.skippedCycles.Add(ctx, 1)
}
