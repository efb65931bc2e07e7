package hugecc

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the
// metrics/prometheus package provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordImport is called after each graph import.
	// nodes is the number of mapped nodes, err is nil if successful.
	RecordImport(nodes int, duration time.Duration, err error)

	// RecordCompute is called after each union-find computation.
	RecordCompute(strategy string, batches int, duration time.Duration, err error)

	// RecordMerge is called after each pairwise merge of batch structures.
	RecordMerge(duration time.Duration)

	// RecordExport is called after each export of results.
	RecordExport(records int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordImport(int, time.Duration, error)          {}
func (NoopMetricsCollector) RecordCompute(string, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordMerge(time.Duration)                       {}
func (NoopMetricsCollector) RecordExport(int64, time.Duration, error)        {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ImportCount       atomic.Int64
	ImportErrors      atomic.Int64
	ImportNodes       atomic.Int64
	ImportTotalNanos  atomic.Int64
	ComputeCount      atomic.Int64
	ComputeErrors     atomic.Int64
	ComputeBatches    atomic.Int64
	ComputeTotalNanos atomic.Int64
	MergeCount        atomic.Int64
	MergeTotalNanos   atomic.Int64
	ExportCount       atomic.Int64
	ExportErrors      atomic.Int64
	ExportRecords     atomic.Int64
}

// RecordImport implements MetricsCollector.
func (b *BasicMetricsCollector) RecordImport(nodes int, duration time.Duration, err error) {
	b.ImportCount.Add(1)
	b.ImportTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ImportErrors.Add(1)
		return
	}
	b.ImportNodes.Add(int64(nodes))
}

// RecordCompute implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCompute(_ string, batches int, duration time.Duration, err error) {
	b.ComputeCount.Add(1)
	b.ComputeBatches.Add(int64(batches))
	b.ComputeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ComputeErrors.Add(1)
	}
}

// RecordMerge implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMerge(duration time.Duration) {
	b.MergeCount.Add(1)
	b.MergeTotalNanos.Add(duration.Nanoseconds())
}

// RecordExport implements MetricsCollector.
func (b *BasicMetricsCollector) RecordExport(records int64, _ time.Duration, err error) {
	b.ExportCount.Add(1)
	b.ExportRecords.Add(records)
	if err != nil {
		b.ExportErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ImportCount:     b.ImportCount.Load(),
		ImportErrors:    b.ImportErrors.Load(),
		ImportNodes:     b.ImportNodes.Load(),
		ImportAvgNanos:  avg(b.ImportTotalNanos.Load(), b.ImportCount.Load()),
		ComputeCount:    b.ComputeCount.Load(),
		ComputeErrors:   b.ComputeErrors.Load(),
		ComputeBatches:  b.ComputeBatches.Load(),
		ComputeAvgNanos: avg(b.ComputeTotalNanos.Load(), b.ComputeCount.Load()),
		MergeCount:      b.MergeCount.Load(),
		MergeAvgNanos:   avg(b.MergeTotalNanos.Load(), b.MergeCount.Load()),
		ExportCount:     b.ExportCount.Load(),
		ExportErrors:    b.ExportErrors.Load(),
		ExportRecords:   b.ExportRecords.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ImportCount     int64
	ImportErrors    int64
	ImportNodes     int64
	ImportAvgNanos  int64
	ComputeCount    int64
	ComputeErrors   int64
	ComputeBatches  int64
	ComputeAvgNanos int64
	MergeCount      int64
	MergeAvgNanos   int64
	ExportCount     int64
	ExportErrors    int64
	ExportRecords   int64
}
