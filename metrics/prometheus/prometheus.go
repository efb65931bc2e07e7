// Package prometheus exports hugecc run metrics to Prometheus.
package prometheus

import (
	"time"

	"github.com/hupe1980/hugecc"
	prom "github.com/prometheus/client_golang/prometheus"
)

// Collector implements hugecc.MetricsCollector on Prometheus counters and
// histograms.
type Collector struct {
	runs           *prom.CounterVec
	importNodes    prom.Counter
	importDuration prom.Histogram
	computeBatches *prom.CounterVec
	computeDur     *prom.HistogramVec
	mergeDuration  prom.Histogram
	exportRecords  prom.Counter
	exportDuration prom.Histogram
}

var _ hugecc.MetricsCollector = (*Collector)(nil)

// New creates a collector and registers its metrics on reg under namespace.
// A nil reg uses prometheus.DefaultRegisterer.
func New(reg prom.Registerer, namespace string) (*Collector, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	c := &Collector{
		runs: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_total",
			Help:      "Completed stages by stage and status",
		}, []string{"stage", "status"}),
		importNodes: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "import_nodes_total",
			Help:      "Nodes imported into adjacency stores",
		}),
		importDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "import_duration_seconds",
			Help:      "Graph import duration",
			Buckets:   prom.ExponentialBuckets(0.01, 4, 10),
		}),
		computeBatches: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "compute_batches_total",
			Help:      "Union-find batches computed by strategy",
		}, []string{"strategy"}),
		computeDur: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "compute_duration_seconds",
			Help:      "Union-find computation duration by strategy",
			Buckets:   prom.ExponentialBuckets(0.01, 4, 10),
		}, []string{"strategy"}),
		mergeDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "merge_duration_seconds",
			Help:      "Duration of one pairwise disjoint-set merge",
			Buckets:   prom.ExponentialBuckets(0.0001, 4, 10),
		}),
		exportRecords: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "export_records_total",
			Help:      "Result records written",
		}),
		exportDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "export_duration_seconds",
			Help:      "Result export duration",
			Buckets:   prom.ExponentialBuckets(0.01, 4, 10),
		}),
	}

	for _, m := range []prom.Collector{
		c.runs, c.importNodes, c.importDuration, c.computeBatches,
		c.computeDur, c.mergeDuration, c.exportRecords, c.exportDuration,
	} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RecordImport implements hugecc.MetricsCollector.
func (c *Collector) RecordImport(nodes int, duration time.Duration, err error) {
	c.stage(hugecc.StageImport, err)
	c.importDuration.Observe(duration.Seconds())
	if err == nil {
		c.importNodes.Add(float64(nodes))
	}
}

// RecordCompute implements hugecc.MetricsCollector.
func (c *Collector) RecordCompute(strategy string, batches int, duration time.Duration, err error) {
	c.stage(hugecc.StageCompute, err)
	c.computeBatches.WithLabelValues(strategy).Add(float64(batches))
	c.computeDur.WithLabelValues(strategy).Observe(duration.Seconds())
}

// RecordMerge implements hugecc.MetricsCollector.
func (c *Collector) RecordMerge(duration time.Duration) {
	c.mergeDuration.Observe(duration.Seconds())
}

// RecordExport implements hugecc.MetricsCollector.
func (c *Collector) RecordExport(records int64, duration time.Duration, err error) {
	c.stage(hugecc.StageExport, err)
	c.exportRecords.Add(float64(records))
	c.exportDuration.Observe(duration.Seconds())
}

func (c *Collector) stage(stage hugecc.Stage, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.runs.WithLabelValues(string(stage), status).Inc()
}
