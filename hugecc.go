package hugecc

import (
	"context"
	"io"
	"iter"
	"time"

	"github.com/hupe1980/hugecc/adjacency"
	"github.com/hupe1980/hugecc/blobstore"
	"github.com/hupe1980/hugecc/core"
	"github.com/hupe1980/hugecc/dss"
	"github.com/hupe1980/hugecc/export"
	"github.com/hupe1980/hugecc/idmap"
	"github.com/hupe1980/hugecc/internal/resource"
	"github.com/hupe1980/hugecc/unionfind"
)

// Result is the outcome of Run. It owns the imported graph until Release is
// called. A Result is not safe for concurrent use.
type Result struct {
	NodeCount int
	SetCount  int
	// Complete is false when the run was terminated early. SetCount then
	// describes a partial partition.
	Complete bool
	Strategy unionfind.Strategy
	Batches  int
	Merges   int

	LoadDuration    time.Duration
	ComputeDuration time.Duration
	WriteDuration   time.Duration

	ids   *idmap.IDMap
	graph *adjacency.Graph
	set   *dss.DisjointSet
	opts  options
	rc    *resource.Controller
}

// Run imports the graph described by ids and src, then computes its
// weakly-connected components. Configuration errors are returned before any
// work starts.
func Run(ctx context.Context, ids *idmap.IDMap, src adjacency.RelationshipSource, optFns ...Option) (*Result, error) {
	o := applyOptions(optFns)
	if err := o.validate(); err != nil {
		return nil, err
	}
	if ids == nil {
		return nil, ErrNilIDMap
	}
	if src == nil {
		return nil, ErrNilSource
	}

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:   o.memoryLimit,
		IOLimitBytesPerSec: o.ioLimit,
	})
	res := &Result{
		NodeCount: ids.NodeCount(),
		Strategy:  o.strategy,
		ids:       ids,
		opts:      o,
		rc:        rc,
	}

	graph, err := res.load(ctx, src)
	if err != nil {
		return nil, stageError(StageImport, err)
	}
	res.graph = graph

	if !graph.Complete() {
		res.set = dss.New(graph.NodeCount())
		res.SetCount = res.set.SetCount()
		return res, nil
	}
	if err := res.compute(ctx); err != nil {
		graph.Release()
		return nil, stageError(StageCompute, err)
	}
	return res, nil
}

func (r *Result) load(ctx context.Context, src adjacency.RelationshipSource) (*adjacency.Graph, error) {
	o := r.opts
	logger := o.logger.WithStage(StageImport)
	opts := []adjacency.Option{
		adjacency.WithConcurrency(o.concurrency),
		adjacency.WithBatchSize(o.minBatchSize, o.maxBatchSize),
		adjacency.WithDirection(o.direction),
		adjacency.WithTermination(o.termination),
		adjacency.WithProgress(o.progressFor(StageImport)),
		adjacency.WithLogger(logger.Logger),
		adjacency.WithResourceController(r.rc),
	}
	if o.weighted {
		opts = append(opts, adjacency.WithWeights(o.defaultWeight))
	}
	if o.pageSize > 0 {
		opts = append(opts, adjacency.WithPageSize(o.pageSize))
	}

	start := time.Now()
	importer, err := adjacency.NewImporter(r.ids, src, opts...)
	if err != nil {
		return nil, err
	}
	graph, err := importer.Build(ctx)
	r.LoadDuration = time.Since(start)
	o.metricsCollector.RecordImport(r.ids.NodeCount(), r.LoadDuration, err)
	if err != nil {
		logger.LogImport(ctx, r.ids.NodeCount(), false, r.LoadDuration, err)
		return nil, err
	}
	logger.LogImport(ctx, graph.NodeCount(), graph.Complete(), r.LoadDuration, nil)
	return graph, nil
}

func (r *Result) compute(ctx context.Context) error {
	o := r.opts
	logger := o.logger.WithStage(StageCompute).WithStrategy(o.strategy.String())
	engine, err := unionfind.New(o.strategy, r.graph,
		unionfind.WithConcurrency(o.concurrency),
		unionfind.WithMinBatchSize(o.minBatchSize),
		unionfind.WithDirection(o.direction),
		unionfind.WithTermination(o.termination),
		unionfind.WithProgress(o.progressFor(StageCompute)),
		unionfind.WithLogger(logger.Logger),
		unionfind.WithMergeHook(o.metricsCollector.RecordMerge),
	)
	if err != nil {
		return err
	}

	start := time.Now()
	var out *unionfind.Result
	if o.weighted {
		out, err = engine.ComputeThreshold(ctx, o.threshold)
	} else {
		out, err = engine.Compute(ctx)
	}
	r.ComputeDuration = time.Since(start)
	if out != nil {
		o.metricsCollector.RecordCompute(o.strategy.String(), out.Batches, r.ComputeDuration, err)
	} else {
		o.metricsCollector.RecordCompute(o.strategy.String(), 0, r.ComputeDuration, err)
	}
	if err != nil {
		logger.LogCompute(ctx, 0, false, r.ComputeDuration, err)
		return err
	}

	r.set = out.Set
	r.SetCount = out.SetCount()
	r.Complete = out.Complete
	r.Batches = out.Batches
	r.Merges = out.Merges
	logger.LogCompute(ctx, r.SetCount, r.Complete, r.ComputeDuration, nil)
	return nil
}

// Set returns the computed partition over dense node ids.
func (r *Result) Set() *dss.DisjointSet { return r.set }

// IDMap returns the id map the run was computed over.
func (r *Result) IDMap() *idmap.IDMap { return r.ids }

// Graph returns the imported graph, or nil after Release.
func (r *Result) Graph() *adjacency.Graph { return r.graph }

// Stream yields (original node id, component id) pairs in dense id order.
func (r *Result) Stream() iter.Seq2[core.OriginalID, int64] {
	return export.Stream(r.ids, r.set)
}

// Members yields every component id with its member original ids, ordered
// by component id.
func (r *Result) Members() iter.Seq2[int64, []core.OriginalID] {
	return export.Members(r.ids, r.set)
}

// Write hands every node and its component id to fn using the run's
// concurrency, batch bounds and termination flag. opts override them.
func (r *Result) Write(ctx context.Context, fn export.WriteFunc, opts ...export.ExporterOption) (export.Stats, error) {
	o := r.opts
	logger := o.logger.WithStage(StageExport)
	exporter, err := export.NewExporter(r.ids, append([]export.ExporterOption{
		export.WithConcurrency(o.concurrency),
		export.WithBatchSize(o.minBatchSize, o.maxBatchSize),
		export.WithTermination(o.termination),
		export.WithProgress(o.progressFor(StageExport)),
		export.WithLogger(logger.Logger),
	}, opts...)...)
	if err != nil {
		return export.Stats{}, err
	}

	stats, err := exporter.Write(ctx, r.set, fn)
	r.WriteDuration = stats.Duration
	o.metricsCollector.RecordExport(stats.Written, stats.Duration, err)
	logger.LogExport(ctx, stats.Written, stats.Duration, err)
	return stats, stageError(StageExport, err)
}

// WriteTo encodes the result as a result file on w and returns the number
// of records written.
func (r *Result) WriteTo(ctx context.Context, w io.Writer, codec export.Codec) (int64, error) {
	start := time.Now()
	ew, err := export.NewWriter(ctx, w, export.WithCodec(codec), export.WithRateLimit(r.rc))
	if err == nil {
		err = ew.WriteAll(r.Stream())
	}
	if err == nil {
		err = ew.Close()
	}
	var n int64
	if ew != nil {
		n = ew.Records()
	}
	return n, r.recordWrite(ctx, n, start, err)
}

// WriteToBlob stores the result as a result file named name in store.
func (r *Result) WriteToBlob(ctx context.Context, store blobstore.Store, name string, codec export.Codec) (int64, error) {
	start := time.Now()
	n, err := export.WriteToBlob(ctx, store, name, r.Stream(),
		export.WithCodec(codec), export.WithRateLimit(r.rc))
	return n, r.recordWrite(ctx, n, start, err)
}

func (r *Result) recordWrite(ctx context.Context, n int64, start time.Time, err error) error {
	r.WriteDuration = time.Since(start)
	r.opts.metricsCollector.RecordExport(n, r.WriteDuration, err)
	r.opts.logger.WithStage(StageExport).LogExport(ctx, n, r.WriteDuration, err)
	return stageError(StageExport, err)
}

// Release frees the imported graph. The partition stays usable.
func (r *Result) Release() {
	if r.graph != nil {
		r.graph.Release()
		r.graph = nil
	}
}
