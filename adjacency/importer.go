package adjacency

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/hupe1980/hugecc/core"
	"github.com/hupe1980/hugecc/idmap"
	"github.com/hupe1980/hugecc/internal/arena"
	"github.com/hupe1980/hugecc/internal/bitset"
	"github.com/hupe1980/hugecc/internal/container"
	"github.com/hupe1980/hugecc/internal/conv"
	"github.com/hupe1980/hugecc/internal/parallel"
)

// Importer builds a Graph from a RelationshipSource.
type Importer struct {
	ids  *idmap.IDMap
	src  RelationshipSource
	opts importOptions
}

// NewImporter creates an importer over the nodes of ids.
func NewImporter(ids *idmap.IDMap, src RelationshipSource, opts ...Option) (*Importer, error) {
	if ids == nil {
		return nil, ErrNilIDMap
	}
	if src == nil {
		return nil, ErrNilSource
	}
	o := defaultImportOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Importer{ids: ids, src: src, opts: o}, nil
}

// BatchSize returns the number of nodes each import task handles.
func (im *Importer) BatchSize() int {
	return parallel.AdjustBatchSize(im.ids.NodeCount(), im.opts.concurrency, im.opts.minBatchSize, im.opts.maxBatchSize)
}

// Build imports every node. A source error aborts the import and is
// returned as *ImportError. Cancellation of ctx or the termination flag
// stops the workers between nodes; the partially built graph is returned
// with Complete() == false, and nodes that were not reached read as having
// no neighbours.
func (im *Importer) Build(ctx context.Context) (*Graph, error) {
	start := time.Now()
	nodeCount := im.ids.NodeCount()

	g := &Graph{
		ids:       im.ids,
		nodeCount: nodeCount,
		direction: im.opts.direction,
		loaded:    bitset.New(uint64(nodeCount)),
		weights:   NullWeights{Default: im.opts.defaultWeight},
	}
	var weights *ShardedWeights
	if im.opts.loadWeights {
		weights = NewShardedWeights(im.opts.defaultWeight)
		g.weights = weights
	}

	var err error
	if im.opts.direction.LoadsOutgoing() {
		if g.out, err = im.newList(ctx, nodeCount); err != nil {
			return nil, err
		}
	}
	if im.opts.direction.LoadsIncoming() {
		if g.in, err = im.newList(ctx, nodeCount); err != nil {
			g.Release()
			return nil, err
		}
	}

	batchSize := im.BatchSize()
	ranges := parallel.Ranges(nodeCount, batchSize)
	var done atomic.Int64
	tasks := make([]parallel.Task, len(ranges))
	for i, r := range ranges {
		tasks[i] = func(ctx context.Context) error {
			t := &importTask{im: im, graph: g, weights: weights, done: &done}
			return t.run(ctx, r)
		}
	}

	im.opts.logger.Debug("import started",
		"nodes", nodeCount,
		"batches", len(ranges),
		"batch_size", batchSize,
		"direction", im.opts.direction.String())

	if err := parallel.Run(ctx, im.opts.concurrency, tasks...); err != nil {
		g.Release()
		return nil, err
	}

	g.complete = g.loaded.Count() == nodeCount
	im.opts.logger.Info("import finished",
		"nodes", nodeCount,
		"complete", g.complete,
		"duration", time.Since(start))
	return g, nil
}

func (im *Importer) newList(ctx context.Context, nodeCount int) (*list, error) {
	var opts []arena.Option
	if im.opts.rc != nil {
		opts = append(opts, arena.WithMemoryAcquirer(im.opts.rc))
	}
	a, err := arena.New(ctx, im.opts.pageSize, opts...)
	if err != nil {
		return nil, fmt.Errorf("adjacency: create arena: %w", err)
	}
	return &list{arena: a, offsets: container.NewPagedArray[uint64](uint64(nodeCount))}, nil
}

// importTask imports one batch of nodes. It is owned by a single goroutine.
type importTask struct {
	im      *Importer
	graph   *Graph
	weights *ShardedWeights
	done    *atomic.Int64

	out    *arena.LocalAllocator
	in     *arena.LocalAllocator
	buf    []uint64
	sorted bool
	prev   uint64
}

func (t *importTask) run(ctx context.Context, r parallel.Range) error {
	if t.graph.out != nil {
		t.out = t.graph.out.arena.NewLocalAllocator(ctx)
	}
	if t.graph.in != nil {
		t.in = t.graph.in.arena.NewLocalAllocator(ctx)
	}

	defer t.logAllocations(r)

	total := int64(t.graph.nodeCount)
	for i := r.Start; i < r.End; i++ {
		if !core.Running(ctx, t.im.opts.termination) {
			return nil
		}
		node := core.NodeID(i)
		if err := t.importNode(node); err != nil {
			return err
		}
		// The bit is set only after every record of the node is published.
		t.graph.loaded.Set(uint64(node))
		t.im.opts.progress.LogProgress(t.done.Add(1), total)
	}
	return nil
}

// logAllocations reports how many records and bytes the batch wrote.
func (t *importTask) logAllocations(r parallel.Range) {
	logger := t.im.opts.logger
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	var records, bytes int64
	for _, alloc := range []*arena.LocalAllocator{t.out, t.in} {
		if alloc != nil {
			records += alloc.Allocations()
			bytes += alloc.AllocatedBytes()
		}
	}
	logger.Debug("import batch finished",
		"start", r.Start,
		"end", r.End,
		"records", records,
		"bytes", bytes)
}

func (t *importTask) importNode(node core.NodeID) error {
	if t.out != nil {
		if err := t.importList(node, core.Outgoing, t.graph.out, t.out); err != nil {
			return err
		}
	}
	if t.in != nil {
		if err := t.importList(node, core.Incoming, t.graph.in, t.in); err != nil {
			return err
		}
	}
	return nil
}

func (t *importTask) importList(node core.NodeID, dir core.Direction, l *list, alloc *arena.LocalAllocator) error {
	ids := t.im.ids
	original := ids.ToOriginal(node)

	t.buf = t.buf[:0]
	t.sorted = true
	t.prev = 0

	err := t.im.src.ForEachRelationship(original, dir, func(rel Relationship) bool {
		other := rel.Target
		if dir == core.Incoming {
			other = rel.Source
		}
		target := ids.ToDense(other)
		if target == core.InvalidNodeID {
			return true
		}
		v := uint64(target)
		if len(t.buf) > 0 && v < t.prev {
			t.sorted = false
		}
		t.prev = v
		t.buf = append(t.buf, v)

		if t.weights != nil && rel.HasWeight {
			if dir == core.Incoming {
				t.weights.Set(target, node, rel.Weight)
			} else {
				t.weights.Set(node, target, rel.Weight)
			}
		}
		return true
	})
	if err != nil {
		return &ImportError{Node: original, Err: err}
	}
	if len(t.buf) == 0 {
		return nil
	}

	if _, err := conv.Checked[uint32](len(t.buf)); err != nil {
		return &ImportError{Node: original, Err: err}
	}
	required := DeltaEncode(t.buf, t.sorted)
	offset, region, err := alloc.Allocate(required)
	if err != nil {
		return fmt.Errorf("adjacency: allocate record for node %d: %w", original, err)
	}
	// The region is exactly required bytes, so the record is encoded in place.
	if rec := AppendRecord(region[:0], t.buf); len(rec) != required {
		return &ImportError{Node: original, Err: fmt.Errorf("%w: encoded %d bytes, sized %d", ErrCorruptRecord, len(rec), required)}
	}
	l.offsets.Set(uint64(node), offset)
	return nil
}
