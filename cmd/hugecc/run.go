package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/hupe1980/hugecc"
	"github.com/hupe1980/hugecc/adjacency"
	"github.com/hupe1980/hugecc/export"
	"github.com/spf13/cobra"
)

type runFlags struct {
	config    string
	threshold float64
	batchSize int
	cfg       Config
}

func newRunCmd() *cobra.Command {
	f := &runFlags{cfg: defaultConfig()}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compute connected components of an edge list",
		Long: `Compute weakly-connected components of an edge list file.

Each line of the edge list holds "source target [weight]" or a single node
id. Lines starting with # are ignored. The result is written as
(node, component) pairs to --output: a local path, s3://bucket/key or
minio://bucket/key.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return execute(ctx, cfg, cmd.OutOrStdout())
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.config, "config", "", "YAML run configuration")
	fl.StringVar(&f.cfg.Edges, "edges", "", "edge list file")
	fl.StringVar(&f.cfg.Strategy, "strategy", f.cfg.Strategy, "sequential, queue or forkjoin")
	fl.IntVar(&f.cfg.Concurrency, "concurrency", 0, "worker count (default GOMAXPROCS)")
	fl.IntVar(&f.batchSize, "batch-size", 0, "minimum nodes per batch")
	fl.Float64Var(&f.threshold, "threshold", 0, "only join relationships with a greater weight")
	fl.StringVar(&f.cfg.Direction, "direction", f.cfg.Direction, "outgoing, incoming or both")
	fl.StringVar(&f.cfg.Output, "output", "", "result target: FILE, s3://bucket/key or minio://bucket/key")
	fl.StringVar(&f.cfg.Codec, "codec", f.cfg.Codec, "result compression: none, lz4 or zstd")
	fl.StringVar(&f.cfg.Log.Format, "log-format", f.cfg.Log.Format, "text or json")
	fl.StringVar(&f.cfg.Log.Level, "log-level", f.cfg.Log.Level, "debug, info, warn or error")
	return cmd
}

// resolve loads the config file and applies the flags the user set.
func (f *runFlags) resolve(cmd *cobra.Command) (Config, error) {
	cfg, err := loadConfig(f.config)
	if err != nil {
		return cfg, err
	}
	fl := cmd.Flags()
	override := func(name string, apply func()) {
		if fl.Changed(name) {
			apply()
		}
	}
	override("edges", func() { cfg.Edges = f.cfg.Edges })
	override("strategy", func() { cfg.Strategy = f.cfg.Strategy })
	override("concurrency", func() { cfg.Concurrency = f.cfg.Concurrency })
	override("batch-size", func() {
		cfg.MinBatchSize = f.batchSize
		cfg.MaxBatchSize = max(cfg.MaxBatchSize, f.batchSize)
	})
	override("threshold", func() { cfg.Threshold = &f.threshold })
	override("direction", func() { cfg.Direction = f.cfg.Direction })
	override("output", func() { cfg.Output = f.cfg.Output })
	override("codec", func() { cfg.Codec = f.cfg.Codec })
	override("log-format", func() { cfg.Log.Format = f.cfg.Log.Format })
	override("log-level", func() { cfg.Log.Level = f.cfg.Log.Level })

	if cfg.Edges == "" {
		return cfg, fmt.Errorf("no edge list: set --edges or edges in the config")
	}
	return cfg, nil
}

func execute(ctx context.Context, cfg Config, out io.Writer) error {
	logger, err := cfg.Log.logger()
	if err != nil {
		return err
	}
	opts, err := cfg.options(logger)
	if err != nil {
		return err
	}
	codec, err := export.ParseCodec(cfg.Codec)
	if err != nil {
		return err
	}
	var t target
	if cfg.Output != "" {
		if t, err = parseTarget(cfg.Output); err != nil {
			return err
		}
	}

	edges, ids, err := adjacency.LoadEdgeListFile(cfg.Edges)
	if err != nil {
		return err
	}
	res, err := hugecc.Run(ctx, ids, edges, opts...)
	if err != nil {
		return err
	}
	defer res.Release()

	if cfg.Output != "" && res.Complete {
		store, name, err := openStore(ctx, cfg, t)
		if err != nil {
			return err
		}
		if _, err := res.WriteToBlob(ctx, store, name, codec); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "nodes\t%d\n", res.NodeCount)
	fmt.Fprintf(out, "setCount\t%d\n", res.SetCount)
	fmt.Fprintf(out, "complete\t%t\n", res.Complete)
	fmt.Fprintf(out, "loadMillis\t%d\n", res.LoadDuration.Milliseconds())
	fmt.Fprintf(out, "computeMillis\t%d\n", res.ComputeDuration.Milliseconds())
	fmt.Fprintf(out, "writeMillis\t%d\n", res.WriteDuration.Milliseconds())
	return nil
}
