package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/hupe1980/hugecc"
	"github.com/hupe1980/hugecc/core"
	"github.com/hupe1980/hugecc/export"
	"github.com/hupe1980/hugecc/unionfind"
	"gopkg.in/yaml.v3"
)

// Config describes one run. It is read from a YAML file and overridden by
// command line flags.
type Config struct {
	Edges            string        `yaml:"edges"`
	Strategy         string        `yaml:"strategy"`
	Concurrency      int           `yaml:"concurrency"`
	MinBatchSize     int           `yaml:"min_batch_size"`
	MaxBatchSize     int           `yaml:"max_batch_size"`
	Threshold        *float64      `yaml:"threshold"`
	DefaultWeight    float64       `yaml:"default_weight"`
	Direction        string        `yaml:"direction"`
	Output           string        `yaml:"output"`
	Codec            string        `yaml:"codec"`
	MemoryLimit      int64         `yaml:"memory_limit"`
	IOLimit          int64         `yaml:"io_limit"`
	ProgressInterval time.Duration `yaml:"progress_interval"`
	Log              LogConfig     `yaml:"log"`
	S3               S3Config      `yaml:"s3"`
	MinIO            MinIOConfig   `yaml:"minio"`
}

// LogConfig selects the log format and level.
type LogConfig struct {
	Format string `yaml:"format"`
	Level  string `yaml:"level"`
}

// S3Config configures s3:// outputs. Credentials come from the default
// AWS credential chain.
type S3Config struct {
	Region       string `yaml:"region"`
	Endpoint     string `yaml:"endpoint"`
	UsePathStyle bool   `yaml:"use_path_style"`
}

// MinIOConfig configures minio:// outputs. Empty fields fall back to the
// MINIO_ENDPOINT, MINIO_ACCESS_KEY and MINIO_SECRET_KEY environment variables.
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
}

func defaultConfig() Config {
	return Config{
		Strategy:         unionfind.ForkJoin.String(),
		MinBatchSize:     hugecc.DefaultMinBatchSize,
		MaxBatchSize:     hugecc.DefaultMaxBatchSize,
		DefaultWeight:    1.0,
		Direction:        core.Outgoing.String(),
		Codec:            export.CodecNone.String(),
		ProgressInterval: hugecc.DefaultProgressInterval,
		Log:              LogConfig{Format: "text", Level: "info"},
	}
}

// loadConfig reads path over the defaults. An empty path returns the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// options translates the config into run options.
func (c Config) options(logger *hugecc.Logger) ([]hugecc.Option, error) {
	strategy, err := unionfind.ParseStrategy(c.Strategy)
	if err != nil {
		return nil, err
	}
	dir, err := core.ParseDirection(c.Direction)
	if err != nil {
		return nil, err
	}
	opts := []hugecc.Option{
		hugecc.WithStrategy(strategy),
		hugecc.WithBatchSize(c.MinBatchSize, c.MaxBatchSize),
		hugecc.WithDirection(dir),
		hugecc.WithDefaultWeight(c.DefaultWeight),
		hugecc.WithMemoryLimit(c.MemoryLimit),
		hugecc.WithIOLimit(c.IOLimit),
		hugecc.WithProgressInterval(c.ProgressInterval),
		hugecc.WithLogger(logger),
	}
	if c.Concurrency != 0 {
		opts = append(opts, hugecc.WithConcurrency(c.Concurrency))
	}
	if c.Threshold != nil {
		opts = append(opts, hugecc.WithThreshold(*c.Threshold))
	}
	return opts, nil
}

func (c LogConfig) logger() (*hugecc.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return nil, err
	}
	switch strings.ToLower(c.Format) {
	case "", "text":
		return hugecc.NewTextLogger(level), nil
	case "json":
		return hugecc.NewJSONLogger(level), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", c.Format)
	}
}
