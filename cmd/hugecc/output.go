package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hupe1980/hugecc/blobstore"
	"github.com/hupe1980/hugecc/blobstore/minio"
	"github.com/hupe1980/hugecc/blobstore/s3"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// target is a parsed --output value.
type target struct {
	scheme string // "file", "s3" or "minio"
	bucket string
	name   string // key within the bucket, or file path
}

func parseTarget(output string) (target, error) {
	if !strings.Contains(output, "://") {
		return target{scheme: "file", name: output}, nil
	}
	u, err := url.Parse(output)
	if err != nil {
		return target{}, err
	}
	switch u.Scheme {
	case "s3", "minio":
	case "file":
		return target{scheme: "file", name: u.Path}, nil
	default:
		return target{}, fmt.Errorf("unsupported output scheme %q", u.Scheme)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return target{}, fmt.Errorf("output %q must be %s://bucket/key", output, u.Scheme)
	}
	return target{scheme: u.Scheme, bucket: u.Host, name: key}, nil
}

// openStore returns the store for t and the blob name inside it.
func openStore(ctx context.Context, cfg Config, t target) (blobstore.Store, string, error) {
	switch t.scheme {
	case "s3":
		client, err := newS3Client(ctx, cfg.S3)
		if err != nil {
			return nil, "", err
		}
		return s3.NewStore(client, t.bucket, ""), t.name, nil
	case "minio":
		client, err := newMinIOClient(cfg.MinIO)
		if err != nil {
			return nil, "", err
		}
		return minio.NewStore(client, t.bucket, ""), t.name, nil
	default:
		dir, name := filepath.Split(t.name)
		if dir == "" {
			dir = "."
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, "", err
		}
		return blobstore.NewLocalStore(dir), name, nil
	}
}

func newS3Client(ctx context.Context, cfg S3Config) (*awss3.Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	}), nil
}

func newMinIOClient(cfg MinIOConfig) (*miniogo.Client, error) {
	endpoint := firstNonEmpty(cfg.Endpoint, os.Getenv("MINIO_ENDPOINT"))
	if endpoint == "" {
		return nil, fmt.Errorf("minio endpoint not configured")
	}
	return miniogo.New(endpoint, &miniogo.Options{
		Creds: credentials.NewStaticV4(
			firstNonEmpty(cfg.AccessKey, os.Getenv("MINIO_ACCESS_KEY")),
			firstNonEmpty(cfg.SecretKey, os.Getenv("MINIO_SECRET_KEY")),
			""),
		Secure: cfg.UseSSL,
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
