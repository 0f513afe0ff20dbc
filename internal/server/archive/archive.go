// Package archive mirrors published media into an S3-compatible bucket.
// The site's canonical copies live at the media provider; the mirror is a
// best-effort safety net and never blocks or fails a publish.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/drewsiph/sitekeeper/internal/logging"
)

type Options struct {
	Region    string
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
}

// Mirror writes every archived object under media/{yyyy}/{mm}/{id}/{name}.
type Mirror struct {
	client *s3.Client
	bucket string
	logger logging.Logger
}

// New builds a mirror from static credentials. Returns nil (no mirror, not
// an error) when no bucket is configured, so callers can pass the result
// straight through as an optional dependency.
func New(ctx context.Context, opts Options, logger logging.Logger) (*Mirror, error) {
	if opts.Bucket == "" {
		return nil, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = true
	})

	return &Mirror{client: client, bucket: opts.Bucket, logger: logger}, nil
}

func storageKey(id, filename string, now time.Time) string {
	return fmt.Sprintf("media/%d/%02d/%s/%s", now.Year(), now.Month(), id, filename)
}

// Store uploads one asset. Failures are logged, never returned; a missed
// mirror copy must not fail the publish that triggered it.
func (m *Mirror) Store(ctx context.Context, id, filename string, data []byte) {
	if m == nil {
		return
	}

	key := storageKey(id, filename, time.Now())
	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &m.bucket,
		Key:    &key,
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		m.logger.Warn(ctx, "archive mirror failed", "key", key, "error", err)
		return
	}
	m.logger.Debug(ctx, "archived asset", "key", key, "bytes", len(data))
}
