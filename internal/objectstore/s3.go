// Package objectstore holds the S3-compatible backend used to publish
// experience bundles.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"ourxmas-backend/internal/config"
)

const cacheControl = "public, max-age=300"

// S3Store writes objects into a single bucket of an S3-compatible service.
type S3Store struct {
	client *minio.Client
	bucket string
}

// NewS3StoreFromConfig returns nil, nil when the S3 credentials or bucket
// are not configured.
func NewS3StoreFromConfig(cfg *config.Config) (*S3Store, error) {
	endpoint := strings.TrimSpace(cfg.S3Endpoint)
	if endpoint == "" || cfg.S3AccessKey == "" || cfg.S3SecretKey == "" || cfg.S3Bucket == "" {
		return nil, nil
	}
	endpoint = strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	return &S3Store{client: client, bucket: cfg.S3Bucket}, nil
}

// EnsureBucket creates the bucket if it does not exist yet.
func (s *S3Store) EnsureBucket(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket: %w", err)
	}
	return nil
}

func (s *S3Store) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	if s == nil || s.client == nil {
		return errors.New("s3 store not configured")
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: cacheControl,
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) Bucket() string {
	return s.bucket
}
