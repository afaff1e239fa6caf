// Package storage keeps portfolio images in an S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/writify/writify-backend/internal/domain/ports"
	"github.com/writify/writify-backend/internal/infrastructure/config"
)

const bootstrapTimeout = 30 * time.Second

// publicReadPolicy lets browsers fetch objects anonymously.
const publicReadPolicy = `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`

// MinIOImageStore implements ports.ImageStore.
type MinIOImageStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
	logger    ports.Logger

	ensureMu      sync.Mutex
	bucketEnsured bool
}

// NewMinIOImageStore connects to cfg.Endpoint. The bucket is created on first
// use when startup finds MinIO unavailable.
func NewMinIOImageStore(cfg config.StorageConfig, logger ports.Logger) (*MinIOImageStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	s := &MinIOImageStore{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: publicBase(cfg),
		logger:    logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), bootstrapTimeout)
	defer cancel()
	if err := s.ensureBucket(ctx); err != nil {
		logger.Warn("MinIO not ready during startup, will retry on upload",
			"endpoint", cfg.Endpoint, "bucket", cfg.Bucket, "error", err)
	}

	return s, nil
}

// publicBase is MINIO_PUBLIC_URL, or the path-style bucket URL on the endpoint.
func publicBase(cfg config.StorageConfig) string {
	if cfg.PublicURL != "" {
		return strings.TrimRight(cfg.PublicURL, "/")
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
}

func (s *MinIOImageStore) ensureBucket(ctx context.Context) error {
	s.ensureMu.Lock()
	defer s.ensureMu.Unlock()
	if s.bucketEnsured {
		return nil
	}

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.bucket, err)
		}
		if err := s.client.SetBucketPolicy(ctx, s.bucket, fmt.Sprintf(publicReadPolicy, s.bucket)); err != nil {
			return fmt.Errorf("set bucket policy: %w", err)
		}
		s.logger.Info("created bucket", "bucket", s.bucket)
	}

	s.bucketEnsured = true
	return nil
}

// Put uploads body under key and returns its public URL.
func (s *MinIOImageStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return "", err
	}

	info, err := s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=31536000, immutable",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	s.logger.Debug("image uploaded", "bucket", s.bucket, "key", key, "etag", info.ETag, "size", size)
	return s.URL(key), nil
}

// URL is the public address of key.
func (s *MinIOImageStore) URL(key string) string {
	return s.publicURL + "/" + strings.TrimLeft(key, "/")
}
