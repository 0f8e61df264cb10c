package photostore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/lunarfit/coach-api/internal/domain/traininglog"
)

// MinioStore keeps progress photos in S3-compatible object storage.
type MinioStore struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

// NewMinioStore constructs the storage adapter.
func NewMinioStore(endpoint, accessKey, secretKey, bucket string, useSSL bool, logger *slog.Logger) (*MinioStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := minio.New(sanitizeEndpoint(endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure:       useSSL,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init object storage client: %w", err)
	}
	return &MinioStore{client: client, bucket: bucket, logger: logger.With("component", "photostore.minio")}, nil
}

func (s *MinioStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err == nil && exists {
		return nil
	}
	err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
		return err
	}
	return nil
}

// Put uploads a photo.
func (s *MinioStore) Put(ctx context.Context, key string, data []byte, mimeType string) error {
	if err := s.ensureBucket(ctx); err != nil {
		return err
	}
	reader := bytes.NewReader(data)
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, int64(len(data)), minio.PutObjectOptions{
		ContentType:      mimeType,
		DisableMultipart: len(data) < 5*1024*1024, // small uploads as single part
	})
	return err
}

// Get fetches a photo for reading.
func (s *MinioStore) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", err
	}
	stat, err := obj.Stat()
	if err != nil {
		return nil, "", err
	}
	return obj, stat.ContentType, nil
}

// Delete removes a photo.
func (s *MinioStore) Delete(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

var _ traininglog.ObjectStorage = (*MinioStore)(nil)

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if strings.Contains(raw, "/") {
		parts := strings.Split(raw, "/")
		raw = parts[0]
	}
	return raw
}
