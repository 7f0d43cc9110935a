// Package storage holds the two byte stores: uploaded PDFs in MinIO and the
// local audio asset library served to readers.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"sonicpdf/config"
	"sonicpdf/logger"
)

// DocumentStore keeps uploaded PDFs in a MinIO bucket.
type DocumentStore struct {
	client *minio.Client
	bucket string
}

// NewDocumentStore connects to MinIO and ensures the bucket exists.
func NewDocumentStore(cfg *config.Config) (*DocumentStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.Info("created document bucket", logger.String("bucket", cfg.MinioBucket))
	}

	return &DocumentStore{client: client, bucket: cfg.MinioBucket}, nil
}

// Put uploads a PDF under the given object key.
func (s *DocumentStore) Put(ctx context.Context, objectKey string, r io.Reader, size int64) error {
	_, err := s.client.PutObject(ctx, s.bucket, objectKey, r, size, minio.PutObjectOptions{
		ContentType: "application/pdf",
	})
	if err != nil {
		return fmt.Errorf("failed to upload document %s: %w", objectKey, err)
	}
	return nil
}

// Get opens a stored PDF for reading. The caller must close it.
func (s *DocumentStore) Get(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document %s: %w", objectKey, err)
	}
	return obj, nil
}

// Delete removes a stored PDF.
func (s *DocumentStore) Delete(ctx context.Context, objectKey string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete document %s: %w", objectKey, err)
	}
	return nil
}

// PresignedGetURL issues a short-lived download link so the reader fetches
// the PDF straight from storage.
func (s *DocumentStore) PresignedGetURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, objectKey, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign document %s: %w", objectKey, err)
	}
	return u.String(), nil
}
