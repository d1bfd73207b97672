package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"deedgate/internal/sentinel"
	"deedgate/pkg/domain"
)

// MinIOConfig configures the S3-compatible deed bucket.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinIO archives deeds in an S3-compatible bucket.
type MinIO struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

// NewMinIO connects to the bucket, creating it when missing.
func NewMinIO(ctx context.Context, cfg MinIOConfig, logger *slog.Logger) (*MinIO, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		logger.InfoContext(ctx, "created deed bucket", "bucket", cfg.Bucket)
	}
	return &MinIO{client: client, bucket: cfg.Bucket, logger: logger}, nil
}

func (m *MinIO) Put(ctx context.Context, doc Document) error {
	_, err := m.client.PutObject(ctx, m.bucket, ObjectKey(doc.ContentHash),
		bytes.NewReader(doc.Data), int64(len(doc.Data)),
		minio.PutObjectOptions{ContentType: doc.ContentType},
	)
	if err != nil {
		return fmt.Errorf("put %s: %w: %w", ObjectKey(doc.ContentHash), sentinel.ErrUnavailable, err)
	}
	return nil
}

func (m *MinIO) Get(ctx context.Context, hash domain.ContentHash) (*Document, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, ObjectKey(hash), minio.GetObjectOptions{})
	if err != nil {
		return nil, m.translate(hash, err)
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		return nil, m.translate(hash, err)
	}
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, m.translate(hash, err)
	}
	return &Document{ContentHash: hash, ContentType: info.ContentType, Data: data}, nil
}

func (m *MinIO) Exists(ctx context.Context, hash domain.ContentHash) (bool, error) {
	_, err := m.client.StatObject(ctx, m.bucket, ObjectKey(hash), minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w: %w", ObjectKey(hash), sentinel.ErrUnavailable, err)
}

// Health checks that the bucket is reachable.
func (m *MinIO) Health(ctx context.Context) error {
	_, err := m.client.BucketExists(ctx, m.bucket)
	return err
}

func (m *MinIO) translate(hash domain.ContentHash, err error) error {
	if isNotFound(err) {
		return fmt.Errorf("document %s: %w", hash, sentinel.ErrNotFound)
	}
	return fmt.Errorf("get %s: %w: %w", ObjectKey(hash), sentinel.ErrUnavailable, err)
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}

var _ Archive = (*MinIO)(nil)
