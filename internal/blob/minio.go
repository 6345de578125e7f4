package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/paintsnap/server/internal/apperr"
	"github.com/paintsnap/server/internal/config"
)

// remoteCallTimeout caps every storage round trip so a hung provider
// cannot hang the request.
const remoteCallTimeout = 10 * time.Second

// objectClient is the slice of the minio client the store uses; tests can
// substitute a fake.
type objectClient interface {
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucket, key string, opts minio.GetObjectOptions) (*minio.Object, error)
	StatObject(ctx context.Context, bucket, key string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	RemoveObject(ctx context.Context, bucket, key string, opts minio.RemoveObjectOptions) error
}

// MinioStore is an S3-compatible Store backed by minio.
type MinioStore struct {
	client objectClient
	bucket string
}

// NewMinioStore connects to the configured S3-compatible endpoint.
func NewMinioStore(cfg config.StorageConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("blob: create minio client: %w", err)
	}
	return &MinioStore{client: client, bucket: cfg.Bucket}, nil
}

// Save writes the blob under a fresh key below the given prefix.
func (s *MinioStore) Save(ctx context.Context, prefix, contentType string, r io.Reader, size int64) (string, error) {
	key := prefix + "/" + uuid.NewString()
	ctx, cancel := context.WithTimeout(ctx, remoteCallTimeout)
	defer cancel()

	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", wrapStorageErr("store image", err)
	}
	return key, nil
}

// Open returns the blob contents and content type.
func (s *MinioStore) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	ctx, cancel := context.WithTimeout(ctx, remoteCallTimeout)
	defer cancel()

	// Stat first so missing keys surface before the caller starts streaming.
	info, errStat := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if errStat != nil {
		if resp := minio.ToErrorResponse(errStat); resp.Code == "NoSuchKey" {
			return nil, "", apperr.NotFound("image not found")
		}
		return nil, "", wrapStorageErr("read image", errStat)
	}

	obj, errGet := s.client.GetObject(context.WithoutCancel(ctx), s.bucket, key, minio.GetObjectOptions{})
	if errGet != nil {
		return nil, "", wrapStorageErr("read image", errGet)
	}
	return obj, info.ContentType, nil
}

// Remove deletes the blob; absent keys are treated as removed.
func (s *MinioStore) Remove(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, remoteCallTimeout)
	defer cancel()

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return nil
		}
		return wrapStorageErr("remove image", err)
	}
	return nil
}

func wrapStorageErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.DependencyTimeout("storage timeout: "+op, err)
	}
	return apperr.Dependency("storage failure: "+op, err)
}
