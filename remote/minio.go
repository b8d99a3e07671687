package remote

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/encrypt"
)

// MinioTier uploads flushed objects to MinIO or any S3-compatible endpoint.
type MinioTier struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinioTier creates a tier targeting the given remote bucket.
// rootPrefix is prepended to all keys (e.g. "tier/").
func NewMinioTier(client *minio.Client, bucket, rootPrefix string) *MinioTier {
	return &MinioTier{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
	}
}

func (t *MinioTier) key(name string) string {
	return path.Join(t.prefix, name)
}

// Upload streams the object to the remote bucket. The KMS id from the
// location selects the SSE-KMS key.
func (t *MinioTier) Upload(ctx context.Context, info ObjectInfo, body io.Reader, size int64) error {
	opts := minio.PutObjectOptions{}
	if info.KMSID != "" {
		sse, err := encrypt.NewSSEKMS(info.KMSID, nil)
		if err != nil {
			return fmt.Errorf("remote: sse-kms for %q: %w", info.Name, err)
		}
		opts.ServerSideEncryption = sse
	}

	if _, err := t.client.PutObject(ctx, t.bucket, t.key(info.Name), body, size, opts); err != nil {
		return fmt.Errorf("remote: minio upload %q: %w", info.Name, err)
	}
	return nil
}
