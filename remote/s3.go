package remote

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Tier uploads flushed objects to Amazon S3 using the multipart
// upload manager for large objects.
type S3Tier struct {
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// NewS3Tier creates a tier targeting the given S3 bucket.
// rootPrefix is prepended to all keys (e.g. "tier/").
func NewS3Tier(client *s3.Client, bucket, rootPrefix string) *S3Tier {
	return &S3Tier{
		uploader: manager.NewUploader(client, func(u *manager.Uploader) {
			u.PartSize = 8 * 1024 * 1024
			u.Concurrency = 5
		}),
		bucket: bucket,
		prefix: rootPrefix,
	}
}

// NewS3TierFromDefaultConfig creates a tier using the ambient AWS
// configuration (environment, shared config, instance role).
func NewS3TierFromDefaultConfig(ctx context.Context, bucket, rootPrefix string) (*S3Tier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("remote: load aws config: %w", err)
	}
	return NewS3Tier(s3.NewFromConfig(cfg), bucket, rootPrefix), nil
}

func (t *S3Tier) key(name string) string {
	return path.Join(t.prefix, name)
}

// Upload streams the object to S3. The KMS id from the location selects
// the SSE-KMS key.
func (t *S3Tier) Upload(ctx context.Context, info ObjectInfo, body io.Reader, size int64) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(t.bucket),
		Key:    aws.String(t.key(info.Name)),
		Body:   body,
	}
	if info.KMSID != "" {
		input.ServerSideEncryption = types.ServerSideEncryptionAwsKms
		input.SSEKMSKeyId = aws.String(info.KMSID)
	}

	if _, err := t.uploader.Upload(ctx, input); err != nil {
		return fmt.Errorf("remote: s3 upload %q: %w", info.Name, err)
	}
	return nil
}
