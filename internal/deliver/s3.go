package deliver

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"fieldmark/internal/config"
)

// S3Sink uploads exports to an S3 bucket. It is the share-sheet analogue:
// the primary way a field device hands data to the rest of the team.
type S3Sink struct {
	bucket string
	prefix string
	region string
}

var _ Sink = (*S3Sink)(nil)

// NewS3Sink creates a sink for the configured bucket.
func NewS3Sink(cfg config.ShareConfig) (*S3Sink, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 share requires s3_bucket to be set")
	}
	return &S3Sink{bucket: cfg.S3Bucket, prefix: cfg.S3Prefix, region: cfg.S3Region}, nil
}

func (s *S3Sink) Name() string { return "s3" }

func (s *S3Sink) Deliver(ctx context.Context, p Payload) (string, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(s.region))
	if err != nil {
		return "", fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	uploader := manager.NewUploader(client)

	key := path.Join(s.prefix, p.Filename)
	_, err = uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(p.Data),
		ContentType: aws.String(p.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("uploading to s3: %w", err)
	}

	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
