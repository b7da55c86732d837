package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"journeyd/internal/journey"
)

// S3Archiver writes snapshots to an S3 bucket under
// <prefix>/<journeyID>/<capturedAt>.json.
type S3Archiver struct {
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// NewS3Archiver creates an archiver over the given bucket. Credentials come
// from the standard AWS credential chain (environment, shared config, IAM role).
func NewS3Archiver(ctx context.Context, bucket, prefix, region string) (*S3Archiver, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 archive requires s3_bucket to be set")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Archiver{
		uploader: manager.NewUploader(s3.NewFromConfig(cfg)),
		bucket:   bucket,
		prefix:   prefix,
	}, nil
}

// Record uploads one snapshot object.
func (a *S3Archiver) Record(ctx context.Context, id string, capturedAt time.Time, doc *journey.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding snapshot for journey %s: %w", id, err)
	}

	key := path.Join(a.prefix, id, snapshotName(capturedAt))
	_, err = a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("uploading snapshot for journey %s: %w", id, err)
	}
	return nil
}

// Compile-time check that S3Archiver implements journey.Archiver
var _ journey.Archiver = (*S3Archiver)(nil)
