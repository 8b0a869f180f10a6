package output

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"path"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/df07/go-lensing-renderer/pkg/config"
	"github.com/df07/go-lensing-renderer/pkg/core"
	"github.com/disintegration/imaging"
)

// UploadTimeout bounds a single object upload
const UploadTimeout = 10 * time.Second

// S3Sink uploads frames to an S3-compatible bucket
type S3Sink struct {
	client s3iface.S3API
	bucket string
	prefix string
	format imaging.Format
	logger core.Logger
}

// NewS3Sink creates a sink from the storage settings. Path-style addressing
// is forced so self-hosted endpoints such as MinIO work.
func NewS3Sink(cfg config.S3Config, format string, logger core.Logger) (*S3Sink, error) {
	s3Config := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(true),
	}
	if cfg.Endpoint != "" {
		s3Config.Endpoint = aws.String(cfg.Endpoint)
	}

	sess, err := session.NewSession(s3Config)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}
	return NewS3SinkWithClient(s3.New(sess), cfg.Bucket, cfg.Prefix, format, logger)
}

// NewS3SinkWithClient creates a sink around an existing client
func NewS3SinkWithClient(client s3iface.S3API, bucket, prefix, format string, logger core.Logger) (*S3Sink, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &S3Sink{client: client, bucket: bucket, prefix: prefix, format: f, logger: logger}, nil
}

// ObjectKey returns the object name a frame key is uploaded under
func (s *S3Sink) ObjectKey(key string) string {
	return path.Join(s.prefix, key) + "." + Extension(s.format)
}

// Save encodes img and uploads it, returning an s3:// URL
func (s *S3Sink) Save(ctx context.Context, key string, img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, s.format); err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", key, err)
	}

	objectKey := s.ObjectKey(key)
	if err := s.upload(ctx, buf.Bytes(), objectKey); err != nil {
		return "", err
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, objectKey), nil
}

func (s *S3Sink) upload(ctx context.Context, data []byte, key string) error {
	ctx, cancel := context.WithTimeout(ctx, UploadTimeout)
	defer cancel()

	size := int64(len(data))
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(ContentType(s.format)),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}

	s.logger.Printf("Uploaded %s to S3 (%d bytes)\n", key, size)
	return nil
}
