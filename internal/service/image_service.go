package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"

	"github.com/greez/greez/internal/domain"
	"github.com/greez/greez/pkg/logger"
	"github.com/greez/greez/pkg/tracing"
)

// ErrImageStorageDisabled is returned by uploads when no bucket is configured
var ErrImageStorageDisabled = errors.New("image storage is not configured")

// S3ImageStore uploads product images to an S3 compatible bucket
type S3ImageStore struct {
	uploader      s3manageriface.UploaderAPI
	bucket        string
	publicBaseURL string
	logger        logger.Logger
}

type S3ImageStoreConfig struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
	ForcePathStyle  bool
	Logger          logger.Logger
}

func NewS3ImageStore(cfg S3ImageStoreConfig) (*S3ImageStore, error) {
	awsConfig := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(cfg.ForcePathStyle),
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKeyID != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return NewS3ImageStoreWithUploader(s3manager.NewUploader(sess), cfg.Bucket, cfg.PublicBaseURL, cfg.Logger), nil
}

func NewS3ImageStoreWithUploader(uploader s3manageriface.UploaderAPI, bucket, publicBaseURL string, logger logger.Logger) *S3ImageStore {
	return &S3ImageStore{
		uploader:      uploader,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger,
	}
}

var _ domain.ImageStore = (*S3ImageStore)(nil)

func (s *S3ImageStore) Upload(ctx context.Context, key string, contentType string, body io.Reader) (string, error) {
	return tracing.TraceMethodWithResult(ctx, "ImageStore", "Upload", func(ctx context.Context) (string, error) {
		tracing.AddAttribute(ctx, "image.key", key)
		return s.upload(ctx, key, contentType, body)
	})
}

func (s *S3ImageStore) upload(ctx context.Context, key string, contentType string, body io.Reader) (string, error) {
	out, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         body,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		s.logger.WithField("key", key).WithField("error", err.Error()).Error("Failed to upload image")
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key, nil
	}
	return out.Location, nil
}
