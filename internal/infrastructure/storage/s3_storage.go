// Package storage stores product images in S3-compatible object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	infraconfig "github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

var _ catalogapp.ImageStorage = (*S3ObjectStorage)(nil)

// ErrEmptyKey is returned when an operation is called without an object key
var ErrEmptyKey = errors.New("storage key is required")

// S3ObjectStorage implements catalog.ImageStorage on top of AWS S3 SDK v2.
// Any S3-compatible service (AWS S3, MinIO, RustFS) works.
type S3ObjectStorage struct {
	client        *s3.Client
	bucket        string
	endpoint      string
	usePathStyle  bool
	publicBaseURL string
	logger        *zap.Logger
}

// S3ObjectStorageOption is a functional option for configuring S3ObjectStorage
type S3ObjectStorageOption func(*S3ObjectStorage)

// WithLogger sets a custom logger for S3ObjectStorage
func WithLogger(logger *zap.Logger) S3ObjectStorageOption {
	return func(s *S3ObjectStorage) {
		s.logger = logger
	}
}

// NewS3ObjectStorage creates a new S3ObjectStorage from configuration
func NewS3ObjectStorage(cfg *infraconfig.StorageConfig, opts ...S3ObjectStorageOption) (*S3ObjectStorage, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "http://localhost:9000"
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if cfg.UseSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid storage endpoint: %w", err)
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		o.BaseEndpoint = aws.String(endpoint)
	})

	storage := &S3ObjectStorage{
		client:        client,
		bucket:        cfg.Bucket,
		endpoint:      strings.TrimRight(endpoint, "/"),
		usePathStyle:  cfg.UsePathStyle,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(storage)
	}
	return storage, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
// Called once at startup before the upload route is registered.
func (s *S3ObjectStorage) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating storage bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Upload streams body into the bucket under key
func (s *S3ObjectStorage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if key == "" {
		return ErrEmptyKey
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}

	s.logger.Debug("Object uploaded",
		zap.String("bucket", s.bucket),
		zap.String("key", key),
		zap.Int64("size", size),
	)
	return nil
}

// Delete removes an object. Deleting a missing key is not an error.
func (s *S3ObjectStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// Exists checks if an object exists in storage
func (s *S3ObjectStorage) Exists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
			return false, nil
		}
		// some S3-compatible services report a missing key differently
		if strings.Contains(err.Error(), "NotFound") || strings.Contains(err.Error(), "NoSuchKey") {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}
	return true, nil
}

// PublicURL returns the URL clients use to fetch key. A configured public
// base URL (CDN, reverse proxy) wins over the raw endpoint.
func (s *S3ObjectStorage) PublicURL(key string) string {
	key = strings.TrimLeft(key, "/")
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key
	}
	if s.usePathStyle {
		return s.endpoint + "/" + s.bucket + "/" + key
	}
	u, err := url.Parse(s.endpoint)
	if err != nil {
		return s.endpoint + "/" + s.bucket + "/" + key
	}
	u.Host = s.bucket + "." + u.Host
	return u.String() + "/" + key
}

// Bucket returns the bucket name
func (s *S3ObjectStorage) Bucket() string {
	return s.bucket
}
