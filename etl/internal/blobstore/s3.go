// Package blobstore wraps S3 for batch object storage. Batches travel
// between pipeline stages as JSON objects under the raw/, staging/ and
// dead_letter/ prefixes.
package blobstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/sentryline-systems/sentryline-etl/common/logging"
)

// ErrNoObjects is returned when a prefix holds no listable objects.
var ErrNoObjects = errors.New("blobstore: no objects under prefix")

// Objects at or below this size are treated as ghost files: directory
// placeholders and truncated uploads that would otherwise be picked up as
// the newest batch.
const ghostObjectBytes = 2

// Config holds S3 connection settings.
type Config struct {
	Region           string `mapstructure:"region"`
	Bucket           string `mapstructure:"bucket"`
	Endpoint         string `mapstructure:"endpoint"`
	AccessKeyID      string `mapstructure:"access_key_id"`
	SecretAccessKey  string `mapstructure:"secret_access_key"`
	UsePathStyle     bool   `mapstructure:"use_path_style"`
	RetryMaxAttempts int    `mapstructure:"retry_max_attempts"`
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Region == "" {
		return errors.New("blobstore: region is required")
	}
	if c.Bucket == "" {
		return errors.New("blobstore: bucket is required")
	}
	return nil
}

// API is the slice of the S3 client the store uses.
type API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Store reads and writes JSON batch objects in a single bucket.
type Store struct {
	api    API
	bucket string
	logger *logging.Logger
}

// New creates a store backed by a real S3 client.
func New(ctx context.Context, cfg *Config, logger *logging.Logger) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cfg.Region))

	// Use static credentials if provided, ambient IAM otherwise
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		creds := credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
		opts = append(opts, awsconfig.WithCredentialsProvider(creds))
	}

	if cfg.RetryMaxAttempts > 0 {
		opts = append(opts, awsconfig.WithRetryMaxAttempts(cfg.RetryMaxAttempts))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("blobstore: failed to load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)

	// Custom endpoint (MinIO, LocalStack)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	store := NewWithAPI(s3.NewFromConfig(awsCfg, s3Opts...), cfg.Bucket, logger)

	logger.Info("blob store initialized",
		"bucket", cfg.Bucket,
		"region", cfg.Region,
		"endpoint", cfg.Endpoint,
	)

	return store, nil
}

// NewWithAPI creates a store on an existing API implementation.
func NewWithAPI(api API, bucket string, logger *logging.Logger) *Store {
	return &Store{api: api, bucket: bucket, logger: logger}
}

// PutJSON marshals v and uploads it under key.
func (s *Store) PutJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("blobstore: failed to marshal %s: %w", key, err)
	}

	_, err = s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("blobstore: failed to upload %s: %w", key, err)
	}

	s.logger.DebugContext(ctx, "uploaded object", "key", key, "size", len(data))
	return nil
}

// GetJSON downloads the object at key and unmarshals it into v.
func (s *Store) GetJSON(ctx context.Context, key string, v any) error {
	result, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("blobstore: failed to download %s: %w", key, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return fmt.Errorf("blobstore: failed to read %s: %w", key, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("blobstore: failed to unmarshal %s: %w", key, err)
	}

	s.logger.DebugContext(ctx, "downloaded object", "key", key, "size", len(data))
	return nil
}

// ObjectInfo describes a listed object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// List returns the objects under prefix, ghost files filtered out.
func (s *Store) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var objects []ObjectInfo

	paginator := s3.NewListObjectsV2Paginator(s.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("blobstore: failed to list %s: %w", prefix, err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			size := aws.ToInt64(obj.Size)
			if strings.HasSuffix(key, "/") || size <= ghostObjectBytes {
				continue
			}
			objects = append(objects, ObjectInfo{
				Key:          key,
				Size:         size,
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}

	return objects, nil
}

// Newest returns the most recently modified object under prefix.
func (s *Store) Newest(ctx context.Context, prefix string) (ObjectInfo, error) {
	objects, err := s.List(ctx, prefix)
	if err != nil {
		return ObjectInfo{}, err
	}
	if len(objects) == 0 {
		return ObjectInfo{}, fmt.Errorf("%w: %s", ErrNoObjects, prefix)
	}

	newest := objects[0]
	for _, obj := range objects[1:] {
		if obj.LastModified.After(newest.LastModified) {
			newest = obj
		}
	}
	return newest, nil
}
