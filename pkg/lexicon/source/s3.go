package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// S3Client is the subset of the S3 API used to fetch documents.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config locates a lexicon document in a bucket.
type S3Config struct {
	Bucket         string `env:"LEXICON_S3_BUCKET"`
	Key            string `env:"LEXICON_S3_KEY"`
	Region         string `env:"LEXICON_S3_REGION" envDefault:"us-east-1"`
	AccessKeyID    string `env:"LEXICON_S3_ACCESS_KEY_ID"`
	SecretKey      string `env:"LEXICON_S3_SECRET_KEY"`
	Endpoint       string `env:"LEXICON_S3_ENDPOINT"`                           // optional, for S3-compatible services
	ForcePathStyle bool   `env:"LEXICON_S3_FORCE_PATH_STYLE" envDefault:"false"` // MinIO and friends
}

// S3Option customizes how the S3 client is built.
type S3Option func(*s3Options)

type s3Options struct {
	client     S3Client
	httpClient *http.Client
}

// WithS3Client uses a pre-configured client instead of building one.
func WithS3Client(client S3Client) S3Option {
	return func(o *s3Options) {
		o.client = client
	}
}

// WithHTTPClient sets the HTTP client used by the AWS SDK.
func WithHTTPClient(client *http.Client) S3Option {
	return func(o *s3Options) {
		o.httpClient = client
	}
}

// S3Source reads a lexicon document from an S3 object.
type S3Source struct {
	client S3Client
	bucket string
	key    string
}

// NewS3 builds an S3 source. Credentials fall back to the default AWS chain
// when no static keys are configured.
func NewS3(ctx context.Context, cfg S3Config, opts ...S3Option) (*S3Source, error) {
	if cfg.Bucket == "" || cfg.Key == "" {
		return nil, ErrMissingBucket
	}

	o := &s3Options{}
	for _, opt := range opts {
		opt(o)
	}

	if o.client != nil {
		return &S3Source{client: o.client, bucket: cfg.Bucket, key: cfg.Key}, nil
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
		))
	}
	if o.httpClient != nil {
		loadOpts = append(loadOpts, config.WithHTTPClient(o.httpClient))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(so *s3.Options) {
		if cfg.Endpoint != "" {
			so.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		so.UsePathStyle = cfg.ForcePathStyle
	})

	return &S3Source{client: client, bucket: cfg.Bucket, key: cfg.Key}, nil
}

// Open fetches the object body. The caller must close it.
func (s *S3Source) Open(ctx context.Context) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, errors.Join(ErrNotFound, err)
		}
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return out.Body, nil
}

func (s *S3Source) String() string {
	return "s3://" + s.bucket + "/" + s.key
}

func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			return true
		}
	}
	return false
}
