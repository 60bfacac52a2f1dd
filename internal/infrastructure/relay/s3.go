package relay

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/janhq/media-catalog/internal/config"
	domain "github.com/janhq/media-catalog/internal/domain/media"
)

var errS3NotConfigured = errors.New("s3 relay is not configured; set MEDIA_S3_BUCKET and credentials")

// S3Relay stores assets in an S3-compatible bucket and hands back public object URLs.
type S3Relay struct {
	bucket    string
	region    string
	pathStyle bool
	publicURL string
	client    *s3.Client
	log       zerolog.Logger
}

func NewS3Relay(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*S3Relay, error) {
	logger := log.With().Str("component", "s3-relay").Logger()

	bucket := strings.TrimSpace(cfg.S3Bucket)
	if bucket == "" || cfg.S3AccessKeyID == "" || cfg.S3SecretKey == "" {
		return nil, errS3NotConfigured
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := strings.TrimSuffix(cfg.S3Endpoint, "/")
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = cfg.S3UsePathStyle
	})

	publicURL := strings.TrimSuffix(cfg.S3PublicEndpoint, "/")
	if publicURL == "" {
		publicURL = endpoint
	}

	logger.Info().
		Str("bucket", bucket).
		Str("endpoint", endpoint).
		Bool("path_style", cfg.S3UsePathStyle).
		Msg("s3 relay initialized")

	return &S3Relay{
		bucket:    bucket,
		region:    cfg.S3Region,
		pathStyle: cfg.S3UsePathStyle,
		publicURL: publicURL,
		client:    client,
		log:       logger,
	}, nil
}

// Upload streams the asset body to the bucket. The body is not seekable, so the payload is sent unsigned.
func (s *S3Relay) Upload(ctx context.Context, req domain.UploadRequest) (*domain.Asset, error) {
	key := objectKey(req.Folder, req.Filename)
	var asset *domain.Asset

	err := observe(ctx, config.RelayS3, "upload", req.Kind, func(ctx context.Context, span trace.Span) error {
		span.SetAttributes(attribute.String("s3.key", key))
		input := &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        req.Body,
			ContentType: aws.String(req.ContentType),
		}
		if req.Size > 0 {
			input.ContentLength = aws.Int64(req.Size)
		}
		if _, err := s.client.PutObject(ctx, input, s3.WithAPIOptions(v4.SwapComputePayloadSHA256ForUnsignedPayloadMiddleware)); err != nil {
			return externalError(ctx, fmt.Sprintf("s3 %s upload failed", req.Kind), err, "4f1d8a2c-7b3e-4c9a-a6d5-2e8b0f7c1a39")
		}
		asset = &domain.Asset{URL: s.objectURL(key), Ref: key, Kind: req.Kind}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug().Str("key", key).Str("kind", string(req.Kind)).Msg("asset uploaded to s3")
	return asset, nil
}

// Delete removes the object behind the asset. Deleting a missing key succeeds on S3.
func (s *S3Relay) Delete(ctx context.Context, asset domain.Asset) error {
	return observe(ctx, config.RelayS3, "delete", asset.Kind, func(ctx context.Context, span trace.Span) error {
		span.SetAttributes(attribute.String("s3.key", asset.Ref))
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(asset.Ref),
		})
		if err != nil {
			return externalError(ctx, "s3 delete failed", err, "a72c5e19-3d8f-4b6a-9e1c-5f0d2b8a7c43")
		}
		return nil
	})
}

func (s *S3Relay) objectURL(key string) string {
	return buildObjectURL(s.publicURL, s.bucket, s.region, s.pathStyle, key)
}

func buildObjectURL(base, bucket, region string, pathStyle bool, key string) string {
	switch {
	case base == "":
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, key)
	case pathStyle:
		return fmt.Sprintf("%s/%s/%s", base, bucket, key)
	default:
		return fmt.Sprintf("%s/%s", base, key)
	}
}
