package external

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

// S3API defines the subset of the S3 client used by S3Client.
// Extracted for testability; tests provide a mock implementation.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// DocumentStore persists uploaded case documents and returns a URL the
// frontend can fetch them from. Satisfied by S3Client.
type DocumentStore interface {
	Upload(ctx context.Context, folder string, filename string, contentType string, data []byte) (string, error)
}

// S3ClientConfig holds the configuration for creating an S3Client.
type S3ClientConfig struct {
	Bucket string
	Region string
	// PublicBaseURL overrides the generated object URL base. Optional;
	// defaults to the standard virtual-hosted bucket URL.
	PublicBaseURL string
	Logger        *slog.Logger
}

// S3Client stores intake documents (insurance cards, records) in S3.
// Authentication is handled via the AWS credential chain, and the AWS SDK
// provides built-in retry logic, so no BaseClient wrapper is needed.
type S3Client struct {
	api           S3API
	bucket        string
	publicBaseURL string
	logger        *slog.Logger
}

// NewS3Client creates a new S3Client from an AWS config.
func NewS3Client(awsCfg aws.Config, cfg S3ClientConfig) *S3Client {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	return &S3Client{
		api:           s3.NewFromConfig(awsCfg),
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimSuffix(baseURL, "/"),
		logger:        logger,
	}
}

// NewS3ClientWithAPI creates an S3Client with a pre-configured S3API.
// Useful for testing with a mock S3 interface.
func NewS3ClientWithAPI(api S3API, cfg S3ClientConfig) *S3Client {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	return &S3Client{
		api:           api,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimSuffix(baseURL, "/"),
		logger:        logger,
	}
}

// Upload stores the document under folder/ with a random key prefix so that
// repeated uploads of the same filename never collide, and returns the public
// object URL. Objects are uploaded with public-read so the frontend can link
// to them directly.
func (c *S3Client) Upload(
	ctx context.Context,
	folder string,
	filename string,
	contentType string,
	data []byte,
) (string, error) {
	if len(data) == 0 {
		return "", types.NewAppError(
			types.ErrCodeValidationInvalidFile,
			"uploaded file is empty",
			nil,
		)
	}

	key := path.Join(folder, uuid.NewString()+"-"+sanitizeFilename(filename))

	_, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", types.NewAppError(
			types.ErrCodeUpstreamStorage,
			fmt.Sprintf("failed to upload %s to S3: %v", key, err),
			err,
		)
	}

	objectURL := c.publicBaseURL + "/" + key
	c.logger.InfoContext(ctx, "document uploaded",
		"bucket", c.bucket,
		"key", key,
		"size_bytes", len(data),
	)

	return objectURL, nil
}

// sanitizeFilename strips path separators and whitespace from a user-supplied
// filename so it is safe to embed in an object key.
func sanitizeFilename(name string) string {
	name = path.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	if name == "." || name == "/" || name == "" {
		return "upload"
	}
	return name
}

var _ DocumentStore = (*S3Client)(nil)
