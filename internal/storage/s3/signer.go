// Package s3 issues presigned S3 PUT locations for field uploads.
package s3

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/jbaikge/boneless/internal/domain"
	"github.com/jbaikge/boneless/internal/domain/models/content"
	contentRepo "github.com/jbaikge/boneless/internal/domain/repositories/content"
)

// presigner is the subset of s3.PresignClient the signer needs
type presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Config selects the bucket and the public host serving its keys
type Config struct {
	Bucket       string
	Region       string
	StaticDomain string
	Expiry       time.Duration // used when a request carries no expiry
}

// Signer implements FileSigner with S3 presigned PUT requests
type Signer struct {
	presign presigner
	cfg     Config
	logger  *slog.Logger
}

// NewSigner loads AWS credentials from the environment and builds a signer
func NewSigner(ctx context.Context, cfg Config, logger *slog.Logger) (contentRepo.FileSigner, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newSigner(s3.NewPresignClient(s3.NewFromConfig(awsCfg)), cfg, logger), nil
}

func newSigner(p presigner, cfg Config, logger *slog.Logger) *Signer {
	if cfg.StaticDomain == "" {
		cfg.StaticDomain = cfg.Bucket + ".s3." + cfg.Region + ".amazonaws.com"
	}
	if cfg.Expiry <= 0 {
		cfg.Expiry = 5 * time.Minute
	}
	return &Signer{presign: p, cfg: cfg, logger: logger}
}

// SignUpload presigns a PUT of req.Key. The returned headers must be replayed
// with the upload.
func (s *Signer) SignUpload(ctx context.Context, req content.UploadRequest) (*content.UploadDescriptor, error) {
	key := strings.TrimLeft(req.Key, "/")
	if key == "" {
		return nil, fmt.Errorf("%w: upload key is required", domain.ErrValidation)
	}

	expiry := s.cfg.Expiry
	if req.Expires != "" {
		d, err := time.ParseDuration(req.Expires)
		if err != nil {
			return nil, fmt.Errorf("%w: expires: %v", domain.ErrValidation, err)
		}
		expiry = d
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}
	if req.ContentType != "" {
		input.ContentType = aws.String(req.ContentType)
	}

	signed, err := s.presign.PresignPutObject(ctx, input, s3.WithPresignExpires(expiry))
	if err != nil {
		s.logger.Error("presign failed", "bucket", s.cfg.Bucket, "key", key, "error", err)
		return nil, fmt.Errorf("presign %s: %w", key, err)
	}

	headers := http.Header{}
	for name, values := range signed.SignedHeader {
		// Host is set by the transport from the URL
		if strings.EqualFold(name, "Host") {
			continue
		}
		headers[name] = values
	}

	return &content.UploadDescriptor{
		URL:      signed.URL,
		Method:   signed.Method,
		Headers:  headers,
		Location: "https://" + s.cfg.StaticDomain + "/" + key,
	}, nil
}
