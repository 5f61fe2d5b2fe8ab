package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/cockroachdb/errors"

	"gulmohar/billing/internal/config"
	ierr "gulmohar/billing/internal/errors"
	"gulmohar/billing/internal/logger"
)

const pdfContentType = "application/pdf"

// IS3Storage stores rendered documents and hands out short-lived download
// links for them.
type IS3Storage interface {
	PutPDF(ctx context.Context, key string, body []byte) error
	Exists(ctx context.Context, key string) (bool, error)
	// PresignedGetURL returns a URL that downloads key as filename.
	PresignedGetURL(ctx context.Context, key, filename string) (string, error)
}

// s3Storage implements IS3Storage.
type s3Storage struct {
	bucket        string
	urlTTL        time.Duration
	s3Client      *s3.Client
	presignClient *s3.PresignClient
	log           *logger.Logger
}

// NewS3Storage creates a new S3 storage service. Static credentials are used
// when configured; otherwise the default AWS credential chain applies.
func NewS3Storage(ctx context.Context, cfg *config.Config, log *logger.Logger) (IS3Storage, error) {
	opts := []func(*aws_config.LoadOptions) error{
		aws_config.WithRegion(cfg.AwsRegion),
	}
	if cfg.AwsAccessKeyID != "" {
		opts = append(opts, aws_config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AwsAccessKeyID,
			cfg.AwsSecretAccessKey,
			"", // session token
		)))
	}

	awsCfg, err := aws_config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS config")
	}

	s3Client := s3.NewFromConfig(awsCfg)
	return &s3Storage{
		bucket:        cfg.AwsS3Bucket,
		urlTTL:        cfg.PdfArchiveURLTTL,
		s3Client:      s3Client,
		presignClient: s3.NewPresignClient(s3Client),
		log:           log.Named("s3"),
	}, nil
}

func (s *s3Storage) PutPDF(ctx context.Context, key string, body []byte) error {
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(pdfContentType),
	})
	if err != nil {
		return ierr.WithError(err).
			WithMessagef("failed to upload object %s", key).
			Mark(ierr.ErrSystem)
	}
	s.log.Debugw("uploaded document", "key", key, "bytes", len(body))
	return nil
}

func (s *s3Storage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
		return false, nil
	}
	return false, ierr.WithError(err).
		WithMessagef("failed to stat object %s", key).
		Mark(ierr.ErrSystem)
}

func (s *s3Storage) PresignedGetURL(ctx context.Context, key, filename string) (string, error) {
	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(s.bucket),
		Key:                        aws.String(key),
		ResponseContentType:        aws.String(pdfContentType),
		ResponseContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%s", filename)),
	}, s3.WithPresignExpires(s.urlTTL))
	if err != nil {
		return "", ierr.WithError(err).
			WithMessagef("failed to presign GET for key %s", key).
			Mark(ierr.ErrSystem)
	}
	return req.URL, nil
}
