package s3

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	customErrors "github.com/karTik-kuMar04/Backend/internal/auth/errors"
	"github.com/karTik-kuMar04/Backend/internal/config"
)

// MediaStore puts uploaded images into an S3-compatible bucket and hands
// back a public URL for the stored object.
type MediaStore struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

func NewMediaStore(ctx context.Context, cfg *config.Config) (*MediaStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, customErrors.WrapInternal(err, "load s3 config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			// MinIO and friends do not serve virtual-host buckets.
			o.UsePathStyle = true
		}
	})

	return &MediaStore{
		client:        client,
		bucket:        cfg.S3Bucket,
		publicBaseURL: strings.TrimRight(cfg.S3PublicBaseURL, "/"),
	}, nil
}

func storageKey(kind string) string {
	d := time.Now()
	return fmt.Sprintf("%s/%d/%02d/%02d/%v", kind, d.Year(), d.Month(), d.Day(), uuid.New())
}

func (m *MediaStore) Upload(ctx context.Context, kind string, body io.Reader, contentType string) (string, error) {
	key := storageKey(kind)

	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &m.bucket,
		Key:         &key,
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", customErrors.WrapInternal(err, "upload media")
	}

	return fmt.Sprintf("%s/%s/%s", m.publicBaseURL, m.bucket, key), nil
}
