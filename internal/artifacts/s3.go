// Package artifacts ships debug captures (screenshots and HTML snapshots) to
// object storage.
package artifacts

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PutObjectAPI is the part of *s3.Client the uploader needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Options struct {
	Bucket string
	Prefix string
	Region string
}

// S3Uploader stores every file of one run under <prefix>/<run timestamp>/.
type S3Uploader struct {
	client PutObjectAPI
	bucket string
	folder string
	logger *slog.Logger
}

// NewS3Uploader loads AWS credentials from the default chain.
func NewS3Uploader(ctx context.Context, opts S3Options, logger *slog.Logger) (*S3Uploader, error) {
	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewS3UploaderWithClient(s3.NewFromConfig(cfg), opts, logger), nil
}

func NewS3UploaderWithClient(client PutObjectAPI, opts S3Options, logger *slog.Logger) *S3Uploader {
	if logger == nil {
		logger = slog.Default()
	}
	return &S3Uploader{
		client: client,
		bucket: opts.Bucket,
		folder: path.Join(opts.Prefix, time.Now().UTC().Format("20060102T150405Z")),
		logger: logger.With("component", "s3_uploader"),
	}
}

// Key returns the object key a local file is stored under.
func (u *S3Uploader) Key(file string) string {
	return path.Join(u.folder, filepath.Base(file))
}

func (u *S3Uploader) Upload(ctx context.Context, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("failed to open artifact: %w", err)
	}
	defer f.Close()

	contentType := mime.TypeByExtension(filepath.Ext(file))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := u.Key(file)
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to s3: %w", filepath.Base(file), err)
	}

	u.logger.Info("artifact uploaded", "bucket", u.bucket, "key", key)
	return nil
}
