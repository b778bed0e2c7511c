// Package archive copies the results CSV to an S3-compatible bucket.
package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/Adda-Baaj/briefing-harvester/internal/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Options configures the object storage target.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

type objectPutter interface {
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Uploader stores timestamped snapshots of a local file.
type Uploader struct {
	client objectPutter
	bucket string
	prefix string
	now    func() time.Time
	log    logger.Logger
}

// New connects to the endpoint and creates the bucket when it does not exist.
func New(ctx context.Context, opts Options, log logger.Logger) (*Uploader, error) {
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, fmt.Errorf("archive bucket is required")
	}

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return newUploader(client, opts, log), nil
}

func newUploader(client objectPutter, opts Options, log logger.Logger) *Uploader {
	return &Uploader{
		client: client,
		bucket: opts.Bucket,
		prefix: strings.Trim(opts.Prefix, "/"),
		now:    time.Now,
		log:    logger.Ensure(log),
	}
}

// Upload copies filePath to the bucket and returns the object key. A missing
// file is not an error and returns an empty key.
func (u *Uploader) Upload(ctx context.Context, filePath string) (string, error) {
	if _, err := os.Stat(filePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("stat %s: %w", filePath, err)
	}

	key := u.objectKey(filePath)
	info, err := u.client.FPutObject(ctx, u.bucket, key, filePath, minio.PutObjectOptions{
		ContentType: "text/csv",
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", filePath, err)
	}

	u.log.InfoObj("csv archived", "archive_result", map[string]any{
		"bucket": u.bucket,
		"key":    key,
		"bytes":  info.Size,
	})
	return key, nil
}

// objectKey is <prefix>/<yyyy>/<mm>/<dd>/<name>-<timestamp><ext>.
func (u *Uploader) objectKey(filePath string) string {
	ts := u.now().UTC()
	base := filepath.Base(filePath)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)

	return path.Join(u.prefix, ts.Format("2006/01/02"), fmt.Sprintf("%s-%s%s", name, ts.Format("20060102T150405Z"), ext))
}
