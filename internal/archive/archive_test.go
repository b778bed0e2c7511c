package archive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	bucket, key, file string
	opts              minio.PutObjectOptions
	err               error
}

func (f *fakePutter) FPutObject(_ context.Context, bucket, key, file string, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	f.bucket, f.key, f.file, f.opts = bucket, key, file, opts
	if f.err != nil {
		return minio.UploadInfo{}, f.err
	}
	return minio.UploadInfo{Bucket: bucket, Key: key, Size: 42}, nil
}

func fixedUploader(client objectPutter, prefix string) *Uploader {
	u := newUploader(client, Options{Bucket: "news", Prefix: prefix}, nil)
	u.now = func() time.Time { return time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC) }
	return u
}

func TestUploadUsesDatedKey(t *testing.T) {
	file := filepath.Join(t.TempDir(), "results.csv")
	require.NoError(t, os.WriteFile(file, []byte("title\n"), 0o644))

	client := &fakePutter{}
	key, err := fixedUploader(client, "/harvest/").Upload(context.Background(), file)
	require.NoError(t, err)

	require.Equal(t, "harvest/2024/05/01/results-20240501T123000Z.csv", key)
	require.Equal(t, "news", client.bucket)
	require.Equal(t, file, client.file)
	require.Equal(t, "text/csv", client.opts.ContentType)
}

func TestUploadSkipsMissingFile(t *testing.T) {
	client := &fakePutter{}
	key, err := fixedUploader(client, "").Upload(context.Background(), filepath.Join(t.TempDir(), "none.csv"))
	require.NoError(t, err)
	require.Empty(t, key)
	require.Empty(t, client.key)
}

func TestUploadWrapsClientError(t *testing.T) {
	file := filepath.Join(t.TempDir(), "results.csv")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	boom := errors.New("access denied")
	_, err := fixedUploader(&fakePutter{err: boom}, "").Upload(context.Background(), file)
	require.ErrorIs(t, err, boom)
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Options{Endpoint: "localhost:9000"}, nil)
	require.Error(t, err)
}
