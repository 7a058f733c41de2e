package storage

import (
	"bytes"
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcminio "github.com/testcontainers/testcontainers-go/modules/minio"
)

func TestS3Store_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := tcminio.Run(ctx,
		"minio/minio:RELEASE.2024-10-29T16-01-48Z",
		tcminio.WithUsername("minioadmin"),
		tcminio.WithPassword("minioadmin"),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, container.Terminate(context.Background()))
	})

	endpoint, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	// Seed the bucket with minio-go, then read it back through the S3 store
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	require.NoError(t, err)

	bucket := "seisview-test-" + uuid.New().String()[:8]
	require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))

	content := []byte("Corrected acceleration\n")
	key := "waveforms/" + uuid.New().String() + "/CI.PASC.HNZ.V2"
	_, err = client.PutObject(ctx, bucket, key, bytes.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: "text/plain"})
	require.NoError(t, err)

	store, err := NewS3Store(S3Config{
		Bucket:    bucket,
		Endpoint:  endpoint,
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	})
	require.NoError(t, err)

	t.Run("download", func(t *testing.T) {
		data, err := store.DownloadFile(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, content, data)
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := store.DownloadFile(ctx, "waveforms/missing.V2")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("presigned urls", func(t *testing.T) {
		upload, err := store.GenerateUploadURL(ctx, key, "application/x-cosmos")
		require.NoError(t, err)
		assert.True(t, strings.Contains(upload, bucket), "path-style URL names the bucket")

		_, err = store.GenerateUploadURL(ctx, key, "image/png")
		assert.ErrorContains(t, err, "invalid content type")

		download, err := store.GenerateDownloadURL(ctx, key)
		require.NoError(t, err)
		assert.Contains(t, download, "X-Amz-Signature")
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.DeleteFile(ctx, key))
		_, err := store.DownloadFile(ctx, key)
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})
}
