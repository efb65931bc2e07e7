package minio

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/hupe1980/hugecc/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) StatObject(ctx context.Context, bucket, key string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	args := m.Called(ctx, bucket, key, opts)
	return args.Get(0).(minio.ObjectInfo), args.Error(1)
}

func (m *mockClient) GetObject(ctx context.Context, bucket, key string, opts minio.GetObjectOptions) (*minio.Object, error) {
	args := m.Called(ctx, bucket, key, opts)
	obj, _ := args.Get(0).(*minio.Object)
	return obj, args.Error(1)
}

func (m *mockClient) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucket, key, r, size, opts)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

func (m *mockClient) RemoveObject(ctx context.Context, bucket, key string, opts minio.RemoveObjectOptions) error {
	return m.Called(ctx, bucket, key, opts).Error(0)
}

func (m *mockClient) ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	return m.Called(ctx, bucket, opts).Get(0).(<-chan minio.ObjectInfo)
}

func objects(infos ...minio.ObjectInfo) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(infos))
	for _, info := range infos {
		ch <- info
	}
	close(ch)
	return ch
}

func TestStore_Open(t *testing.T) {
	client := new(mockClient)
	store := NewStore(client, "bucket", "runs")
	ctx := t.Context()

	client.On("StatObject", ctx, "bucket", "runs/a.hucc", mock.Anything).
		Return(minio.ObjectInfo{Size: 42}, nil)
	client.On("StatObject", ctx, "bucket", "runs/missing", mock.Anything).
		Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"})

	b, err := store.Open(ctx, "a.hucc")
	require.NoError(t, err)
	assert.Equal(t, int64(42), b.Size())
	require.NoError(t, b.Close())

	_, err = b.ReadRange(ctx, 42, 1)
	assert.ErrorIs(t, err, io.EOF)

	_, err = store.Open(ctx, "missing")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
	client.AssertExpectations(t)
}

func TestStore_Put(t *testing.T) {
	client := new(mockClient)
	store := NewStore(client, "bucket", "", WithPartSize(16<<20))
	ctx := t.Context()

	client.On("PutObject", ctx, "bucket", "x", mock.Anything, int64(3),
		minio.PutObjectOptions{ContentType: ContentType, PartSize: 16 << 20}).
		Return(minio.UploadInfo{}, nil)

	require.NoError(t, store.Put(ctx, "x", []byte("abc")))
	client.AssertExpectations(t)
}

func TestStore_CreateStreams(t *testing.T) {
	client := new(mockClient)
	store := NewStore(client, "bucket", "cc/")
	ctx := t.Context()

	var uploaded []byte
	client.On("PutObject", ctx, "bucket", "cc/r.hucc", mock.Anything, int64(-1), mock.Anything).
		Run(func(args mock.Arguments) {
			uploaded, _ = io.ReadAll(args.Get(3).(io.Reader))
		}).
		Return(minio.UploadInfo{}, nil)

	wb, err := store.Create(ctx, "r.hucc")
	require.NoError(t, err)
	_, err = wb.Write([]byte("streamed "))
	require.NoError(t, err)
	_, err = wb.Write([]byte("data"))
	require.NoError(t, err)
	require.NoError(t, wb.Close())
	assert.Equal(t, "streamed data", string(uploaded))

	assert.ErrorIs(t, wb.Close(), errClosed)
}

func TestStore_CreateAbort(t *testing.T) {
	client := new(mockClient)
	store := NewStore(client, "bucket", "")
	ctx := t.Context()

	client.On("PutObject", ctx, "bucket", "r.hucc", mock.Anything, int64(-1), mock.Anything).
		Run(func(args mock.Arguments) {
			_, _ = io.ReadAll(args.Get(3).(io.Reader))
		}).
		Return(minio.UploadInfo{}, errAborted)

	wb, err := store.Create(ctx, "r.hucc")
	require.NoError(t, err)
	_, err = wb.Write([]byte("partial"))
	require.NoError(t, err)
	require.NoError(t, wb.(blobstore.Abortable).Abort())
	assert.ErrorIs(t, wb.Close(), errClosed)
}

func TestStore_Delete(t *testing.T) {
	client := new(mockClient)
	store := NewStore(client, "bucket", "")
	ctx := t.Context()

	client.On("RemoveObject", ctx, "bucket", "gone", mock.Anything).
		Return(minio.ErrorResponse{Code: "NoSuchKey"})
	client.On("RemoveObject", ctx, "bucket", "locked", mock.Anything).
		Return(minio.ErrorResponse{Code: "AccessDenied"})

	assert.NoError(t, store.Delete(ctx, "gone"))
	assert.Error(t, store.Delete(ctx, "locked"))
}

func TestStore_List(t *testing.T) {
	client := new(mockClient)
	store := NewStore(client, "bucket", "runs/")
	ctx := t.Context()

	client.On("ListObjects", ctx, "bucket", minio.ListObjectsOptions{Prefix: "runs/2026", Recursive: true}).
		Return(objects(
			minio.ObjectInfo{Key: "runs/2026/b.hucc"},
			minio.ObjectInfo{Key: "runs/2026/a.hucc"},
		)).Once()
	names, err := store.List(ctx, "2026")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026/a.hucc", "2026/b.hucc"}, names)

	boom := errors.New("listing failed")
	client.On("ListObjects", ctx, "bucket", mock.Anything).
		Return(objects(minio.ObjectInfo{Err: boom}))
	_, err = store.List(ctx, "")
	assert.ErrorIs(t, err, boom)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(minio.ErrorResponse{Code: "NoSuchKey"}))
	assert.True(t, isNotFound(minio.ErrorResponse{Code: "NotFound"}))
	assert.False(t, isNotFound(minio.ErrorResponse{Code: "AccessDenied"}))
	assert.False(t, isNotFound(errors.New("dial tcp: refused")))
}

// TestStore_Integration requires a running MinIO server at MINIO_ENDPOINT.
func TestStore_Integration(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("MINIO_ENDPOINT not set")
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds: credentials.NewStaticV4(os.Getenv("MINIO_ACCESS_KEY"), os.Getenv("MINIO_SECRET_KEY"), ""),
	})
	require.NoError(t, err)

	ctx := t.Context()
	if _, err := client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}
	const bucket = "test-hugecc"
	if ok, err := client.BucketExists(ctx, bucket); err == nil && !ok {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	store := NewStore(client, bucket, "it/")
	data := []byte("hello minio world")
	require.NoError(t, store.Put(ctx, "hello.txt", data))
	t.Cleanup(func() { _ = store.Delete(context.Background(), "hello.txt") })

	b, err := store.Open(ctx, "hello.txt")
	require.NoError(t, err)
	buf := make([]byte, 5)
	n, err := b.ReadAt(ctx, buf, 6)
	require.NoError(t, err)
	assert.Equal(t, "minio", string(buf[:n]))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, "hello.txt")
}
