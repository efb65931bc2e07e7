package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound matches errors for missing blobs via errors.Is. It is
// os.ErrNotExist so local file errors satisfy it unwrapped.
var ErrNotFound = os.ErrNotExist

// Store holds immutable named blobs such as exported component files.
type Store interface {
	Open(ctx context.Context, name string) (Blob, error)
	// Create starts a streaming write. Nothing is visible under name until
	// the returned handle is closed.
	Create(ctx context.Context, name string) (WritableBlob, error)
	Put(ctx context.Context, name string, data []byte) error
	// Delete is a no-op for missing blobs.
	Delete(ctx context.Context, name string) error
	// List returns blob names starting with prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is an open, read-only blob.
type Blob interface {
	io.Closer
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error)
	Size() int64
}

// WritableBlob is a pending blob; Close publishes it.
type WritableBlob interface {
	io.WriteCloser
	Sync() error
}

// Abortable is implemented by WritableBlobs that can drop a pending write.
type Abortable interface {
	Abort() error
}

// Mappable exposes a blob's bytes without copying. The slice is only valid
// until the blob is closed.
type Mappable interface {
	Bytes() ([]byte, error)
}

// NewReader reads the whole blob sequentially.
func NewReader(ctx context.Context, b Blob) (io.ReadCloser, error) {
	return b.ReadRange(ctx, 0, b.Size())
}
