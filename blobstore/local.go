package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hupe1980/hugecc/internal/mmap"
)

// LocalStore keeps blobs as files below a root directory. Blob names use
// forward slashes regardless of platform.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

func (s *LocalStore) file(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}

// Open memory-maps the blob for sequential reading.
func (s *LocalStore) Open(_ context.Context, name string) (Blob, error) {
	m, err := mmap.Open(s.file(name))
	if err != nil {
		return nil, err
	}
	_ = m.Advise(mmap.AccessSequential)
	return &mappedBlob{m: m}, nil
}

// Create stages writes in a hidden sibling file. Close renames it over the
// target, so readers never observe a partial blob.
func (s *LocalStore) Create(_ context.Context, name string) (WritableBlob, error) {
	target := s.file(name)
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	staging, err := os.CreateTemp(dir, "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return nil, err
	}
	return &stagedFile{File: staging, target: target}, nil
}

func (s *LocalStore) Put(ctx context.Context, name string, data []byte) error {
	w, err := s.Create(ctx, name)
	if err != nil {
		return err
	}
	staged := w.(*stagedFile)
	if _, err := staged.Write(data); err != nil {
		return errors.Join(err, staged.Abort())
	}
	return staged.Close()
}

func (s *LocalStore) Delete(_ context.Context, name string) error {
	if err := os.Remove(s.file(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// List walks the root and returns published blobs under prefix. Staging
// files are hidden, and a missing root holds no blobs.
func (s *LocalStore) List(_ context.Context, prefix string) ([]string, error) {
	var names []string
	walk := func(p string, d fs.DirEntry, err error) error {
		switch {
		case err != nil:
			return err
		case d.IsDir(), strings.HasPrefix(d.Name(), "."):
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		if name := path.Clean(filepath.ToSlash(rel)); strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
		return nil
	}
	if err := filepath.WalkDir(s.root, walk); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	slices.Sort(names)
	return names, nil
}

type mappedBlob struct {
	m *mmap.Mapping
}

func (b *mappedBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return bytes.NewReader(b.m.Bytes()).ReadAt(p, off)
}

// ReadRange clips length at the end of the blob. An offset beyond the end
// is io.EOF.
func (b *mappedBlob) ReadRange(_ context.Context, off, length int64) (io.ReadCloser, error) {
	data := b.m.Bytes()
	if off < 0 || off > int64(len(data)) {
		return nil, io.EOF
	}
	end := min(off+length, int64(len(data)))
	return io.NopCloser(bytes.NewReader(data[off:end])), nil
}

func (b *mappedBlob) Size() int64 { return int64(b.m.Size()) }

func (b *mappedBlob) Bytes() ([]byte, error) { return b.m.Bytes(), nil }

func (b *mappedBlob) Close() error { return b.m.Close() }

// stagedFile is an open staging file plus the name it is published under.
type stagedFile struct {
	*os.File
	target string
}

func (f *stagedFile) Close() error {
	if err := f.File.Sync(); err != nil {
		return errors.Join(err, f.Abort())
	}
	if err := f.File.Close(); err != nil {
		return errors.Join(err, os.Remove(f.Name()))
	}
	return os.Rename(f.Name(), f.target)
}

// Abort discards the staging file without publishing it.
func (f *stagedFile) Abort() error {
	_ = f.File.Close()
	return os.Remove(f.Name())
}
