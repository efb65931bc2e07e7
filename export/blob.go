package export

import (
	"context"
	"errors"
	"iter"

	"github.com/hupe1980/hugecc/blobstore"
	"github.com/hupe1980/hugecc/core"
)

// WriteToBlob writes pairs as a result file named name in store and returns
// the number of records written. A failed write is aborted when the store
// supports it, so no partial file becomes visible.
func WriteToBlob(ctx context.Context, store blobstore.Store, name string, pairs iter.Seq2[core.OriginalID, int64], opts ...WriterOption) (int64, error) {
	wb, err := store.Create(ctx, name)
	if err != nil {
		return 0, err
	}

	fail := func(err error) (int64, error) {
		if a, ok := wb.(blobstore.Abortable); ok {
			return 0, errors.Join(err, a.Abort())
		}
		return 0, errors.Join(err, wb.Close())
	}

	w, err := NewWriter(ctx, wb, opts...)
	if err != nil {
		return fail(err)
	}
	for node, component := range pairs {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		if err := w.Write(node, component); err != nil {
			return fail(err)
		}
	}
	if err := w.Close(); err != nil {
		return fail(err)
	}
	if err := wb.Close(); err != nil {
		return 0, err
	}
	return w.Records(), nil
}

// ReadBlob decodes the result file name from store.
func ReadBlob(ctx context.Context, store blobstore.Store, name string) ([]Pair, error) {
	b, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	r, err := blobstore.NewReader(ctx, b)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return ReadAll(r)
}
