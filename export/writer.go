package export

import (
	"context"
	"encoding/binary"
	"io"
	"iter"

	"github.com/hupe1980/hugecc/core"
	"github.com/hupe1980/hugecc/internal/resource"
)

const (
	// Version is the result file format version written by Writer.
	Version = 1
	// DefaultBlockSize is the uncompressed payload size at which a block is flushed.
	DefaultBlockSize = 256 << 10
)

var magic = [4]byte{'H', 'U', 'C', 'C'}

type writerOptions struct {
	codec     Codec
	blockSize int
	rc        *resource.Controller
}

// WriterOption configures a Writer.
type WriterOption func(*writerOptions)

// WithCodec sets the block compression codec.
func WithCodec(c Codec) WriterOption {
	return func(o *writerOptions) { o.codec = c }
}

// WithBlockSize sets the uncompressed block size.
func WithBlockSize(n int) WriterOption {
	return func(o *writerOptions) {
		if n > 0 {
			o.blockSize = n
		}
	}
}

// WithRateLimit throttles output through the controller's IO budget.
func WithRateLimit(rc *resource.Controller) WriterOption {
	return func(o *writerOptions) { o.rc = rc }
}

// Writer encodes (original id, component id) pairs into a result file.
// It is not safe for concurrent use.
type Writer struct {
	w         io.Writer
	codec     Codec
	blockSize int

	buf     []byte
	frame   []byte
	records int64
	bytes   int64
	closed  bool
}

// NewWriter writes the file header to w and returns a Writer. Close must be
// called to flush the last block; it does not close w.
func NewWriter(ctx context.Context, w io.Writer, opts ...WriterOption) (*Writer, error) {
	o := writerOptions{codec: CodecNone, blockSize: DefaultBlockSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.codec > CodecZSTD {
		return nil, ErrUnknownCodec
	}
	if o.rc != nil {
		w = resource.NewRateLimitedWriter(ctx, w, o.rc)
	}

	wr := &Writer{
		w:         w,
		codec:     o.codec,
		blockSize: o.blockSize,
		buf:       make([]byte, 0, o.blockSize+2*binary.MaxVarintLen64),
	}
	header := append(magic[:], Version, byte(o.codec))
	if err := wr.write(header); err != nil {
		return nil, err
	}
	return wr, nil
}

// Write appends one pair.
func (w *Writer) Write(node core.OriginalID, component int64) error {
	if w.closed {
		return ErrClosed
	}
	if component < 0 {
		return ErrNegativeComponent
	}
	w.buf = binary.AppendVarint(w.buf, int64(node))
	w.buf = binary.AppendUvarint(w.buf, uint64(component))
	w.records++
	if len(w.buf) >= w.blockSize {
		return w.Flush()
	}
	return nil
}

// WriteAll appends every pair of seq.
func (w *Writer) WriteAll(seq iter.Seq2[core.OriginalID, int64]) error {
	for node, component := range seq {
		if err := w.Write(node, component); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes buffered pairs as one block.
func (w *Writer) Flush() error {
	if len(w.buf) == 0 {
		return nil
	}
	frame, err := appendBlock(w.frame[:0], w.buf, w.codec)
	if err != nil {
		return err
	}
	w.frame = frame
	w.buf = w.buf[:0]
	return w.write(frame)
}

// Close flushes the last block. Further writes fail with ErrClosed.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	err := w.Flush()
	w.closed = true
	return err
}

// Records returns the number of pairs written.
func (w *Writer) Records() int64 { return w.records }

// BytesWritten returns the number of file bytes emitted so far.
func (w *Writer) BytesWritten() int64 { return w.bytes }

func (w *Writer) write(p []byte) error {
	n, err := w.w.Write(p)
	w.bytes += int64(n)
	return err
}
