package export

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/hupe1980/hugecc/core"
)

// Pair is one decoded result record.
type Pair struct {
	Node      core.OriginalID
	Component int64
}

// Reader decodes a result file written by Writer.
type Reader struct {
	r     *bufio.Reader
	codec Codec

	block []byte
	raw   []byte
	pos   int
	err   error
}

// NewReader reads and validates the file header.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)
	var header [6]byte
	if _, err := io.ReadFull(br, header[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrBadMagic
		}
		return nil, err
	}
	if [4]byte(header[:4]) != magic {
		return nil, ErrBadMagic
	}
	if header[4] > Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, header[4])
	}
	codec := Codec(header[5])
	if codec > CodecZSTD {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCodec, header[5])
	}
	return &Reader{r: br, codec: codec}, nil
}

// Codec returns the codec recorded in the file header.
func (r *Reader) Codec() Codec { return r.codec }

// Next decodes the next pair. It returns false at the end of the file or on
// error; Err distinguishes the two.
func (r *Reader) Next() (Pair, bool) {
	if r.err != nil {
		return Pair{}, false
	}
	for r.pos >= len(r.block) {
		if err := r.nextBlock(); err != nil {
			if !errors.Is(err, io.EOF) {
				r.err = err
			}
			return Pair{}, false
		}
	}

	node, n := binary.Varint(r.block[r.pos:])
	if n <= 0 {
		r.err = fmt.Errorf("%w: bad node id at block offset %d", ErrCorrupt, r.pos)
		return Pair{}, false
	}
	r.pos += n
	component, n := binary.Uvarint(r.block[r.pos:])
	if n <= 0 {
		r.err = fmt.Errorf("%w: bad component id at block offset %d", ErrCorrupt, r.pos)
		return Pair{}, false
	}
	r.pos += n
	return Pair{Node: core.OriginalID(node), Component: int64(component)}, true
}

// Err returns the first decoding error.
func (r *Reader) Err() error { return r.err }

// All iterates the remaining pairs. Check Err afterwards.
func (r *Reader) All() iter.Seq2[core.OriginalID, int64] {
	return func(yield func(core.OriginalID, int64) bool) {
		for {
			p, ok := r.Next()
			if !ok || !yield(p.Node, p.Component) {
				return
			}
		}
	}
}

func (r *Reader) nextBlock() error {
	var header [blockHeaderSize]byte
	if _, err := io.ReadFull(r.r, header[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: truncated block header", ErrCorrupt)
		}
		return err
	}
	uncompressed := binary.LittleEndian.Uint32(header[0:4])
	compressed := binary.LittleEndian.Uint32(header[4:8])

	size := compressed
	if compressed == 0 {
		size = uncompressed
	}
	if cap(r.raw) < int(size) {
		r.raw = make([]byte, size)
	}
	r.raw = r.raw[:size]
	if _, err := io.ReadFull(r.r, r.raw); err != nil {
		return fmt.Errorf("%w: truncated block: %v", ErrCorrupt, err)
	}

	block, err := decodeBlock(r.raw, uncompressed, compressed != 0, r.codec)
	if err != nil {
		return err
	}
	r.block = block
	r.pos = 0
	return nil
}

// ReadAll decodes every pair of a result file.
func ReadAll(r io.Reader) ([]Pair, error) {
	rd, err := NewReader(r)
	if err != nil {
		return nil, err
	}
	var pairs []Pair
	for {
		p, ok := rd.Next()
		if !ok {
			break
		}
		pairs = append(pairs, p)
	}
	return pairs, rd.Err()
}
