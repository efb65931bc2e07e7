package export

import (
	"encoding/binary"
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/hugecc/internal/conv"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec selects the block compression of a result file.
type Codec uint8

const (
	// CodecNone stores blocks raw.
	CodecNone Codec = 0
	// CodecLZ4 compresses blocks with LZ4 (fast).
	CodecLZ4 Codec = 1
	// CodecZSTD compresses blocks with ZSTD (better ratio).
	CodecZSTD Codec = 2
)

func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecLZ4:
		return "lz4"
	case CodecZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Codec(%d)", uint8(c))
	}
}

// ParseCodec parses a codec name as printed by String.
func ParseCodec(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return CodecNone, nil
	case "lz4":
		return CodecLZ4, nil
	case "zstd":
		return CodecZSTD, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}

// typedPool is a sync.Pool that builds values with newFn on a miss.
type typedPool[T any] struct {
	pool  sync.Pool
	newFn func() T
}

func (p *typedPool[T]) get() T {
	if v, ok := p.pool.Get().(T); ok {
		return v
	}
	return p.newFn()
}

func (p *typedPool[T]) put(v T) { p.pool.Put(v) }

// zstd encoders and decoders are costly to build and safe to reuse.
var (
	zstdEncoders = typedPool[*zstd.Encoder]{newFn: func() *zstd.Encoder {
		enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		return enc
	}}
	zstdDecoders = typedPool[*zstd.Decoder]{newFn: func() *zstd.Decoder {
		dec, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		return dec
	}}
)

// blockHeaderSize is the uncompressed and stored length prefix of a block.
const blockHeaderSize = 8

// rawRatio is the compressed-to-raw size above which a block is stored raw.
const rawRatio = 0.9

func compress(codec Codec, data []byte) ([]byte, error) {
	switch codec {
	case CodecLZ4:
		out := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, out, nil)
		return out[:n], err
	case CodecZSTD:
		enc := zstdEncoders.get()
		defer zstdEncoders.put(enc)
		return enc.EncodeAll(data, nil), nil
	}
	return nil, nil
}

// appendBlock frames data as one block. A stored length of 0 marks a raw
// block, used when the codec is none or compression does not pay off.
func appendBlock(dst, data []byte, codec Codec) ([]byte, error) {
	size, err := conv.Checked[uint32](len(data))
	if err != nil {
		return nil, err
	}
	packed, err := compress(codec, data)
	if err != nil {
		return nil, err
	}
	dst = binary.LittleEndian.AppendUint32(dst, size)
	if len(packed) == 0 || float64(len(packed)) > float64(len(data))*rawRatio {
		dst = binary.LittleEndian.AppendUint32(dst, 0)
		return append(dst, data...), nil
	}
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(packed)))
	return append(dst, packed...), nil
}

// decodeBlock expands a block payload to exactly size bytes.
func decodeBlock(payload []byte, size uint32, compressed bool, codec Codec) ([]byte, error) {
	if !compressed {
		return payload, nil
	}
	var (
		out []byte
		err error
	)
	switch codec {
	case CodecLZ4:
		out = make([]byte, size)
		var n int
		n, err = lz4.UncompressBlock(payload, out)
		out = out[:max(n, 0)]
	case CodecZSTD:
		dec := zstdDecoders.get()
		out, err = dec.DecodeAll(payload, make([]byte, 0, size))
		zstdDecoders.put(dec)
	default:
		return nil, fmt.Errorf("%w: compressed block in %s file", ErrCorrupt, codec)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if len(out) != int(size) {
		return nil, fmt.Errorf("%w: block expands to %d bytes, header says %d", ErrCorrupt, len(out), size)
	}
	return out, nil
}
