package adjacency

import (
	"encoding/binary"
	"errors"
	"math/bits"
	"slices"
)

// HeaderSize is the size of the degree prefix of a record.
const HeaderSize = 4

// ErrCorruptRecord is returned when a record cannot be decoded.
var ErrCorruptRecord = errors.New("adjacency: corrupt record")

// encodedSizes[n] is the uvarint size of a value with bit length n.
var encodedSizes = func() [65]int {
	var sizes [65]int
	sizes[0] = 1
	for n := 1; n <= 64; n++ {
		sizes[n] = (n + 6) / 7
	}
	return sizes
}()

// EncodedSize returns the number of bytes the uvarint encoding of v occupies.
func EncodedSize(v uint64) int {
	return encodedSizes[bits.Len64(v)]
}

// DeltaEncode sorts values ascending (skipped when sorted is true) and
// rewrites them in place as gaps from their predecessor, the first value
// against 0. It returns the size of the full record including the degree
// header.
func DeltaEncode(values []uint64, sorted bool) int {
	if !sorted {
		slices.Sort(values)
	}
	required := HeaderSize
	var prev uint64
	for i, v := range values {
		delta := v - prev
		prev = v
		values[i] = delta
		required += EncodedSize(delta)
	}
	return required
}

// AppendRecord appends a complete record for the given gaps to dst. Callers
// bound len(deltas) to uint32 first.
func AppendRecord(dst []byte, deltas []uint64) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(deltas)))
	for _, d := range deltas {
		dst = binary.AppendUvarint(dst, d)
	}
	return dst
}

// Degree reads the degree prefix of a record.
func Degree(record []byte) (int, error) {
	if len(record) < HeaderSize {
		return 0, ErrCorruptRecord
	}
	return int(binary.LittleEndian.Uint32(record)), nil
}

// DecodeDeltas walks a record, calling fn with each absolute neighbour id in
// ascending order until fn returns false.
func DecodeDeltas(record []byte, fn func(v uint64) bool) error {
	degree, err := Degree(record)
	if err != nil {
		return err
	}
	pos := HeaderSize
	var prev uint64
	for range degree {
		delta, n := binary.Uvarint(record[pos:])
		if n <= 0 {
			return ErrCorruptRecord
		}
		pos += n
		prev += delta
		if !fn(prev) {
			return nil
		}
	}
	return nil
}
