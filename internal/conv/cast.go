package conv

import (
	"errors"
	"fmt"
)

// ErrOverflow reports a value that the target integer type cannot hold.
var ErrOverflow = errors.New("integer overflow")

// Integer is any built-in integer type.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Checked converts v to T, failing when the value would be truncated or its
// sign would flip.
func Checked[T, F Integer](v F) (T, error) {
	out := T(v)
	if F(out) != v || (v < 0) != (out < 0) {
		var zero T
		return zero, fmt.Errorf("%w: %d does not fit %T", ErrOverflow, v, zero)
	}
	return out, nil
}

// MustChecked is Checked for values whose range is an invariant of the
// caller. It panics on overflow.
func MustChecked[T, F Integer](v F) T {
	out, err := Checked[T](v)
	if err != nil {
		panic(err)
	}
	return out
}
