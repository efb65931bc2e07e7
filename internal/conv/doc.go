// Package conv provides checked integer conversions.
//
// Degrees, dense ids and block sizes cross between int, int64 and fixed width
// types at record and file boundaries. Checked fails with ErrOverflow instead
// of truncating; hot loops with established bounds keep plain casts.
package conv
