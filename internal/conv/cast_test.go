package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecked(t *testing.T) {
	got, err := Checked[uint32](123)
	require.NoError(t, err)
	assert.Equal(t, uint32(123), got)

	max32, err := Checked[uint32](int64(math.MaxUint32))
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxUint32), max32)

	neg, err := Checked[int64](int32(-7))
	require.NoError(t, err)
	assert.Equal(t, int64(-7), neg)
}

func TestChecked_Overflow(t *testing.T) {
	tests := []struct {
		name string
		fn   func() error
	}{
		{"negative to unsigned", func() error { _, err := Checked[uint32](-1); return err }},
		{"too wide", func() error { _, err := Checked[uint32](int64(math.MaxUint32) + 1); return err }},
		{"unsigned to signed", func() error { _, err := Checked[int](uint64(math.MaxUint64)); return err }},
		{"narrowing", func() error { _, err := Checked[int8](200); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.fn(), ErrOverflow)
		})
	}
}

func TestMustChecked(t *testing.T) {
	assert.Equal(t, uint64(9), MustChecked[uint64](9))
	assert.Panics(t, func() { MustChecked[uint32](-1) })
}
