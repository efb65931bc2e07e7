package unionfind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in   string
		want Strategy
	}{
		{"sequential", Sequential},
		{"SEQ", Sequential},
		{"queue", Queue},
		{"forkjoin", ForkJoin},
		{" Fork-Join ", ForkJoin},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStrategy(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseStrategy("bogus")
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestStrategy_String(t *testing.T) {
	for _, s := range []Strategy{Sequential, Queue, ForkJoin} {
		parsed, err := ParseStrategy(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}
	assert.Equal(t, "Strategy(9)", Strategy(9).String())
}
