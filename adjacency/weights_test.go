package adjacency

import (
	"sync"
	"testing"

	"github.com/hupe1980/hugecc/core"
	"github.com/stretchr/testify/assert"
)

func TestNullWeights(t *testing.T) {
	w := NullWeights{Default: 1.5}
	assert.InDelta(t, 1.5, w.Weight(0, 1), 0)
}

func TestShardedWeights(t *testing.T) {
	w := NewShardedWeights(-1)
	w.Set(1, 2, 0.5)

	assert.InDelta(t, 0.5, w.Weight(1, 2), 0)
	assert.InDelta(t, -1, w.Weight(2, 1), 0, "pairs are directed")
	assert.InDelta(t, -1, w.Weight(7, 7), 0)
	assert.Equal(t, 1, w.Len())
}

func TestShardedWeights_Concurrent(t *testing.T) {
	w := NewShardedWeights(0)
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 1000 {
				w.Set(core.NodeID(g), core.NodeID(i), float64(g*1000+i))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 8000, w.Len())
	assert.InDelta(t, 3999.0, w.Weight(3, 999), 0)
}
