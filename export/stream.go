package export

import (
	"iter"

	"github.com/hupe1980/hugecc/core"
	"github.com/hupe1980/hugecc/dss"
	"github.com/hupe1980/hugecc/idmap"
)

// Stream yields (original id, component id) for every node of set in dense
// id order. The sequence is restartable. It compresses paths as it goes, so
// it must not run concurrently with other users of set.
func Stream(ids *idmap.IDMap, set *dss.DisjointSet) iter.Seq2[core.OriginalID, int64] {
	return func(yield func(core.OriginalID, int64) bool) {
		n := min(ids.NodeCount(), set.Len())
		for i := range n {
			node := core.NodeID(i)
			if !yield(ids.ToOriginal(node), int64(set.Find(node))) {
				return
			}
		}
	}
}
