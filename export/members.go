package export

import (
	"iter"
	"maps"
	"slices"

	"github.com/hupe1980/hugecc/core"
	"github.com/hupe1980/hugecc/dss"
	"github.com/hupe1980/hugecc/idmap"
)

// Members yields each component id with the original ids of its members,
// in ascending component id order. Members are listed in dense id order.
// Dense ids that ids does not know are skipped.
//
// The components are grouped into roaring bitmaps once, when iteration
// starts; the member slice passed to yield is freshly allocated.
func Members(ids *idmap.IDMap, set *dss.DisjointSet) iter.Seq2[int64, []core.OriginalID] {
	return func(yield func(int64, []core.OriginalID) bool) {
		components := set.Components()
		n := uint32(ids.NodeCount())
		for _, root := range slices.Sorted(maps.Keys(components)) {
			bm := components[root]
			members := make([]core.OriginalID, 0, bm.GetCardinality())
			it := bm.Iterator()
			for it.HasNext() {
				if node := it.Next(); node < n {
					members = append(members, ids.ToOriginal(core.NodeID(node)))
				}
			}
			if len(members) == 0 {
				continue
			}
			if !yield(int64(root), members) {
				return
			}
		}
	}
}
