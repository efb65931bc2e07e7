package testutil

import (
	"github.com/hupe1980/hugecc/adjacency"
	"github.com/hupe1980/hugecc/core"
)

// Components computes the weakly connected components of l by breadth-first
// search, ignoring edge direction and weights. It returns, for every node,
// the smallest original id in its component.
func Components(l *adjacency.EdgeList) map[core.OriginalID]core.OriginalID {
	undirected := make(map[core.OriginalID][]core.OriginalID)
	for _, n := range l.Nodes() {
		_ = l.ForEachRelationship(n, core.Outgoing, func(r adjacency.Relationship) bool {
			undirected[r.Source] = append(undirected[r.Source], r.Target)
			undirected[r.Target] = append(undirected[r.Target], r.Source)
			return true
		})
	}

	label := make(map[core.OriginalID]core.OriginalID, len(l.Nodes()))
	for _, start := range l.Nodes() {
		if _, ok := label[start]; ok {
			continue
		}
		members := []core.OriginalID{start}
		label[start] = start
		for i := 0; i < len(members); i++ {
			for _, next := range undirected[members[i]] {
				if _, ok := label[next]; !ok {
					label[next] = start
					members = append(members, next)
				}
			}
		}
		smallest := start
		for _, m := range members {
			smallest = min(smallest, m)
		}
		for _, m := range members {
			label[m] = smallest
		}
	}
	return label
}

// ComponentCount returns the number of weakly connected components of l.
func ComponentCount(l *adjacency.EdgeList) int {
	roots := make(map[core.OriginalID]struct{})
	for _, root := range Components(l) {
		roots[root] = struct{}{}
	}
	return len(roots)
}
