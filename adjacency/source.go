package adjacency

import "github.com/hupe1980/hugecc/core"

// Relationship is one edge as reported by a RelationshipSource. Source and
// Target always follow the stored edge direction, regardless of which side
// was asked for.
type Relationship struct {
	Source    core.OriginalID
	Target    core.OriginalID
	Weight    float64
	HasWeight bool
}

// RelationshipSource yields the relationships of a node in its original id
// space. Implementations must be safe for concurrent calls on distinct
// nodes. Returning false from fn stops the iteration.
type RelationshipSource interface {
	ForEachRelationship(node core.OriginalID, dir core.Direction, fn func(Relationship) bool) error
}

// SourceFunc adapts a function to RelationshipSource.
type SourceFunc func(node core.OriginalID, dir core.Direction, fn func(Relationship) bool) error

// ForEachRelationship calls f.
func (f SourceFunc) ForEachRelationship(node core.OriginalID, dir core.Direction, fn func(Relationship) bool) error {
	return f(node, dir, fn)
}
