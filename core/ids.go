package core

import (
	"fmt"
	"strings"
)

// NodeID is a dense, internal identifier for a node within a loaded graph.
// It is strictly 32-bit, allowing for max 4 Billion nodes per graph.
// Used for all hot-path structures (offsets, adjacency, disjoint sets).
type NodeID uint32

// InvalidNodeID marks an original id that is not part of the loaded id space.
const InvalidNodeID = ^NodeID(0)

// MaxNodeCount is the maximum number of nodes a graph can hold.
const MaxNodeCount = int64(InvalidNodeID)

// OriginalID is the external (sparse) identifier of a node.
type OriginalID int64

// Direction selects which relationships of a node are visited.
type Direction uint8

const (
	// Outgoing visits relationships that start at the node.
	Outgoing Direction = iota
	// Incoming visits relationships that end at the node.
	Incoming
	// Both visits outgoing relationships first, then incoming ones.
	Both
)

// String implements fmt.Stringer.
func (d Direction) String() string {
	switch d {
	case Outgoing:
		return "outgoing"
	case Incoming:
		return "incoming"
	case Both:
		return "both"
	default:
		return "unknown"
	}
}

// ParseDirection parses a direction name as printed by String.
func ParseDirection(name string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "outgoing", "out":
		return Outgoing, nil
	case "incoming", "in":
		return Incoming, nil
	case "both", "undirected":
		return Both, nil
	default:
		return 0, fmt.Errorf("unknown direction %q", name)
	}
}

// LoadsOutgoing reports whether the direction includes outgoing relationships.
func (d Direction) LoadsOutgoing() bool { return d == Outgoing || d == Both }

// LoadsIncoming reports whether the direction includes incoming relationships.
func (d Direction) LoadsIncoming() bool { return d == Incoming || d == Both }
