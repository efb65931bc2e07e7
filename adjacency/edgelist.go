package adjacency

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/hupe1980/hugecc/core"
	"github.com/hupe1980/hugecc/idmap"
	"github.com/hupe1980/hugecc/internal/mmap"
)

// EdgeList is an in-memory RelationshipSource. It is populated single
// threaded and is safe for concurrent reads once population is done.
type EdgeList struct {
	out   map[core.OriginalID][]Relationship
	in    map[core.OriginalID][]Relationship
	nodes []core.OriginalID
	seen  map[core.OriginalID]struct{}
	edges int
}

// NewEdgeList returns an empty edge list.
func NewEdgeList() *EdgeList {
	return &EdgeList{
		out:  make(map[core.OriginalID][]Relationship),
		in:   make(map[core.OriginalID][]Relationship),
		seen: make(map[core.OriginalID]struct{}),
	}
}

// AddNode registers a node without edges.
func (l *EdgeList) AddNode(id core.OriginalID) {
	if _, ok := l.seen[id]; ok {
		return
	}
	l.seen[id] = struct{}{}
	l.nodes = append(l.nodes, id)
}

// AddEdge adds an unweighted edge src -> dst.
func (l *EdgeList) AddEdge(src, dst core.OriginalID) {
	l.add(Relationship{Source: src, Target: dst})
}

// AddWeightedEdge adds an edge src -> dst carrying weight w.
func (l *EdgeList) AddWeightedEdge(src, dst core.OriginalID, w float64) {
	l.add(Relationship{Source: src, Target: dst, Weight: w, HasWeight: true})
}

func (l *EdgeList) add(rel Relationship) {
	l.AddNode(rel.Source)
	l.AddNode(rel.Target)
	l.out[rel.Source] = append(l.out[rel.Source], rel)
	l.in[rel.Target] = append(l.in[rel.Target], rel)
	l.edges++
}

// Nodes returns the registered nodes in first-seen order.
func (l *EdgeList) Nodes() []core.OriginalID { return l.nodes }

// EdgeCount returns the number of edges added.
func (l *EdgeList) EdgeCount() int { return l.edges }

// IDMap builds a dense id map over the registered nodes in first-seen order.
func (l *EdgeList) IDMap() (*idmap.IDMap, error) {
	return idmap.FromOriginals(l.nodes...)
}

// ForEachRelationship implements RelationshipSource.
func (l *EdgeList) ForEachRelationship(node core.OriginalID, dir core.Direction, fn func(Relationship) bool) error {
	if dir.LoadsOutgoing() {
		for _, rel := range l.out[node] {
			if !fn(rel) {
				return nil
			}
		}
	}
	if dir.LoadsIncoming() {
		for _, rel := range l.in[node] {
			if !fn(rel) {
				return nil
			}
		}
	}
	return nil
}

// ParseError reports a malformed line in an edge list file.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("adjacency: line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// LoadEdgeListFile reads a whitespace separated edge list ("src dst [weight]"
// per line, '#' starts a comment) through a read-only mapping of the file.
// It returns the edges and an id map over every node seen, in first-seen
// order.
func LoadEdgeListFile(path string) (*EdgeList, *idmap.IDMap, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("adjacency: open edge list: %w", err)
	}
	defer m.Close()

	_ = m.Advise(mmap.AccessSequential)

	list, err := ParseEdgeList(m.Bytes())
	if err != nil {
		return nil, nil, err
	}
	ids, err := list.IDMap()
	if err != nil {
		return nil, nil, err
	}
	return list, ids, nil
}

// ParseEdgeList parses edge list text. The input is not retained.
func ParseEdgeList(data []byte) (*EdgeList, error) {
	list := NewEdgeList()
	lineNo := 0
	for len(data) > 0 {
		lineNo++
		line := data
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line, data = data[:i], data[i+1:]
		} else {
			data = nil
		}
		if i := bytes.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := bytes.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if err := parseEdge(list, fields); err != nil {
			return nil, &ParseError{Line: lineNo, Text: string(bytes.TrimSpace(line)), Err: err}
		}
	}
	return list, nil
}

func parseEdge(list *EdgeList, fields [][]byte) error {
	switch len(fields) {
	case 1:
		id, err := strconv.ParseInt(string(fields[0]), 10, 64)
		if err != nil {
			return err
		}
		list.AddNode(core.OriginalID(id))
		return nil
	case 2, 3:
	default:
		return fmt.Errorf("expected 2 or 3 fields, got %d", len(fields))
	}

	src, err := strconv.ParseInt(string(fields[0]), 10, 64)
	if err != nil {
		return err
	}
	dst, err := strconv.ParseInt(string(fields[1]), 10, 64)
	if err != nil {
		return err
	}
	if len(fields) == 2 {
		list.AddEdge(core.OriginalID(src), core.OriginalID(dst))
		return nil
	}
	w, err := strconv.ParseFloat(string(fields[2]), 64)
	if err != nil {
		return err
	}
	list.AddWeightedEdge(core.OriginalID(src), core.OriginalID(dst), w)
	return nil
}
