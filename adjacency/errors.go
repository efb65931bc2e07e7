package adjacency

import (
	"errors"
	"fmt"

	"github.com/hupe1980/hugecc/core"
)

var (
	// ErrNilSource is returned when an importer is created without a source.
	ErrNilSource = errors.New("adjacency: nil relationship source")
	// ErrNilIDMap is returned when an importer is created without an id map.
	ErrNilIDMap = errors.New("adjacency: nil id map")
	// ErrDirectionNotLoaded is returned when a direction was not imported.
	ErrDirectionNotLoaded = errors.New("adjacency: direction not loaded")
)

// ImportError reports a relationship source failure for one node. It aborts
// the whole import.
type ImportError struct {
	Node core.OriginalID
	Err  error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("adjacency: import node %d: %v", e.Node, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }
