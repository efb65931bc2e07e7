package unionfind

import "errors"

var (
	// ErrThresholdUnsupported is returned when threshold mode is requested
	// from a strategy that cannot compute it.
	ErrThresholdUnsupported = errors.New("unionfind: threshold mode is not supported by this strategy")
	// ErrUnknownStrategy is returned for an unrecognized strategy.
	ErrUnknownStrategy = errors.New("unionfind: unknown strategy")
	// ErrNilGraph is returned when an engine is created without a graph.
	ErrNilGraph = errors.New("unionfind: nil graph")
	// ErrDirectionNotLoaded is returned when the graph lacks the adjacency
	// lists the configured direction needs.
	ErrDirectionNotLoaded = errors.New("unionfind: direction not loaded in graph")
)
