package unionfind

import (
	"fmt"
	"strings"
)

// Strategy selects a union-find engine.
type Strategy int

const (
	// Sequential scans every node on the calling goroutine.
	Sequential Strategy = iota
	// Queue reduces batch results pairwise through a blocking queue.
	Queue
	// ForkJoin reduces batch results with a balanced divide-and-conquer merge.
	ForkJoin
)

func (s Strategy) String() string {
	switch s {
	case Sequential:
		return "sequential"
	case Queue:
		return "queue"
	case ForkJoin:
		return "forkjoin"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy parses a strategy name as printed by String. Matching is
// case-insensitive and accepts "fork-join".
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sequential", "seq":
		return Sequential, nil
	case "queue":
		return Queue, nil
	case "forkjoin", "fork-join":
		return ForkJoin, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}
