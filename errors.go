package hugecc

import (
	"errors"
	"fmt"

	"github.com/hupe1980/hugecc/adjacency"
	"github.com/hupe1980/hugecc/unionfind"
)

var (
	// ErrInvalidConcurrency is returned when concurrency is not positive.
	ErrInvalidConcurrency = errors.New("concurrency must be positive")
	// ErrInvalidBatchSize is returned when batch size bounds are not positive
	// or the maximum is below the minimum.
	ErrInvalidBatchSize = errors.New("invalid batch size")
	// ErrNilSource is returned when Run is called without a relationship source.
	ErrNilSource = adjacency.ErrNilSource
	// ErrNilIDMap is returned when Run is called without an id map.
	ErrNilIDMap = adjacency.ErrNilIDMap
	// ErrThresholdUnsupported is returned when the queue strategy is asked
	// for a threshold computation.
	ErrThresholdUnsupported = unionfind.ErrThresholdUnsupported
	// ErrUnknownStrategy is returned for a strategy value outside the known set.
	ErrUnknownStrategy = unionfind.ErrUnknownStrategy
)

// Stage names a phase of a run.
type Stage string

const (
	StageImport  Stage = "import"
	StageCompute Stage = "compute"
	StageExport  Stage = "export"
)

// ErrStage reports which phase of a run failed.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrStage struct {
	Stage Stage
	cause error
}

func (e *ErrStage) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.cause)
}

func (e *ErrStage) Unwrap() error { return e.cause }

func stageError(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &ErrStage{Stage: stage, cause: err}
}
