package execution

import (
	"context"
	"time"

	"pts/internal/domain"
)

// LaneJob is everything a lane needs to run its share of the suite
type LaneJob struct {
	Lane       int
	LaneCount  int
	Filter     domain.FilterDescriptor
	FilterFile string // Rendered filter file, empty if none was written
	Expression string // Rendered single-value filter
	Skip       bool   // Lane has nothing to run
}

// Executor runs lanes and returns their results in lane order
type Executor interface {
	Execute(ctx context.Context, jobs []LaneJob) ([]domain.LaneResult, time.Duration, error)
}
