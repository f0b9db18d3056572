package domain

import "fmt"

// ParallelismSpec describes how the lane count is chosen.
// It is either CountDriven or WeightDriven.
type ParallelismSpec interface {
	parallelism()
	String() string
}

// CountDriven asks for a fixed number of lanes.
type CountDriven struct {
	Count int
}

// WeightDriven asks for as many lanes as needed so each runs about TargetMs.
type WeightDriven struct {
	TargetMs int64
}

func (CountDriven) parallelism()  {}
func (WeightDriven) parallelism() {}

func (c CountDriven) String() string  { return fmt.Sprintf("count:%d", c.Count) }
func (w WeightDriven) String() string { return fmt.Sprintf("weight:%dms", w.TargetMs) }
