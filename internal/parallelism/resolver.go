// Package parallelism turns a ParallelismSpec into a concrete lane count.
package parallelism

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pts/internal/domain"
)

// ErrInvalidParallelism is returned when a parallelism setting cannot be parsed.
var ErrInvalidParallelism = errors.New("invalid parallelism")

// Resolve returns the number of lanes, never less than 1.
//
// CountDriven yields its count. WeightDriven yields ceil(totalMs / targetMs).
func Resolve(spec domain.ParallelismSpec, totalMs int64) int {
	n := 1
	switch s := spec.(type) {
	case domain.CountDriven:
		n = s.Count
	case *domain.CountDriven:
		if s != nil {
			n = s.Count
		}
	case domain.WeightDriven:
		n = byWeight(totalMs, s.TargetMs)
	case *domain.WeightDriven:
		if s != nil {
			n = byWeight(totalMs, s.TargetMs)
		}
	}
	if n < 1 {
		return 1
	}
	return n
}

func byWeight(totalMs, targetMs int64) int {
	if targetMs < 1 {
		targetMs = 1
	}
	if totalMs <= 0 {
		return 1
	}
	// Ceiling division that cannot overflow
	n := totalMs / targetMs
	if totalMs%targetMs != 0 {
		n++
	}
	return int(n)
}

// Parse reads the textual form used by flags and config files:
//
//	"4", "count:4"           fixed lane count
//	"weight:90000"           target milliseconds per lane
//	"weight:15m"             target per lane as a Go duration
func Parse(value string) (domain.ParallelismSpec, error) {
	value = strings.TrimSpace(value)
	kind, arg, found := strings.Cut(value, ":")
	if !found {
		kind, arg = "count", value
	}

	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "count":
		n, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%w: lane count %q", ErrInvalidParallelism, arg)
		}
		return domain.CountDriven{Count: n}, nil
	case "weight", "time":
		ms, err := parseMillis(strings.TrimSpace(arg))
		if err != nil || ms < 1 {
			return nil, fmt.Errorf("%w: target duration %q", ErrInvalidParallelism, arg)
		}
		return domain.WeightDriven{TargetMs: ms}, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidParallelism, kind)
	}
}

func parseMillis(s string) (int64, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ms, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	return d.Milliseconds(), nil
}
