// Package history supplies the durations measured by the previous run.
package history

import (
	"context"
	"errors"

	"pts/internal/domain"
)

// ErrNoHistory means no previous run is available. It is an expected
// condition: callers fall back to estimated durations.
var ErrNoHistory = errors.New("no previous run available")

// Provider reads the report of the previous run.
type Provider interface {
	Previous(ctx context.Context) (*domain.History, error)
}

// None is a Provider that never has history.
type None struct{}

// Previous implements Provider.
func (None) Previous(context.Context) (*domain.History, error) {
	return nil, ErrNoHistory
}

// Static serves a fixed history; useful for tests and dry runs.
type Static struct {
	History *domain.History
}

// Previous implements Provider.
func (s Static) Previous(context.Context) (*domain.History, error) {
	if s.History == nil {
		return nil, ErrNoHistory
	}
	return s.History, nil
}
