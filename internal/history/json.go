package history

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"pts/internal/domain"
	"pts/internal/storage"
)

// JSONProvider reads the report saved by the last `pts run`.
type JSONProvider struct {
	storage storage.Storage
	source  string
}

// NewJSONProvider creates a provider over st. source names the file in diagnostics.
func NewJSONProvider(st storage.Storage, source string) *JSONProvider {
	return &JSONProvider{storage: st, source: source}
}

// Previous implements Provider. A missing report file is ErrNoHistory.
func (p *JSONProvider) Previous(ctx context.Context) (*domain.History, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	report, err := p.storage.Load()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoHistory
		}
		return nil, fmt.Errorf("load previous run: %w", err)
	}
	if len(report.Units) == 0 {
		return nil, ErrNoHistory
	}
	return &domain.History{
		Source:  p.source,
		Success: report.Meta.Success,
		Records: report.Units,
	}, nil
}
