package history

import (
	"context"
	"fmt"

	"pts/internal/domain"
	"pts/internal/parser"
)

// JUnitProvider builds history from JUnit XML reports left by the previous
// build, e.g. an archived target/surefire-reports directory.
type JUnitProvider struct {
	glob   string
	parser *parser.JUnitParser
}

// NewJUnitProvider reads every report matching glob.
func NewJUnitProvider(glob string, p *parser.JUnitParser) *JUnitProvider {
	if p == nil {
		p = parser.NewJUnitParser()
	}
	return &JUnitProvider{glob: glob, parser: p}
}

// Previous implements Provider. The history counts as successful when no
// test case failed or errored.
func (p *JUnitProvider) Previous(ctx context.Context) (*domain.History, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	report, files, err := p.parser.ParseGlob(p.glob)
	if err != nil {
		return nil, fmt.Errorf("read junit history: %w", err)
	}
	if files == 0 || len(report.Records) == 0 {
		return nil, ErrNoHistory
	}
	return &domain.History{
		Source:  p.glob,
		Success: report.Failed == 0,
		Records: report.Records,
	}, nil
}
