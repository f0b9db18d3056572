package commands

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"pts/internal/config"
	"pts/internal/discovery"
	"pts/internal/domain"
	"pts/internal/history"
	"pts/internal/logging"
	"pts/internal/parallelism"
	"pts/internal/parser"
	"pts/internal/pattern"
	"pts/internal/split"
	"pts/internal/storage"
)

// Env builds the components commands share. Components depend on the
// project file, so they are built after flags are parsed.
type Env struct {
	config *config.Config
	logger logging.Logger
	logOut io.Writer
	mysql  *history.MySQLProvider
}

// NewEnv creates an Env over cfg
func NewEnv(cfg *config.Config) *Env {
	return &Env{config: cfg, logger: logging.NewNop(), logOut: os.Stderr}
}

// Setup loads the project configuration with flags applied
func (e *Env) Setup(flags config.Flags) error {
	if err := e.config.Apply(flags); err != nil {
		return err
	}
	e.logger = logging.NewText(e.logOut, flags.Verbose)
	return nil
}

// Close releases connections opened by the env
func (e *Env) Close() error {
	if e.mysql == nil {
		return nil
	}
	err := e.mysql.Close()
	e.mysql = nil
	return err
}

// Storage returns the run report storage
func (e *Env) Storage() storage.Storage {
	return storage.NewJSONStorage(e.config)
}

// Units discovers candidate units under the test path
func (e *Env) Units() ([]discovery.Unit, error) {
	scanner := discovery.NewScanner(e.config.PathsToIgnore, e.config.TestGlob)
	units := discovery.NewUnitScanner(scanner, discovery.NewFilter(), discovery.NewParser())
	return units.Discover(e.config.GetTestPath(), e.config.Flags.NameFilter)
}

// Renderer returns the configured filter syntax
func (e *Env) Renderer() (pattern.Renderer, error) {
	return pattern.NewRenderer(e.config.FilterSyntax)
}

// ProjectName identifies the project in shared history stores
func (e *Env) ProjectName() string {
	path := e.config.ProjectPath
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return filepath.Base(path)
}

// MySQL opens the MySQL history store once per env
func (e *Env) MySQL(ctx context.Context) (*history.MySQLProvider, error) {
	if e.mysql != nil {
		return e.mysql, nil
	}
	p, err := history.OpenMySQL(ctx, e.config.MySQLDSN, e.ProjectName())
	if err != nil {
		return nil, err
	}
	e.mysql = p
	return p, nil
}

// History returns the configured history provider. A store that cannot be
// reached degrades to no history.
func (e *Env) History(ctx context.Context) history.Provider {
	switch e.config.HistorySource {
	case config.HistoryNone:
		return history.None{}
	case config.HistoryJUnit:
		return history.NewJUnitProvider(e.config.GetReportGlob(), parser.NewJUnitParser())
	case config.HistoryMySQL:
		p, err := e.MySQL(ctx)
		if err != nil {
			e.logger.Warn("mysql history unavailable", "error", err)
			return history.None{}
		}
		return p
	default:
		return history.NewJSONProvider(e.Storage(), e.config.GetOutputPath())
	}
}

// Plan discovers units and splits them into lanes
func (e *Env) Plan(ctx context.Context) (*split.Result, error) {
	units, err := e.Units()
	if err != nil {
		return nil, err
	}
	req, err := e.request(units)
	if err != nil {
		return nil, err
	}
	return split.New(e.History(ctx), e.logger).Split(ctx, req)
}

func (e *Env) request(units []discovery.Unit) (split.Request, error) {
	spec, err := parallelism.Parse(e.config.Parallelism)
	if err != nil {
		return split.Request{}, err
	}
	mode, err := pattern.ParseMode(e.config.Mode)
	if err != nil {
		return split.Request{}, err
	}

	// Paths are relative to the test root so the category match never hits
	// the directory the project lives in.
	root := e.config.GetTestPath()
	files := make(map[string]string, len(units))
	for _, u := range units {
		path := u.File
		if rel, err := filepath.Rel(root, u.File); err == nil {
			path = filepath.ToSlash(rel)
		}
		files[u.ID] = path
	}
	return split.Request{
		Candidates:      discovery.IDs(units),
		Parallelism:     spec,
		ExcludeCategory: e.config.ExcludeCategory,
		SourceFiles:     files,
		Mode:            mode,
	}, nil
}

// Previous reads the history without failing: absence and read errors
// both yield nil.
func (e *Env) Previous(ctx context.Context) *domain.History {
	h, err := e.History(ctx).Previous(ctx)
	if err != nil {
		e.logger.Debug("no history", "error", err)
		return nil
	}
	return h
}
