package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string
	TestPath    string

	// Output settings
	OutputJSONFile string
	OutputJSONDir  string

	// Splitting settings
	Parallelism     string
	ExcludeCategory string
	TestGlob        string
	Mode            string
	FilterSyntax    string

	// History settings
	HistorySource string
	ReportGlob    string
	MySQLDSN      string
	BuildID       string

	// Lane execution settings
	Command   []string
	SkipEmpty bool

	// Lane preparation settings
	PrepareCommand []string
	LaneDatabases  bool

	// Paths to ignore when scanning
	PathsToIgnore []string

	// Command flags
	Flags Flags
}

// Flags holds command-line flags
type Flags struct {
	ConfigFile      string
	Lanes           int
	Target          string
	ExcludeCategory string
	TestPath        string
	TestGlob        string
	NameFilter      string
	History         string
	Mode            string
	Syntax          string
	OutDir          string
	JSON            bool
	FailFast        bool
	Prepare         bool
	Verbose         bool
}

// FileConfig models pts.yaml.
type FileConfig struct {
	Parallelism     string   `yaml:"parallelism"`
	ExcludeCategory string   `yaml:"exclude_category"`
	TestPath        string   `yaml:"test_path"`
	TestGlob        string   `yaml:"test_glob"`
	Mode            string   `yaml:"mode"`
	FilterSyntax    string   `yaml:"filter_syntax"`
	History         string   `yaml:"history"`
	ReportGlob      string   `yaml:"report_glob"`
	Command         []string `yaml:"command"`
	SkipEmpty       bool     `yaml:"skip_empty"`
	PrepareCommand  []string `yaml:"prepare_command"`
	LaneDatabases   bool     `yaml:"lane_databases"`
	Ignore          []string `yaml:"ignore"`
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath:    DefaultProjectPath,
		TestPath:       DefaultTestPath,
		OutputJSONFile: DefaultOutputJSONFile,
		OutputJSONDir:  DefaultOutputJSONDir,
		Parallelism:    DefaultParallelism,
		TestGlob:       DefaultTestGlob,
		HistorySource:  DefaultHistorySource,
		FilterSyntax:   DefaultFilterSyntax,
	}
	// Copy default paths to ignore
	cfg.PathsToIgnore = make([]string, len(DefaultPathsToIgnore))
	copy(cfg.PathsToIgnore, DefaultPathsToIgnore)
	return cfg
}

// Load creates a config from defaults, the project file and the environment,
// then applies flags on top.
func Load(flags Flags) (*Config, error) {
	cfg := New()
	if err := cfg.Apply(flags); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Apply reads the project file and .env, then applies flag overrides.
func (c *Config) Apply(flags Flags) error {
	c.Flags = flags

	path := c.configFilePath()
	fc, err := readFile(path)
	if err != nil {
		return err
	}
	if fc != nil {
		c.merge(fc)
	}

	c.loadEnv()

	// Apply flag overrides
	if flags.Lanes > 0 {
		c.Parallelism = fmt.Sprintf("count:%d", flags.Lanes)
	}
	if flags.Target != "" {
		c.Parallelism = "weight:" + flags.Target
	}
	if flags.ExcludeCategory != "" {
		c.ExcludeCategory = flags.ExcludeCategory
	}
	if flags.TestGlob != "" {
		c.TestGlob = flags.TestGlob
	}
	if flags.History != "" {
		c.HistorySource = flags.History
	}
	if flags.Mode != "" {
		c.Mode = flags.Mode
	}
	if flags.Syntax != "" {
		c.FilterSyntax = flags.Syntax
	}

	return c.validate()
}

func readFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	// Unknown keys are errors
	var fc FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, path, err)
	}
	return &fc, nil
}

func (c *Config) merge(fc *FileConfig) {
	if fc.Parallelism != "" {
		c.Parallelism = fc.Parallelism
	}
	if fc.ExcludeCategory != "" {
		c.ExcludeCategory = fc.ExcludeCategory
	}
	if fc.TestPath != "" {
		c.TestPath = fc.TestPath
	}
	if fc.TestGlob != "" {
		c.TestGlob = fc.TestGlob
	}
	if fc.Mode != "" {
		c.Mode = fc.Mode
	}
	if fc.FilterSyntax != "" {
		c.FilterSyntax = fc.FilterSyntax
	}
	if fc.History != "" {
		c.HistorySource = fc.History
	}
	if fc.ReportGlob != "" {
		c.ReportGlob = fc.ReportGlob
	}
	if len(fc.Command) > 0 {
		c.Command = fc.Command
	}
	if fc.SkipEmpty {
		c.SkipEmpty = true
	}
	if len(fc.PrepareCommand) > 0 {
		c.PrepareCommand = fc.PrepareCommand
	}
	if fc.LaneDatabases {
		c.LaneDatabases = true
	}
	if len(fc.Ignore) > 0 {
		c.PathsToIgnore = append(c.PathsToIgnore, fc.Ignore...)
	}
}

// loadEnv reads the project .env (if any) and picks up PTS_* variables.
func (c *Config) loadEnv() {
	envPath := filepath.Join(c.ProjectPath, ".env")
	if err := godotenv.Load(envPath); err != nil {
		// .env file might not exist, that's okay - use environment variables
		_ = err
	}

	if dsn := os.Getenv("PTS_MYSQL_DSN"); dsn != "" {
		c.MySQLDSN = dsn
	} else if os.Getenv("DB_HOST") != "" {
		c.MySQLDSN = dsnFromEnv()
	}
	if id := os.Getenv("PTS_BUILD_ID"); id != "" {
		c.BuildID = id
	}
}

// dsnFromEnv builds a MySQL DSN from the Laravel-style DB_* variables.
func dsnFromEnv() string {
	get := func(key, def string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return def
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		get("DB_USERNAME", "root"),
		os.Getenv("DB_PASSWORD"),
		get("DB_HOST", "127.0.0.1"),
		get("DB_PORT", "3306"),
		get("PTS_MYSQL_DATABASE", "pts"),
	)
}

func (c *Config) validate() error {
	switch strings.ToLower(c.HistorySource) {
	case HistoryNone, HistoryJSON, HistoryJUnit, HistoryMySQL:
		c.HistorySource = strings.ToLower(c.HistorySource)
	default:
		return fmt.Errorf("%w: unknown history source %q", ErrInvalidConfig, c.HistorySource)
	}
	if c.HistorySource == HistoryJUnit && c.ReportGlob == "" {
		return fmt.Errorf("%w: history %q needs report_glob", ErrInvalidConfig, HistoryJUnit)
	}
	if c.LaneDatabases && c.MySQLDSN == "" {
		return fmt.Errorf("%w: lane_databases needs PTS_MYSQL_DSN or DB_HOST", ErrInvalidConfig)
	}
	if c.HistorySource == HistoryMySQL && c.MySQLDSN == "" {
		return fmt.Errorf("%w: history %q needs PTS_MYSQL_DSN or DB_HOST", ErrInvalidConfig, HistoryMySQL)
	}
	if c.TestGlob != "" {
		if _, err := filepath.Match(c.TestGlob, ""); err != nil {
			return fmt.Errorf("%w: test_glob %q: %v", ErrInvalidConfig, c.TestGlob, err)
		}
	}
	return nil
}

func (c *Config) configFilePath() string {
	if c.Flags.ConfigFile != "" {
		return c.Flags.ConfigFile
	}
	return filepath.Join(c.ProjectPath, DefaultConfigFile)
}

// GetTestPath returns the test path, using flag if provided
func (c *Config) GetTestPath() string {
	if c.Flags.TestPath != "" {
		// If TestPath is provided, make it relative to ProjectPath if it's not absolute
		if filepath.IsAbs(c.Flags.TestPath) {
			return c.Flags.TestPath
		}
		return filepath.Join(c.ProjectPath, c.Flags.TestPath)
	}

	// Default: combine project path and test path
	return filepath.Join(c.ProjectPath, c.TestPath)
}

// GetOutputPath returns the full path to the output JSON file.
// Resolves to an absolute path so run and split always read/write the same file regardless of cwd.
func (c *Config) GetOutputPath() string {
	p := filepath.Join(c.ProjectPath, c.OutputJSONDir, c.OutputJSONFile)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// GetFilterDir returns the directory lane filter files are written to
func (c *Config) GetFilterDir() string {
	if c.Flags.OutDir != "" {
		return c.Flags.OutDir
	}
	return filepath.Join(c.ProjectPath, c.OutputJSONDir, DefaultFilterDir)
}

// GetReportGlob returns the JUnit report glob relative to the project
func (c *Config) GetReportGlob() string {
	if c.ReportGlob == "" || filepath.IsAbs(c.ReportGlob) {
		return c.ReportGlob
	}
	return filepath.Join(c.ProjectPath, c.ReportGlob)
}

// GetDatabaseName returns the database name for a lane
func (c *Config) GetDatabaseName(lane int) string {
	prefix := os.Getenv("DB_DATABASE_PREFIX")
	if prefix == "" {
		prefix = "testing"
	}
	return fmt.Sprintf("%s_%d", prefix, lane)
}
