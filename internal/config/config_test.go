package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfig_GetTestPath(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected string
	}{
		{
			name: "default path",
			config: &Config{
				ProjectPath: ".",
				TestPath:    ".",
				Flags:       Flags{},
			},
			expected: ".",
		},
		{
			name: "with test path flag",
			config: &Config{
				ProjectPath: "/project",
				TestPath:    ".",
				Flags: Flags{
					TestPath: "tests",
				},
			},
			expected: "/project/tests",
		},
		{
			name: "absolute test path",
			config: &Config{
				ProjectPath: "/project",
				TestPath:    ".",
				Flags: Flags{
					TestPath: "/absolute/path",
				},
			},
			expected: "/absolute/path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.config.GetTestPath()
			if result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestConfig_GetDatabaseName(t *testing.T) {
	t.Setenv("DB_DATABASE_PREFIX", "")
	cfg := New()

	t.Run("default database name", func(t *testing.T) {
		name := cfg.GetDatabaseName(1)
		expected := "testing_1"
		if name != expected {
			t.Errorf("expected %s, got %s", expected, name)
		}
	})

	t.Run("prefix from environment", func(t *testing.T) {
		t.Setenv("DB_DATABASE_PREFIX", "ci")
		if name := cfg.GetDatabaseName(3); name != "ci_3" {
			t.Errorf("expected ci_3, got %s", name)
		}
	})
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.ProjectPath != DefaultProjectPath {
		t.Errorf("expected ProjectPath %s, got %s", DefaultProjectPath, cfg.ProjectPath)
	}

	if cfg.Parallelism != DefaultParallelism {
		t.Errorf("expected Parallelism %s, got %s", DefaultParallelism, cfg.Parallelism)
	}

	if len(cfg.PathsToIgnore) != len(DefaultPathsToIgnore) {
		t.Errorf("expected %d paths to ignore, got %d", len(DefaultPathsToIgnore), len(cfg.PathsToIgnore))
	}
}

func newProject(t *testing.T, yaml string) *Config {
	t.Helper()
	dir := t.TempDir()
	if yaml != "" {
		if err := os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(yaml), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
	}
	cfg := New()
	cfg.ProjectPath = dir
	return cfg
}

func TestConfig_Apply(t *testing.T) {
	t.Setenv("PTS_MYSQL_DSN", "")
	t.Setenv("DB_HOST", "")

	t.Run("file values override defaults", func(t *testing.T) {
		cfg := newProject(t, `
parallelism: weight:10m
exclude_category: bdd
test_glob: "*Spec.java"
history: junit
report_glob: target/surefire-reports/*.xml
command: ["mvn", "test"]
skip_empty: true
ignore: [generated]
`)
		if err := cfg.Apply(Flags{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Parallelism != "weight:10m" || cfg.ExcludeCategory != "bdd" || cfg.TestGlob != "*Spec.java" {
			t.Errorf("file values not applied: %+v", cfg)
		}
		if cfg.HistorySource != HistoryJUnit || !cfg.SkipEmpty || len(cfg.Command) != 2 {
			t.Errorf("file values not applied: %+v", cfg)
		}
		if cfg.PathsToIgnore[len(cfg.PathsToIgnore)-1] != "generated" {
			t.Errorf("ignore list not extended: %v", cfg.PathsToIgnore)
		}
		if cfg.GetReportGlob() != filepath.Join(cfg.ProjectPath, "target/surefire-reports/*.xml") {
			t.Errorf("unexpected report glob %s", cfg.GetReportGlob())
		}
	})

	t.Run("flags override file", func(t *testing.T) {
		cfg := newProject(t, "parallelism: count:2\nexclude_category: bdd\n")
		if err := cfg.Apply(Flags{Lanes: 7, ExcludeCategory: "slow"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Parallelism != "count:7" || cfg.ExcludeCategory != "slow" {
			t.Errorf("flags not applied: %s %s", cfg.Parallelism, cfg.ExcludeCategory)
		}
	})

	t.Run("target flag selects weight", func(t *testing.T) {
		cfg := newProject(t, "")
		if err := cfg.Apply(Flags{Target: "5m"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Parallelism != "weight:5m" {
			t.Errorf("expected weight:5m, got %s", cfg.Parallelism)
		}
	})

	t.Run("junit history needs a glob", func(t *testing.T) {
		cfg := newProject(t, "history: junit\n")
		if err := cfg.Apply(Flags{}); err == nil {
			t.Error("expected validation error")
		}
	})

	t.Run("mysql history reads dsn from .env", func(t *testing.T) {
		cfg := newProject(t, "history: mysql\n")
		env := "DB_HOST=db.local\nDB_USERNAME=ci\nDB_PASSWORD=secret\n"
		if err := os.WriteFile(filepath.Join(cfg.ProjectPath, ".env"), []byte(env), 0644); err != nil {
			t.Fatal(err)
		}
		// godotenv never overrides variables that are already set, even empty.
		for _, key := range []string{"DB_HOST", "DB_USERNAME", "DB_PASSWORD", "DB_PORT", "PTS_MYSQL_DATABASE"} {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}

		if err := cfg.Apply(Flags{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		expected := "ci:secret@tcp(db.local:3306)/pts?parseTime=true"
		if cfg.MySQLDSN != expected {
			t.Errorf("expected %s, got %s", expected, cfg.MySQLDSN)
		}
	})

	t.Run("prepare settings", func(t *testing.T) {
		cfg := newProject(t, "prepare_command: [php, artisan, migrate:fresh, --force]\n")
		if err := cfg.Apply(Flags{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cfg.PrepareCommand) != 4 || cfg.PrepareCommand[2] != "migrate:fresh" {
			t.Errorf("prepare command not applied: %v", cfg.PrepareCommand)
		}
	})

	t.Run("lane databases need a server", func(t *testing.T) {
		cfg := newProject(t, "lane_databases: true\n")
		if err := cfg.Apply(Flags{}); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("unknown history source", func(t *testing.T) {
		cfg := newProject(t, "history: s3\n")
		if err := cfg.Apply(Flags{}); err == nil {
			t.Error("expected validation error")
		}
	})

	t.Run("broken yaml", func(t *testing.T) {
		cfg := newProject(t, "parallelism: [\n")
		if err := cfg.Apply(Flags{}); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("misspelled key", func(t *testing.T) {
		cfg := newProject(t, "exclude_categroy: bdd\n")
		err := cfg.Apply(Flags{})
		if !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("expected ErrInvalidConfig, got %v", err)
		}
		if !strings.Contains(err.Error(), "exclude_categroy") {
			t.Errorf("error does not name the key: %v", err)
		}
	})

	t.Run("empty file", func(t *testing.T) {
		cfg := newProject(t, "# nothing configured yet\n")
		if err := cfg.Apply(Flags{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Parallelism != DefaultParallelism {
			t.Errorf("expected default parallelism, got %s", cfg.Parallelism)
		}
	})
}
