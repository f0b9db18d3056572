package config

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultTestPath is the default test path
	DefaultTestPath = "."
	// DefaultConfigFile is the project configuration file, relative to the project path
	DefaultConfigFile = "pts.yaml"
	// DefaultOutputJSONFile is the default output JSON file name
	DefaultOutputJSONFile = "test-results.json"
	// DefaultOutputJSONDir is the default output directory
	DefaultOutputJSONDir = "storage"
	// DefaultFilterDir is where per-lane filter files are written, under the output dir
	DefaultFilterDir = "lanes"
	// DefaultParallelism is the default lane setting
	DefaultParallelism = "count:4"
	// DefaultTestGlob selects candidate unit files by base name
	DefaultTestGlob = "*Test.*"
	// DefaultHistorySource is where durations of the previous run come from
	DefaultHistorySource = HistoryJSON
	// DefaultFilterSyntax is the renderer used for lane filter files
	DefaultFilterSyntax = "plain"
)

// History sources
const (
	HistoryNone  = "none"
	HistoryJSON  = "json"
	HistoryJUnit = "junit"
	HistoryMySQL = "mysql"
)

// DefaultPathsToIgnore are the default directories to ignore when scanning for tests
var DefaultPathsToIgnore = []string{
	"vendor",
	"node_modules",
	"public",
	"storage",
	"bootstrap",
	"target",
	"build",
	"resources",
}
