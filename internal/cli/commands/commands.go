package commands

import (
	"pts/internal/cli"
	"pts/internal/config"
	"pts/internal/parser"
	"pts/internal/ui"

	"github.com/spf13/cobra"
)

// Commands holds all CLI commands
type Commands struct {
	Env     *Env
	Split   *SplitCommand
	Run     *RunCommand
	List    *ListCommand
	View    *ViewCommand
	Faills  *FaillsCommand
	Prepare *PrepareCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config) *Commands {
	env := NewEnv(cfg)
	formatter := ui.NewFormatter(cfg)
	junitParser := parser.NewJUnitParser()
	prepare := NewPrepareCommand(env)

	return &Commands{
		Env:     env,
		Split:   NewSplitCommand(env, formatter),
		Run:     NewRunCommand(env, junitParser, formatter, prepare),
		List:    NewListCommand(env, formatter),
		View:    NewViewCommand(env),
		Faills:  NewFaillsCommand(env),
		Prepare: prepare,
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags) {
	// Config is loaded once flags are parsed, for every subcommand
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return c.Env.Setup(flags.ToConfigFlags())
	}
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.ConfigFile, "config", "", "Path to the project file (default <project>/"+config.DefaultConfigFile+")")
	pf.IntVarP(&flags.Lanes, "lanes", "n", 0, "Number of lanes, overrides parallelism from the project file")
	pf.StringVar(&flags.Target, "target", "", "Target lane duration, in ms or as a Go duration (e.g. '15m'); derives the lane count")
	pf.StringVar(&flags.ExcludeCategory, "exclude-category", "", "Keep units whose suite path contains this marker out of all lanes (e.g. 'bdd')")
	pf.StringVarP(&flags.TestPath, "test-path", "t", "", "Path to the folder where test detection should start")
	pf.StringVar(&flags.TestGlob, "glob", "", "Base name pattern of test files (default '"+config.DefaultTestGlob+"')")
	pf.StringVarP(&flags.NameFilter, "filter", "f", "", "Filter tests by name pattern (supports wildcards, comma separated, e.g. '*UserTest*,Payment*')")
	pf.StringVar(&flags.History, "history", "", "Where durations of the previous run come from: none, json, junit or mysql")
	pf.StringVar(&flags.Mode, "mode", "", "Filter encoding: inclusions (lane 0 excludes the rest) or exclusions (every lane excludes the rest)")
	pf.StringVar(&flags.Syntax, "syntax", "", "Filter file syntax: plain, java or phpunit")
	pf.BoolVarP(&flags.Verbose, "verbose", "v", false, "Log split and lane diagnostics to stderr")

	// Split command
	splitCmd := &cobra.Command{
		Use:   "split",
		Short: "Split tests into balanced lanes",
		Long:  "Assign discovered tests to lanes using durations of the previous successful run and write one filter file per lane",
		RunE:  c.Split.Execute,
	}
	splitCmd.Flags().BoolVar(&flags.JSON, "json", false, "Print the lane filters as JSON")
	splitCmd.Flags().StringVar(&flags.OutDir, "out-dir", "", "Directory for lane filter files (default <project>/storage/lanes)")
	rootCmd.AddCommand(splitCmd)

	// Run command
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run tests in balanced parallel lanes",
		Long:  "Split tests into lanes, run the configured command once per lane and record durations for the next split",
		RunE:  c.Run.Execute,
	}
	runCmd.Flags().BoolVar(&flags.FailFast, "fail-fast", false, "Stop remaining lanes on the first failing lane")
	runCmd.Flags().BoolVarP(&flags.Prepare, "prepare", "p", false, "Prepare lanes (databases, prepare_command) before running")
	runCmd.Flags().StringVar(&flags.OutDir, "out-dir", "", "Directory for lane filter files (default <project>/storage/lanes)")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered tests",
		Long:  "Scan and list test units with the duration the next split will use",
		RunE:  c.List.Execute,
	}
	rootCmd.AddCommand(listCmd)

	// View command
	viewCmd := &cobra.Command{
		Use:   "view",
		Short: "Browse the lane plan interactively",
		Long:  "Display lanes, their units and filters in an interactive viewer",
		RunE:  c.View.Execute,
	}
	rootCmd.AddCommand(viewCmd)

	// Prepare command
	prepareCmd := &cobra.Command{
		Use:   "prepare",
		Short: "Prepare every lane before a run",
		Long:  "Create missing lane databases and run prepare_command once per lane, in parallel",
		RunE:  c.Prepare.Execute,
	}
	rootCmd.AddCommand(prepareCmd)

	// Faills command
	faillsCmd := &cobra.Command{
		Use:     "faills",
		Aliases: []string{"failures"},
		Short:   "View test failures interactively",
		Long:    "Display test failures from the last run in an interactive viewer",
		RunE:    c.Faills.Execute,
	}
	rootCmd.AddCommand(faillsCmd)
}
