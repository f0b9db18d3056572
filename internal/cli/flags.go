package cli

import "pts/internal/config"

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

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		ConfigFile:      f.ConfigFile,
		Lanes:           f.Lanes,
		Target:          f.Target,
		ExcludeCategory: f.ExcludeCategory,
		TestPath:        f.TestPath,
		TestGlob:        f.TestGlob,
		NameFilter:      f.NameFilter,
		History:         f.History,
		Mode:            f.Mode,
		Syntax:          f.Syntax,
		OutDir:          f.OutDir,
		JSON:            f.JSON,
		FailFast:        f.FailFast,
		Prepare:         f.Prepare,
		Verbose:         f.Verbose,
	}
}
