package cli

import "wtp/internal/config"

// Flags holds command-line flags
type Flags struct {
	ProjectPath string
	ConfigFile  string
	Verbose     bool
	Concurrency int
	NameFilter  string
	Group       string
	FailFast    bool
	OpenFaills  bool
	JSON        bool
	Strict      bool
	TestCases   bool
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		ProjectPath: f.ProjectPath,
		ConfigFile:  f.ConfigFile,
		Concurrency: f.Concurrency,
		NameFilter:  f.NameFilter,
		Group:       f.Group,
		FailFast:    f.FailFast,
		OpenFaills:  f.OpenFaills,
		JSON:        f.JSON,
		Strict:      f.Strict,
		TestCases:   f.TestCases,
		Verbose:     f.Verbose,
	}
}
