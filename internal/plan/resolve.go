// Package plan expands group definitions into execution units and decides
// which browser log lines are surfaced.
package plan

import (
	"errors"
	"fmt"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"wtp/internal/domain"
)

// Defaults are applied to groups that do not override them
type Defaults struct {
	Browsers []domain.BrowserTarget
	Harness  domain.Harness
	Timeout  time.Duration
}

// ResolveGroups expands groups into execution units for the given files.
//
// Groups are processed in input order and a file is claimed by the first group
// whose pattern selects it; a later group matching the same file does not run it
// again (see Overlaps). Units come out grouped, then by browser, then by file in
// the order files were given. Every pattern is validated before any unit is built.
func ResolveGroups(groups []domain.TestGroup, files []string, defaults Defaults) ([]domain.ExecutionUnit, error) {
	if err := validateGroups(groups); err != nil {
		return nil, err
	}

	claimed := make(map[string]bool, len(files))
	var units []domain.ExecutionUnit

	for _, g := range groups {
		matched, err := matchGroup(g, files)
		if err != nil {
			return nil, err
		}

		var owned []string
		for _, f := range matched {
			if claimed[f] {
				continue
			}
			claimed[f] = true
			owned = append(owned, f)
		}

		harness := defaults.Harness
		if g.Harness != nil {
			harness = *g.Harness
		}

		for _, b := range resolveBrowsers(g, defaults.Browsers) {
			for _, f := range owned {
				units = append(units, domain.ExecutionUnit{
					Index:   len(units),
					Group:   g.Name,
					File:    f,
					Browser: b,
					Harness: harness,
					Timeout: defaults.Timeout,
				})
			}
		}
	}

	return units, nil
}

// resolveBrowsers returns a copy of the browser set a group runs in
func resolveBrowsers(g domain.TestGroup, defaults []domain.BrowserTarget) []domain.BrowserTarget {
	src := defaults
	if len(g.Browsers) > 0 {
		src = g.Browsers
	}
	out := make([]domain.BrowserTarget, len(src))
	copy(out, src)
	return out
}

func validateGroups(groups []domain.TestGroup) error {
	seen := make(map[string]bool, len(groups))
	for _, g := range groups {
		if g.Name == "" {
			return configError(g.Name, "group name is required", nil)
		}
		if seen[g.Name] {
			return configError(g.Name, "duplicate group name", nil)
		}
		seen[g.Name] = true

		if g.Files == "" {
			return configError(g.Name, "files pattern is required", nil)
		}
		if !doublestar.ValidatePattern(g.Files) {
			return configError(g.Name, fmt.Sprintf("invalid files pattern %q", g.Files), doublestar.ErrBadPattern)
		}
		for _, ex := range g.Exclude {
			if !doublestar.ValidatePattern(ex) {
				return configError(g.Name, fmt.Sprintf("invalid exclude pattern %q", ex), doublestar.ErrBadPattern)
			}
		}
		for _, b := range g.Browsers {
			if !b.Valid() {
				return configError(g.Name, fmt.Sprintf("unknown browser %q", b), nil)
			}
		}
	}
	return nil
}

// matchGroup returns the files selected by g, in input order
func matchGroup(g domain.TestGroup, files []string) ([]string, error) {
	var matched []string
	for _, f := range files {
		ok, err := doublestar.Match(g.Files, f)
		if err != nil {
			return nil, configError(g.Name, fmt.Sprintf("invalid files pattern %q", g.Files), err)
		}
		if !ok {
			continue
		}
		excluded, err := isExcluded(g, f)
		if err != nil {
			return nil, err
		}
		if !excluded {
			matched = append(matched, f)
		}
	}
	return matched, nil
}

func isExcluded(g domain.TestGroup, file string) (bool, error) {
	for _, ex := range g.Exclude {
		ok, err := doublestar.Match(ex, file)
		if err != nil {
			return false, configError(g.Name, fmt.Sprintf("invalid exclude pattern %q", ex), err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// IsConfigurationError reports whether err is, or wraps, a ConfigurationError
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
