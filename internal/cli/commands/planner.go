package commands

import (
	"context"
	"fmt"

	"wtp/internal/config"
	"wtp/internal/ctxlog"
	"wtp/internal/discovery"
	"wtp/internal/domain"
	"wtp/internal/plan"
)

// Plan is what a command works on: discovered files and the units derived from them
type Plan struct {
	Files    []string
	Units    []domain.ExecutionUnit
	Overlaps []plan.Overlap
}

// Planner discovers files and resolves them against the configured groups
type Planner struct {
	config  *config.Config
	scanner *discovery.Scanner
	filter  *discovery.Filter
}

// NewPlanner creates a new Planner
func NewPlanner(cfg *config.Config, scanner *discovery.Scanner, filter *discovery.Filter) *Planner {
	return &Planner{
		config:  cfg,
		scanner: scanner,
		filter:  filter,
	}
}

// Build scans the files root, applies the name filter and resolves groups.
// With --group only that group's units are kept; with --strict overlapping groups are an error.
func (p *Planner) Build(ctx context.Context) (*Plan, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := p.scanner.Scan(p.config.GetFilesRoot())
	if err != nil {
		return nil, err
	}
	files = p.filter.FilterByName(files, p.config.Flags.NameFilter)

	groups, err := p.config.TestGroups()
	if err != nil {
		return nil, err
	}

	units, err := plan.ResolveGroups(groups, files, p.config.PlanDefaults())
	if err != nil {
		return nil, err
	}

	overlaps, err := plan.Overlaps(groups, files)
	if err != nil {
		return nil, err
	}
	if p.config.Flags.Strict {
		if err := plan.OverlapError(overlaps); err != nil {
			return nil, err
		}
	}

	if name := p.config.Flags.Group; name != "" {
		units, err = onlyGroup(groups, units, name)
		if err != nil {
			return nil, err
		}
	}

	logger.Debug("plan built", "files", len(files), "groups", len(groups), "units", len(units), "overlaps", len(overlaps))
	return &Plan{Files: files, Units: units, Overlaps: overlaps}, nil
}

// GroupFiles returns the distinct files of a plan's units, in unit order
func (p *Plan) GroupFiles() []string {
	seen := make(map[string]bool)
	var files []string
	for _, u := range p.Units {
		if !seen[u.File] {
			seen[u.File] = true
			files = append(files, u.File)
		}
	}
	return files
}

// onlyGroup keeps the units of one group, renumbered from zero
func onlyGroup(groups []domain.TestGroup, units []domain.ExecutionUnit, name string) ([]domain.ExecutionUnit, error) {
	found := false
	for _, g := range groups {
		if g.Name == name {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("unknown group %q", name)
	}

	var kept []domain.ExecutionUnit
	for _, u := range units {
		if u.Group == name {
			u.Index = len(kept)
			kept = append(kept, u)
		}
	}
	return kept, nil
}
