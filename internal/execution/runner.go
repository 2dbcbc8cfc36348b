package execution

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"wtp/internal/browser"
	"wtp/internal/config"
	"wtp/internal/ctxlog"
	"wtp/internal/domain"
	"wtp/internal/plan"
)

// URLFunc returns the harness URL a unit is loaded from
type URLFunc func(unit domain.ExecutionUnit) string

// Runner executes a single unit in its browser
type Runner struct {
	config    *config.Config
	launchers *browser.Registry
	filter    *plan.LogFilter
	urlFor    URLFunc
}

// NewRunner creates a new Runner
func NewRunner(cfg *config.Config, launchers *browser.Registry, filter *plan.LogFilter, urlFor URLFunc) *Runner {
	return &Runner{
		config:    cfg,
		launchers: launchers,
		filter:    filter,
		urlFor:    urlFor,
	}
}

// Run loads the unit's harness and collects what the page reported.
// The unit's timeout applies to this unit only.
func (r *Runner) Run(ctx context.Context, unit domain.ExecutionUnit, workerID int) domain.UnitResult {
	start := time.Now()
	logger := ctxlog.FromContext(ctx).With("unit", unit.Key(), "worker", workerID)
	result := domain.UnitResult{Unit: unit}

	launcher, err := r.launchers.Get(unit.Browser)
	if err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		logger.Debug("no launcher", "error", err)
		return result
	}

	unitCtx := ctx
	if unit.Timeout > 0 {
		var cancel context.CancelFunc
		unitCtx, cancel = context.WithTimeout(ctx, unit.Timeout)
		defer cancel()
	}

	visit := browser.Visit{URL: r.urlFor(unit), Profile: r.config.Profile(unit.Browser)}
	logger.Debug("running unit", "url", visit.URL)
	out, err := launcher.Run(unitCtx, visit)

	result.Failures = out.Failures
	result.Logs = r.surface(out.Logs)
	switch {
	case err == nil:
	case ctx.Err() != nil:
		// the run was stopped (fail-fast, finish timeout or interrupt), not this unit
		result.Error = fmt.Errorf("unit cancelled: %w", ctx.Err())
	case errors.Is(unitCtx.Err(), context.DeadlineExceeded):
		result.TimedOut = true
		result.Error = fmt.Errorf("%w after %s", ErrUnitTimeout, unit.Timeout)
	default:
		result.Error = err
	}

	result.Success = result.Error == nil && len(result.Failures) == 0
	result.Duration = time.Since(start)
	logger.Debug("unit finished", "success", result.Success, "duration", result.Duration)
	return result
}

// surface drops benign console entries and flattens the rest to one line each
func (r *Runner) surface(entries [][]string) []string {
	var lines []string
	for _, args := range entries {
		if !r.filter.Allow(args...) {
			continue
		}
		lines = append(lines, strings.Join(args, " "))
	}
	return lines
}
