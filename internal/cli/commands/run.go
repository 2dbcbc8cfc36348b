package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"wtp/internal/browser"
	"wtp/internal/config"
	"wtp/internal/ctxlog"
	"wtp/internal/domain"
	"wtp/internal/execution"
	"wtp/internal/parser"
	"wtp/internal/plan"
	"wtp/internal/server"
	"wtp/internal/storage"
	"wtp/internal/ui"
)

// ErrUnitsFailed is returned by run when at least one unit did not pass
var ErrUnitsFailed = errors.New("units failed")

// RunCommand handles the run command
type RunCommand struct {
	config    *config.Config
	planner   *Planner
	launchers *browser.Registry
	logFilter *plan.LogFilter
	parser    parser.Parser
	storage   storage.Storage
	formatter *ui.Formatter
	viewer    ui.Viewer

	// quiet disables the progress bar
	quiet bool
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(
	cfg *config.Config,
	planner *Planner,
	launchers *browser.Registry,
	logFilter *plan.LogFilter,
	parser parser.Parser,
	st storage.Storage,
	formatter *ui.Formatter,
	viewer ui.Viewer,
) *RunCommand {
	return &RunCommand{
		config:    cfg,
		planner:   planner,
		launchers: launchers,
		logFilter: logFilter,
		parser:    parser,
		storage:   st,
		formatter: formatter,
		viewer:    viewer,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := ctxlog.FromContext(ctx)
	defer rc.launchers.Close()

	p, err := rc.planner.Build(ctx)
	if err != nil {
		return err
	}
	for _, o := range p.Overlaps {
		color.Yellow("warning: %s (runs in the first group only)", o)
	}
	if len(p.Units) == 0 {
		color.Yellow("No units to execute")
		return nil
	}

	srvCfg := server.DefaultConfig(rc.config.ProjectPath)
	srvCfg.MimeTypes = rc.config.MimeTypes
	srv, err := server.New(srvCfg, p.Units)
	if err != nil {
		return err
	}
	addr, err := srv.Start()
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("harness server shutdown", "error", err)
		}
	}()
	logger.Debug("harness server listening", "addr", addr)

	runner := execution.NewRunner(rc.config, rc.launchers, rc.logFilter, func(u domain.ExecutionUnit) string {
		return server.HarnessURL(addr, u)
	})
	var progress execution.Progress
	if !rc.quiet {
		progress = ui.NewProgressBar(len(p.Units))
	}
	executor := execution.NewWorkerPool(rc.config, runner, execution.NewRoundRobinScheduler(), progress)

	results, duration, runErr := executor.Execute(ctx, p.Units)

	var failures []domain.UnitFailure
	for _, result := range results {
		if !result.Success {
			failures = append(failures, rc.parser.ParseFailure(result)...)
		}
	}

	if err := rc.storage.Save(results, failures, duration, rc.config.ConcurrentBrowsers); err != nil {
		return fmt.Errorf("failed to save unit results: %w", err)
	}
	output, err := rc.storage.Load()
	if err != nil {
		return err
	}
	rc.formatter.PrintMetaStats(output)

	if runErr != nil {
		return runErr
	}
	if output.Meta.FailedUnits == 0 {
		return nil
	}
	if rc.config.Flags.OpenFaills && rc.viewer != nil {
		if err := rc.viewer.View(output); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w: %d of %d", ErrUnitsFailed, output.Meta.FailedUnits, output.Meta.TotalUnits)
}
