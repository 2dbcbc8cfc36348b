package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"wtp/internal/config"
	"wtp/internal/storage"
	"wtp/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config    *config.Config
	planner   *Planner
	formatter *ui.Formatter
	storage   storage.Storage
}

// NewListCommand creates a new ListCommand
func NewListCommand(
	cfg *config.Config,
	planner *Planner,
	formatter *ui.Formatter,
	st storage.Storage,
) *ListCommand {
	return &ListCommand{
		config:    cfg,
		planner:   planner,
		formatter: formatter,
		storage:   st,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	p, err := lc.planner.Build(cmd.Context())
	if err != nil {
		return err
	}

	files := p.Files
	if lc.config.Flags.Group != "" {
		files = p.GroupFiles()
	}
	if len(files) == 0 {
		color.Yellow("No test files found")
		return nil
	}

	lc.formatter.PrintFileList(files, lc.config.Flags.TestCases, lc.failedPaths())
	return nil
}

// failedPaths marks files with unresolved failures in the last run; no run yet means no marks
func (lc *ListCommand) failedPaths() map[string]struct{} {
	output, err := lc.storage.Load()
	if err != nil {
		return nil
	}
	failed := make(map[string]struct{})
	for _, f := range output.Details {
		if !f.Resolved {
			failed[f.FilePath] = struct{}{}
		}
	}
	return failed
}
