package commands

import (
	"github.com/spf13/cobra"

	"wtp/internal/config"
	"wtp/internal/ui"
)

// PlanCommand handles the plan command
type PlanCommand struct {
	config    *config.Config
	planner   *Planner
	formatter *ui.Formatter
}

// NewPlanCommand creates a new PlanCommand
func NewPlanCommand(cfg *config.Config, planner *Planner, formatter *ui.Formatter) *PlanCommand {
	return &PlanCommand{
		config:    cfg,
		planner:   planner,
		formatter: formatter,
	}
}

// Execute runs the command
func (pc *PlanCommand) Execute(cmd *cobra.Command, args []string) error {
	p, err := pc.planner.Build(cmd.Context())
	if err != nil {
		return err
	}

	if pc.config.Flags.JSON {
		return pc.formatter.PrintPlanJSON(p.Units)
	}
	pc.formatter.PrintPlan(p.Units, p.Overlaps)
	return nil
}
