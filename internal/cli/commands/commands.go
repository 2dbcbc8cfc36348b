package commands

import (
	"io"

	"github.com/spf13/cobra"

	"wtp/internal/browser"
	"wtp/internal/cli"
	"wtp/internal/config"
	"wtp/internal/ctxlog"
	"wtp/internal/discovery"
	"wtp/internal/parser"
	"wtp/internal/plan"
	"wtp/internal/storage"
	"wtp/internal/ui"
)

// Commands holds all CLI commands. They are wired once the configuration is loaded.
type Commands struct {
	config *config.Config

	Plan   *PlanCommand
	List   *ListCommand
	Run    *RunCommand
	Faills *FaillsCommand
	Logs   *LogsCommand
}

// NewCommands creates the command set around cfg
func NewCommands(cfg *config.Config) *Commands {
	return &Commands{config: cfg}
}

// wire creates all commands with dependencies; formatted output goes to out
func (c *Commands) wire(out io.Writer) error {
	cfg := c.config

	st, err := storage.New(cfg)
	if err != nil {
		return err
	}

	scanner := discovery.NewScanner(cfg.ProjectPath, cfg.PathsToIgnore)
	filter := discovery.NewFilter()
	testCaseParser := discovery.NewParser()
	planner := NewPlanner(cfg, scanner, filter)
	logFilter := plan.NewLogFilter(cfg.BenignLogs)
	launchers := browser.NewRegistry(
		browser.NewChromium(browser.DefaultChromiumConfig()),
		browser.NewFirefox(browser.DefaultPlaywrightConfig()),
		browser.NewWebKit(browser.DefaultPlaywrightConfig()),
	)
	formatter := ui.NewFormatter(cfg, testCaseParser)
	formatter.SetOutput(out)
	errorViewer := ui.NewErrorViewer(st)

	c.Plan = NewPlanCommand(cfg, planner, formatter)
	c.List = NewListCommand(cfg, planner, formatter, st)
	c.Run = NewRunCommand(cfg, planner, launchers, logFilter, parser.NewStackParser(), st, formatter, errorViewer)
	c.Faills = NewFaillsCommand(st, errorViewer)
	c.Logs = NewLogsCommand(logFilter)
	return nil
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	rootCmd.PersistentFlags().StringVarP(&flags.ProjectPath, "project", "C", "", "Project directory (defaults to the current directory)")
	rootCmd.PersistentFlags().StringVar(&flags.ConfigFile, "config", "", "Config file (.yaml, .yml, .json or .hcl; defaults to wtp.yaml in the project)")
	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Log diagnostics to stderr")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(flags.ToConfigFlags())
		if err != nil {
			return err
		}
		*cfg = *loaded
		cmd.SetContext(ctxlog.WithLogger(cmd.Context(), ctxlog.New(cmd.ErrOrStderr(), flags.Verbose)))
		return c.wire(cmd.OutOrStdout())
	}

	// Plan command
	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the execution plan",
		Long:  "Resolve test groups against the discovered files and print the resulting execution units",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Plan.Execute(cmd, args)
		},
	}
	planCmd.Flags().BoolVar(&flags.JSON, "json", false, "Print units as JSON")
	planCmd.Flags().BoolVar(&flags.Strict, "strict", false, "Treat files matched by more than one group as a configuration error")
	planCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter test files by name pattern (supports wildcards, e.g., '*button.test.js' or '*menu*')")
	planCmd.Flags().StringVarP(&flags.Group, "group", "g", "", "Only plan units of this group")
	rootCmd.AddCommand(planCmd)

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered test files",
		Long:  "Scan and list test files without executing them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.List.Execute(cmd, args)
		},
	}
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter test files by name pattern (supports wildcards, e.g., '*button.test.js' or '*menu*')")
	listCmd.Flags().StringVarP(&flags.Group, "group", "g", "", "Only list files of this group")
	listCmd.Flags().BoolVarP(&flags.TestCases, "test-cases", "t", false, "List test cases of every file")
	rootCmd.AddCommand(listCmd)

	// Run command
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run browser tests in parallel",
		Long:  "Discover test files and execute every unit of the plan with a bounded number of concurrent browsers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Run.Execute(cmd, args)
		},
	}
	runCmd.Flags().IntVarP(&flags.Concurrency, "concurrency", "c", 0, "Number of concurrent browsers (default from config, 3)")
	runCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter test files by name pattern (supports wildcards, e.g., '*button.test.js' or '*menu*')")
	runCmd.Flags().StringVarP(&flags.Group, "group", "g", "", "Only run units of this group")
	runCmd.Flags().BoolVar(&flags.FailFast, "fail-fast", false, "Stop on first unit failure")
	runCmd.Flags().BoolVar(&flags.Strict, "strict", false, "Treat files matched by more than one group as a configuration error")
	runCmd.Flags().BoolVar(&flags.OpenFaills, "open-faills", false, "Open the faills viewer when the run finishes with failures")
	rootCmd.AddCommand(runCmd)

	// Faills command
	faillsCmd := &cobra.Command{
		Use:   "faills",
		Short: "View unit failures interactively",
		Long:  "Display failures from the last run in an interactive viewer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Faills.Execute(cmd, args)
		},
	}
	rootCmd.AddCommand(faillsCmd)

	// Logs command
	logsCmd := &cobra.Command{
		Use:   "logs",
		Short: "Filter known-benign console messages",
		Long:  "Read console lines from stdin and print the ones that are not in the benign log set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Logs.Execute(cmd, args)
		},
	}
	rootCmd.AddCommand(logsCmd)
}
