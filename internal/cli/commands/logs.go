package commands

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	"wtp/internal/plan"
)

// LogsCommand filters console output read from stdin through the benign-log set
type LogsCommand struct {
	filter *plan.LogFilter
}

// NewLogsCommand creates a new LogsCommand
func NewLogsCommand(filter *plan.LogFilter) *LogsCommand {
	return &LogsCommand{filter: filter}
}

// Execute prints every input line that is not a known-benign message
func (lc *LogsCommand) Execute(cmd *cobra.Command, args []string) error {
	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	out := cmd.OutOrStdout()
	for scanner.Scan() {
		line := scanner.Text()
		if lc.filter.Suppress(line) {
			continue
		}
		fmt.Fprintln(out, line)
	}
	return scanner.Err()
}
