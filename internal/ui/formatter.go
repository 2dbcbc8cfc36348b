package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"wtp/internal/config"
	"wtp/internal/discovery"
	"wtp/internal/domain"
	"wtp/internal/plan"
)

// Formatter formats and displays output
type Formatter struct {
	config *config.Config
	parser *discovery.Parser
	out    io.Writer
}

// NewFormatter creates a new Formatter writing to color.Output
func NewFormatter(cfg *config.Config, parser *discovery.Parser) *Formatter {
	return &Formatter{
		config: cfg,
		parser: parser,
		out:    color.Output,
	}
}

// SetOutput redirects everything the formatter prints
func (f *Formatter) SetOutput(w io.Writer) {
	f.out = w
}

var (
	cyan   = color.New(color.FgCyan)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	white  = color.New(color.FgWhite)
)

func (f *Formatter) line(c *color.Color, format string, args ...any) {
	c.Fprintf(f.out, format+"\n", args...)
}

// PrintPlan prints one row per (group, browser) with its harness and file count
func (f *Formatter) PrintPlan(units []domain.ExecutionUnit, overlaps []plan.Overlap) {
	type row struct {
		group, browser, harness string
		files                   int
	}
	var rows []row
	index := make(map[string]int)
	for _, u := range units {
		key := u.Group + "\x00" + string(u.Browser)
		i, ok := index[key]
		if !ok {
			rows = append(rows, row{group: u.Group, browser: string(u.Browser), harness: u.Harness.Name})
			i = len(rows) - 1
			index[key] = i
		}
		rows[i].files++
	}

	f.line(cyan, "Execution plan")
	tw := tabwriter.NewWriter(f.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "GROUP\tBROWSER\tHARNESS\tFILES")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", r.group, r.browser, r.harness, r.files)
	}
	tw.Flush()
	fmt.Fprintln(f.out)

	if len(units) == 0 {
		f.line(yellow, "No execution units: no file matched any group")
	} else {
		f.line(green, "%d execution unit(s) in %d group/browser slot(s)", len(units), len(rows))
	}
	for _, o := range overlaps {
		f.line(yellow, "warning: %s (runs in the first group only)", o)
	}
}

// PrintPlanJSON prints the units as JSON
func (f *Formatter) PrintPlanJSON(units []domain.ExecutionUnit) error {
	type jsonUnit struct {
		Group   string `json:"group"`
		File    string `json:"file"`
		Browser string `json:"browser"`
		Harness string `json:"harness"`
		Timeout string `json:"timeout"`
	}
	out := make([]jsonUnit, 0, len(units))
	for _, u := range units {
		out = append(out, jsonUnit{
			Group:   u.Group,
			File:    u.File,
			Browser: string(u.Browser),
			Harness: u.Harness.Name,
			Timeout: u.Timeout.String(),
		})
	}
	enc := json.NewEncoder(f.out)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// PrintFileList prints a list of test files, optionally with test cases.
// failedPaths is optional; files in this set are marked with [F] in red (from last run).
func (f *Formatter) PrintFileList(files []string, showTestCases bool, failedPaths map[string]struct{}) {
	if showTestCases {
		f.line(green, "Found %d test file(s) with test cases:\n", len(files))
	} else {
		f.line(green, "Found %d test file(s):\n", len(files))
	}

	for i, file := range files {
		isLastFile := i == len(files)-1
		marker := ""
		if _, ok := failedPaths[file]; ok {
			marker = " " + color.RedString("[F]")
		}
		if isLastFile {
			f.line(cyan, "└── %s%s", file, marker)
		} else {
			f.line(cyan, "├── %s%s", file, marker)
		}
		if !showTestCases {
			continue
		}

		branch := "│   "
		if isLastFile {
			branch = "    "
		}
		cases, err := f.parser.FindTestCases(filepath.Join(f.config.ProjectPath, file))
		switch {
		case err != nil:
			fmt.Fprintf(f.out, "%s└── %s\n", branch, red.Sprintf("error reading test file: %v", err))
		case len(cases) == 0:
			fmt.Fprintf(f.out, "%s└── %s\n", branch, red.Sprint("(no test cases found)"))
		default:
			for j, name := range cases {
				connector := "├── "
				if j == len(cases)-1 {
					connector = "└── "
				}
				fmt.Fprintf(f.out, "%s%s%s\n", branch, connector, yellow.Sprint(name))
			}
		}
		if !isLastFile {
			fmt.Fprintln(f.out)
		}
	}
}

// CountTestCases returns the total number of test cases across the given files
func (f *Formatter) CountTestCases(files []string) (int, error) {
	var total int
	for _, file := range files {
		cases, err := f.parser.FindTestCases(filepath.Join(f.config.ProjectPath, file))
		if err != nil {
			return 0, err
		}
		total += len(cases)
	}
	return total, nil
}

const (
	tableTop = "┌─────────────────────────────────┬─────────────────────────────┐"
	tableSep = "├─────────────────────────────────┼─────────────────────────────┤"
	tableEnd = "└─────────────────────────────────┴─────────────────────────────┘"
)

// PrintMetaStats displays the statistics of a run followed by its failure tree
func (f *Formatter) PrintMetaStats(output *domain.RunOutput) {
	meta := output.Meta

	fmt.Fprintln(f.out)
	f.line(cyan, "╔═══════════════════════════════════════════════════════════════╗")
	f.line(cyan, "║                  Unit Execution Statistics                    ║")
	f.line(cyan, "╚═══════════════════════════════════════════════════════════════╝\n")

	rows := []struct {
		label string
		c     *color.Color
		value string
	}{
		{"Total Units", white, fmt.Sprint(meta.TotalUnits)},
		{"Passed Units", green, fmt.Sprint(meta.PassedUnits)},
		{"Failed Units", red, fmt.Sprint(meta.FailedUnits)},
		{"Timed Out Units", red, fmt.Sprint(meta.TimedOutUnits)},
		{"Failed Test Cases", red, fmt.Sprint(meta.FailedCases)},
		{"Duration", white, fmt.Sprintf("%.2fs", meta.DurationSeconds)},
		{"Concurrent Browsers", white, fmt.Sprint(meta.Concurrency)},
		{"Timestamp", white, meta.Timestamp},
	}
	fmt.Fprintln(f.out, tableTop)
	for i, r := range rows {
		if i > 0 {
			fmt.Fprintln(f.out, tableSep)
		}
		fmt.Fprintf(f.out, "│ %-31s │ ", r.label)
		f.line(r.c, "%-27s │", r.value)
	}
	fmt.Fprintln(f.out, tableEnd)

	fmt.Fprintln(f.out)
	if meta.FailedUnits == 0 {
		f.line(green, "✓ All units passed!")
		return
	}
	f.line(red, "✗ %d unit(s) failed with %d failure(s)", meta.FailedUnits, meta.FailedCases)
	fmt.Fprintln(f.out)
	f.printFailureTree(output.Details)
}

// TreeNode represents a node in the file tree structure
type TreeNode struct {
	Name     string
	Children map[string]*TreeNode
	Failures []domain.UnitFailure
	IsFile   bool
}

// printFailureTree prints failures grouped under their directories and files
func (f *Formatter) printFailureTree(failures []domain.UnitFailure) {
	if len(failures) == 0 {
		return
	}

	root := &TreeNode{Children: make(map[string]*TreeNode)}
	for _, failure := range failures {
		parts := strings.Split(strings.TrimPrefix(failure.FilePath, "./"), "/")
		current := root
		for i, part := range parts {
			if part == "" {
				continue
			}
			if current.Children[part] == nil {
				current.Children[part] = &TreeNode{
					Name:     part,
					Children: make(map[string]*TreeNode),
					IsFile:   i == len(parts)-1,
				}
			}
			current = current.Children[part]
		}
		current.Failures = append(current.Failures, failure)
	}

	f.printTreeNode(root, "")
}

func (f *Formatter) printTreeNode(node *TreeNode, prefix string) {
	keys := make([]string, 0, len(node.Children))
	for key := range node.Children {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for i, key := range keys {
		child := node.Children[key]
		last := i == len(keys)-1

		connector, nextPrefix := "├── ", prefix+"│   "
		if last {
			connector, nextPrefix = "└── ", prefix+"    "
		}

		if child.IsFile {
			f.line(yellow, "%s%s%s", prefix, connector, child.Name)
			for j, failure := range child.Failures {
				caseConnector := "├── "
				if j == len(child.Failures)-1 && len(child.Children) == 0 {
					caseConnector = "└── "
				}
				f.line(red, "%s%s[%s] %s", nextPrefix, caseConnector, failure.Browser, firstLine(failure.Message))
			}
		} else {
			f.line(cyan, "%s%s%s", prefix, connector, child.Name)
		}
		f.printTreeNode(child, nextPrefix)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
