package domain

import "time"

// UnitResult represents the outcome of executing one unit
type UnitResult struct {
	Unit     ExecutionUnit
	Success  bool
	TimedOut bool
	Failures []string      // failure messages reported by the page
	Logs     []string      // console lines that survived the benign-log filter
	Error    error         // launcher or navigation error, if any
	Duration time.Duration // Time taken to execute
}

// RunMeta contains metadata about a run
type RunMeta struct {
	TotalUnits      int     `json:"total_units"`
	PassedUnits     int     `json:"passed_units"`
	FailedUnits     int     `json:"failed_units"`
	TimedOutUnits   int     `json:"timed_out_units"`
	FailedCases     int     `json:"failed_cases"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	Concurrency     int     `json:"concurrency"`
	Timestamp       string  `json:"timestamp"`
}

// RunOutput is the complete output structure for a run
type RunOutput struct {
	Meta    RunMeta       `json:"meta"`
	Details []UnitFailure `json:"details"`
}
