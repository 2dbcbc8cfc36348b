package domain

// UnitFailure represents one failure raised while running a unit
type UnitFailure struct {
	Group      string   `json:"group"`
	Browser    string   `json:"browser"`
	FilePath   string   `json:"file_path"`
	Message    string   `json:"message"`
	StackTrace []string `json:"stack_trace"`
	File       string   `json:"file"`
	Line       int      `json:"line"`
	Logs       []string `json:"logs,omitempty"`
	Resolved   bool     `json:"resolved,omitempty"` // Track if failure is marked as resolved
}
