package plan

// ShouldSuppressLog reports whether message is a known-benign log line.
// Only exact equality counts; anything else is surfaced.
func ShouldSuppressLog(message string, knownBenign map[string]struct{}) bool {
	_, ok := knownBenign[message]
	return ok
}

// LogFilter holds the benign log set for a run
type LogFilter struct {
	benign map[string]struct{}
}

// NewLogFilter builds a filter from a list of benign messages
func NewLogFilter(messages []string) *LogFilter {
	benign := make(map[string]struct{}, len(messages))
	for _, m := range messages {
		benign[m] = struct{}{}
	}
	return &LogFilter{benign: benign}
}

// Suppress reports whether a single message should be dropped
func (f *LogFilter) Suppress(message string) bool {
	if f == nil {
		return false
	}
	return ShouldSuppressLog(message, f.benign)
}

// Allow decides on one console entry made of several arguments.
// The entry is dropped if any of its arguments is benign.
func (f *LogFilter) Allow(args ...string) bool {
	for _, a := range args {
		if f.Suppress(a) {
			return false
		}
	}
	return true
}

// Len returns the number of benign messages
func (f *LogFilter) Len() int {
	if f == nil {
		return 0
	}
	return len(f.benign)
}
