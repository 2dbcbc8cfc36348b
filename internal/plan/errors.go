package plan

import "fmt"

// ConfigurationError reports a group definition that cannot be planned.
// It is fatal: no unit of the plan may run.
type ConfigurationError struct {
	Group  string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("group %q: %s", e.Group, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func configError(group, reason string, err error) *ConfigurationError {
	return &ConfigurationError{Group: group, Reason: reason, Err: err}
}
