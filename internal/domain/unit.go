package domain

import (
	"fmt"
	"time"
)

// ExecutionUnit is one runnable (file, browser) pair of a group.
// Units are independent: none refers to another's outcome.
type ExecutionUnit struct {
	Index   int           // position in the resolved plan
	Group   string        // owning group name
	File    string        // slash-separated path relative to the project root
	Browser BrowserTarget // engine to run in
	Harness Harness       // host document
	Timeout time.Duration // per-unit deadline
}

// Key identifies a unit independently of its plan position
func (u ExecutionUnit) Key() string {
	return fmt.Sprintf("%s:%s:%s", u.Group, u.Browser, u.File)
}
