// Package browser drives browser engines for execution units.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"wtp/internal/domain"
)

// ErrUnsupportedBrowser is returned for engines no launcher is registered for
var ErrUnsupportedBrowser = errors.New("unsupported browser")

// Visit describes one page load: the harness URL of a unit and how to set up its context
type Visit struct {
	URL     string
	Profile domain.LaunchProfile
}

// Outcome is what the page reported once the test module settled
type Outcome struct {
	Failures []string
	Logs     [][]string // console entries, one slice of arguments per entry
}

// Launcher runs visits in one browser engine. Each Run gets its own isolated
// browser context; Run must honour ctx's deadline.
type Launcher interface {
	Name() domain.BrowserTarget
	Run(ctx context.Context, visit Visit) (Outcome, error)
	Close() error
}

// Registry maps engines to launchers
type Registry struct {
	mu        sync.Mutex
	launchers map[domain.BrowserTarget]Launcher
}

// NewRegistry creates a registry holding the given launchers
func NewRegistry(launchers ...Launcher) *Registry {
	r := &Registry{launchers: make(map[domain.BrowserTarget]Launcher)}
	for _, l := range launchers {
		r.launchers[l.Name()] = l
	}
	return r
}

// Get returns the launcher for b or ErrUnsupportedBrowser
func (r *Registry) Get(b domain.BrowserTarget) (Launcher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.launchers[b]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedBrowser, b)
	}
	return l, nil
}

// Close closes every launcher, returning the first error
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var first error
	for _, l := range r.launchers {
		if err := l.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
