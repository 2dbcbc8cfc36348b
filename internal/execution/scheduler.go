package execution

import "wtp/internal/domain"

// Scheduler decides the order units are handed to workers
type Scheduler interface {
	Order(units []domain.ExecutionUnit) []domain.ExecutionUnit
}

// RoundRobinScheduler interleaves units across browsers so concurrent workers
// don't all land on the same engine
type RoundRobinScheduler struct{}

// NewRoundRobinScheduler creates a new RoundRobinScheduler
func NewRoundRobinScheduler() *RoundRobinScheduler {
	return &RoundRobinScheduler{}
}

// Order takes one unit per browser in turn, keeping plan order within each browser.
// Browsers rotate in the order they first appear in the plan.
func (s *RoundRobinScheduler) Order(units []domain.ExecutionUnit) []domain.ExecutionUnit {
	var browsers []domain.BrowserTarget
	lanes := make(map[domain.BrowserTarget][]domain.ExecutionUnit)
	for _, u := range units {
		if _, ok := lanes[u.Browser]; !ok {
			browsers = append(browsers, u.Browser)
		}
		lanes[u.Browser] = append(lanes[u.Browser], u)
	}

	ordered := make([]domain.ExecutionUnit, 0, len(units))
	for len(ordered) < len(units) {
		for _, b := range browsers {
			if lane := lanes[b]; len(lane) > 0 {
				ordered = append(ordered, lane[0])
				lanes[b] = lane[1:]
			}
		}
	}
	return ordered
}
