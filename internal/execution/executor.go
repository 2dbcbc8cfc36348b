package execution

import (
	"context"
	"errors"
	"time"

	"wtp/internal/domain"
)

var (
	// ErrUnitTimeout marks a unit that did not settle within its own timeout
	ErrUnitTimeout = errors.New("unit timed out")
	// ErrRunTimeout is returned when the whole run exceeds its finish timeout
	ErrRunTimeout = errors.New("run did not finish in time")
)

// Executor executes units and returns results
type Executor interface {
	Execute(ctx context.Context, units []domain.ExecutionUnit) ([]domain.UnitResult, time.Duration, error)
}

// UnitRunner runs a single unit; it never returns an error, failures are part of the result
type UnitRunner interface {
	Run(ctx context.Context, unit domain.ExecutionUnit, workerID int) domain.UnitResult
}

// Progress receives updates as units finish
type Progress interface {
	Update(done, passed, failed int)
	Finish()
}
