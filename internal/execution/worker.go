package execution

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"wtp/internal/config"
	"wtp/internal/ctxlog"
	"wtp/internal/domain"
)

// WorkerPool runs units with at most ConcurrentBrowsers in flight
type WorkerPool struct {
	config    *config.Config
	runner    UnitRunner
	scheduler Scheduler
	progress  Progress
}

// NewWorkerPool creates a new WorkerPool. progress may be nil.
func NewWorkerPool(cfg *config.Config, runner UnitRunner, scheduler Scheduler, progress Progress) *WorkerPool {
	if scheduler == nil {
		scheduler = NewRoundRobinScheduler()
	}
	return &WorkerPool{
		config:    cfg,
		runner:    runner,
		scheduler: scheduler,
		progress:  progress,
	}
}

// Execute runs all units, honoring the configured fail-fast flag
func (wp *WorkerPool) Execute(ctx context.Context, units []domain.ExecutionUnit) ([]domain.UnitResult, time.Duration, error) {
	return wp.ExecuteWithOptions(ctx, units, wp.config.Flags.FailFast)
}

// ExecuteWithOptions runs all units. A failed unit only stops its siblings when failFast is set;
// results are returned in plan order.
func (wp *WorkerPool) ExecuteWithOptions(ctx context.Context, units []domain.ExecutionUnit, failFast bool) ([]domain.UnitResult, time.Duration, error) {
	if len(units) == 0 {
		return nil, 0, nil
	}

	runCtx, cancel := ctx, context.CancelFunc(func() {})
	if wp.config.FinishTimeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, wp.config.FinishTimeout)
	}
	defer cancel()
	runCtx, stop := context.WithCancel(runCtx)
	defer stop()

	logger := ctxlog.FromContext(ctx)
	start := time.Now()

	queue := make(chan domain.ExecutionUnit)
	go func() {
		defer close(queue)
		for _, u := range wp.scheduler.Order(units) {
			select {
			case <-runCtx.Done():
				return
			case queue <- u:
			}
		}
	}()

	workerCount := wp.config.ConcurrentBrowsers
	if workerCount <= 0 {
		workerCount = 1
	}
	if workerCount > len(units) {
		workerCount = len(units)
	}
	logger.Debug("starting workers", "workers", workerCount, "units", len(units), "fail_fast", failFast)

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		collected = make([]domain.UnitResult, 0, len(units))
		passed    int
		failed    int
		stopped   bool
	)

	for i := 1; i <= workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for unit := range queue {
				result := wp.runner.Run(runCtx, unit, workerID)

				mu.Lock()
				if stopped {
					// cancelled by an earlier failure; not a result of its own
					mu.Unlock()
					continue
				}
				collected = append(collected, result)
				if result.Success {
					passed++
				} else {
					failed++
				}
				if wp.progress != nil {
					wp.progress.Update(len(collected), passed, failed)
				}
				if failFast && !result.Success {
					stopped = true
					stop()
				}
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if wp.progress != nil {
		wp.progress.Finish()
	}

	sort.Slice(collected, func(i, j int) bool {
		return collected[i].Unit.Index < collected[j].Unit.Index
	})
	duration := time.Since(start)

	switch {
	case ctx.Err() != nil:
		return collected, duration, fmt.Errorf("run interrupted: %w", ctx.Err())
	case !stopped && errors.Is(runCtx.Err(), context.DeadlineExceeded):
		return collected, duration, fmt.Errorf("%w: %d of %d units finished within %s",
			ErrRunTimeout, len(collected), len(units), wp.config.FinishTimeout)
	}
	return collected, duration, nil
}
