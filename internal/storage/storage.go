package storage

import (
	"fmt"
	"time"

	"wtp/internal/config"
	"wtp/internal/domain"
)

// Storage persists and loads run results (e.g. for the faills viewer).
type Storage interface {
	Save(results []domain.UnitResult, failures []domain.UnitFailure, duration time.Duration, concurrency int) error
	Load() (*domain.RunOutput, error)
	// SaveOutput updates the stored last run in place (e.g. after toggling resolved flags); it never adds a run.
	SaveOutput(output *domain.RunOutput) error
}

// New returns the JSON storage, mirrored into MySQL when a results DSN is configured.
func New(cfg *config.Config) (Storage, error) {
	js := NewJSONStorage(cfg)
	if cfg.ResultsDSN == "" {
		return js, nil
	}
	db, err := NewMySQLStorage(cfg.ResultsDSN)
	if err != nil {
		return nil, err
	}
	return NewMulti(js, db), nil
}

// BuildOutput summarises a run
func BuildOutput(results []domain.UnitResult, failures []domain.UnitFailure, duration time.Duration, concurrency int) domain.RunOutput {
	meta := domain.RunMeta{
		TotalUnits:      len(results),
		FailedCases:     len(failures),
		Duration:        duration.String(),
		DurationSeconds: duration.Seconds(),
		Concurrency:     concurrency,
		Timestamp:       time.Now().Format(time.RFC3339),
	}
	for _, r := range results {
		switch {
		case r.Success:
			meta.PassedUnits++
		case r.TimedOut:
			meta.TimedOutUnits++
			meta.FailedUnits++
		default:
			meta.FailedUnits++
		}
	}
	if failures == nil {
		failures = []domain.UnitFailure{}
	}
	return domain.RunOutput{Meta: meta, Details: failures}
}

// Multi writes to every backend and reads from the first one
type Multi struct {
	backends []Storage
}

// NewMulti creates a Multi; the first backend is the one Load reads from
func NewMulti(backends ...Storage) *Multi {
	return &Multi{backends: backends}
}

// Save writes the run to every backend, stopping at the first error
func (m *Multi) Save(results []domain.UnitResult, failures []domain.UnitFailure, duration time.Duration, concurrency int) error {
	for i, b := range m.backends {
		if err := b.Save(results, failures, duration, concurrency); err != nil {
			return fmt.Errorf("storage %d: %w", i, err)
		}
	}
	return nil
}

// Load reads from the primary backend
func (m *Multi) Load() (*domain.RunOutput, error) {
	if len(m.backends) == 0 {
		return nil, fmt.Errorf("no storage configured")
	}
	return m.backends[0].Load()
}

// SaveOutput writes the output to every backend
func (m *Multi) SaveOutput(output *domain.RunOutput) error {
	for i, b := range m.backends {
		if err := b.SaveOutput(output); err != nil {
			return fmt.Errorf("storage %d: %w", i, err)
		}
	}
	return nil
}
