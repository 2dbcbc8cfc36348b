package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"wtp/internal/domain"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS wtp_runs (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		created_at VARCHAR(64) NOT NULL,
		total_units INT NOT NULL,
		passed_units INT NOT NULL,
		failed_units INT NOT NULL,
		timed_out_units INT NOT NULL,
		failed_cases INT NOT NULL,
		duration VARCHAR(64) NOT NULL,
		duration_seconds DOUBLE NOT NULL,
		concurrency INT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS wtp_failures (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		run_id BIGINT NOT NULL,
		group_name VARCHAR(255) NOT NULL,
		browser VARCHAR(32) NOT NULL,
		file_path VARCHAR(1024) NOT NULL,
		message TEXT NOT NULL,
		stack_trace TEXT NOT NULL,
		file VARCHAR(1024) NOT NULL,
		line INT NOT NULL,
		logs TEXT NOT NULL,
		resolved BOOLEAN NOT NULL DEFAULT FALSE,
		INDEX (run_id)
	)`,
}

// MySQLStorage keeps the history of runs in MySQL. Save appends a run; Load and
// SaveOutput act on the newest one.
type MySQLStorage struct {
	dsn string
	db  *sql.DB
}

// NewMySQLStorage validates dsn; the connection is opened on first use
func NewMySQLStorage(dsn string) (*MySQLStorage, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid results dsn: %w", err)
	}
	if cfg.DBName == "" {
		return nil, errors.New("invalid results dsn: no database name")
	}
	return &MySQLStorage{dsn: cfg.FormatDSN()}, nil
}

// newMySQLStorageWithDB uses an already open database with the tables in place
func newMySQLStorageWithDB(db *sql.DB) *MySQLStorage {
	return &MySQLStorage{db: db}
}

func (s *MySQLStorage) open() (*sql.DB, error) {
	if s.db != nil {
		return s.db, nil
	}
	db, err := sql.Open("mysql", s.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to results database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping results database: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create results tables: %w", err)
		}
	}
	s.db = db
	return db, nil
}

// Close releases the connection pool
func (s *MySQLStorage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save records the run and its failures as a new run, in one transaction
func (s *MySQLStorage) Save(results []domain.UnitResult, failures []domain.UnitFailure, duration time.Duration, concurrency int) error {
	output := BuildOutput(results, failures, duration, concurrency)

	db, err := s.open()
	if err != nil {
		return err
	}
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	m := output.Meta
	res, err := tx.Exec(`INSERT INTO wtp_runs
		(created_at, total_units, passed_units, failed_units, timed_out_units, failed_cases, duration, duration_seconds, concurrency)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Timestamp, m.TotalUnits, m.PassedUnits, m.FailedUnits, m.TimedOutUnits, m.FailedCases, m.Duration, m.DurationSeconds, m.Concurrency)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, f := range output.Details {
		args, err := failureRow(runID, f)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT INTO wtp_failures
			(run_id, group_name, browser, file_path, message, stack_trace, file, line, logs, resolved)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...); err != nil {
			return fmt.Errorf("insert failure: %w", err)
		}
	}
	return tx.Commit()
}

// SaveOutput stores the resolved flags of output on the newest run.
// output.Details must be the failures of that run, in the order Load returned them.
func (s *MySQLStorage) SaveOutput(output *domain.RunOutput) error {
	db, err := s.open()
	if err != nil {
		return err
	}
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var runID int64
	err = tx.QueryRow(`SELECT id FROM wtp_runs ORDER BY id DESC LIMIT 1`).Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return errors.New("no runs recorded")
	}
	if err != nil {
		return fmt.Errorf("load run: %w", err)
	}

	ids, err := failureIDs(tx, runID)
	if err != nil {
		return err
	}
	if len(ids) != len(output.Details) {
		return fmt.Errorf("run %d has %d failures, output has %d", runID, len(ids), len(output.Details))
	}

	for i, f := range output.Details {
		if _, err := tx.Exec(`UPDATE wtp_failures SET resolved = ? WHERE id = ?`, f.Resolved, ids[i]); err != nil {
			return fmt.Errorf("update failure: %w", err)
		}
	}
	return tx.Commit()
}

func failureIDs(tx *sql.Tx, runID int64) ([]int64, error) {
	rows, err := tx.Query(`SELECT id FROM wtp_failures WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("load failures: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("load failures: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Load returns the newest run
func (s *MySQLStorage) Load() (*domain.RunOutput, error) {
	db, err := s.open()
	if err != nil {
		return nil, err
	}

	var (
		runID  int64
		output domain.RunOutput
		m      = &output.Meta
	)
	err = db.QueryRow(`SELECT id, created_at, total_units, passed_units, failed_units, timed_out_units,
		failed_cases, duration, duration_seconds, concurrency FROM wtp_runs ORDER BY id DESC LIMIT 1`).
		Scan(&runID, &m.Timestamp, &m.TotalUnits, &m.PassedUnits, &m.FailedUnits, &m.TimedOutUnits,
			&m.FailedCases, &m.Duration, &m.DurationSeconds, &m.Concurrency)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.New("no runs recorded")
	}
	if err != nil {
		return nil, fmt.Errorf("load run: %w", err)
	}

	rows, err := db.Query(`SELECT group_name, browser, file_path, message, stack_trace, file, line, logs, resolved
		FROM wtp_failures WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("load failures: %w", err)
	}
	defer rows.Close()

	output.Details = []domain.UnitFailure{}
	for rows.Next() {
		var (
			f           domain.UnitFailure
			stack, logs string
		)
		if err := rows.Scan(&f.Group, &f.Browser, &f.FilePath, &f.Message, &stack, &f.File, &f.Line, &logs, &f.Resolved); err != nil {
			return nil, fmt.Errorf("load failures: %w", err)
		}
		if err := json.Unmarshal([]byte(stack), &f.StackTrace); err != nil {
			return nil, fmt.Errorf("decode stack trace: %w", err)
		}
		if err := json.Unmarshal([]byte(logs), &f.Logs); err != nil {
			return nil, fmt.Errorf("decode logs: %w", err)
		}
		output.Details = append(output.Details, f)
	}
	return &output, rows.Err()
}

// failureRow flattens a failure into insert arguments; list columns are stored as JSON
func failureRow(runID int64, f domain.UnitFailure) ([]any, error) {
	stack, err := json.Marshal(nonNil(f.StackTrace))
	if err != nil {
		return nil, fmt.Errorf("encode stack trace: %w", err)
	}
	logs, err := json.Marshal(nonNil(f.Logs))
	if err != nil {
		return nil, fmt.Errorf("encode logs: %w", err)
	}
	return []any{runID, f.Group, f.Browser, f.FilePath, f.Message, string(stack), f.File, f.Line, string(logs), f.Resolved}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
