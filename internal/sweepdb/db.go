// Package sweepdb persists sweep runs and per-step results to a sqlite
// database so long runs can be analyzed alongside the text artifacts.
package sweepdb

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/beamline-tools/greff/internal/sweep"
)

// DB wraps the sqlite handle holding sweep results.
type DB struct {
	*sql.DB
}

// New opens (creating if needed) the results database at path and ensures
// the base schema exists.
func New(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id            TEXT PRIMARY KEY,
			config            TEXT,
			status            TEXT,
			completed_steps   BIGINT,
			total_steps       BIGINT,
			timestamp         TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS steps (
			run_id            TEXT,
			step_index        BIGINT,
			coordinate        DOUBLE,
			wavelength_um     DOUBLE,
			incidence_deg     DOUBLE,
			ok                BOOLEAN,
			failure_reason    TEXT,
			efficiencies      TEXT,
			timestamp         TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (run_id, step_index),
			FOREIGN KEY (run_id) REFERENCES runs(run_id)
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating sweep schema: %w", err)
	}

	return &DB{db}, nil
}

// BeginRun records a new run row in inProgress state. The config echo lines
// are stored as one newline-joined text column.
func (db *DB) BeginRun(runID string, inputEcho []string, totalSteps int) error {
	_, err := db.Exec(
		`INSERT INTO runs (run_id, config, status, completed_steps, total_steps) VALUES (?, ?, ?, 0, ?)`,
		runID, strings.Join(inputEcho, "\n"), string(sweep.InProgress), totalSteps)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", runID, err)
	}
	return nil
}

// RecordStep inserts one completed step and refreshes the run's status row.
func (db *DB) RecordStep(runID string, r sweep.StepResult, p sweep.Progress) error {
	effs := make([]string, len(r.Efficiencies))
	for i, e := range r.Efficiencies {
		effs[i] = fmt.Sprintf("%g", e)
	}
	_, err := db.Exec(
		`INSERT INTO steps (run_id, step_index, coordinate, wavelength_um, incidence_deg, ok, failure_reason, efficiencies)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, r.Index, r.Coordinate, r.Input.WavelengthUM, r.Input.IncidenceDeg,
		r.OK, r.FailureReason, strings.Join(effs, ","))
	if err != nil {
		return fmt.Errorf("recording step %d of run %s: %w", r.Index, runID, err)
	}
	_, err = db.Exec(
		`UPDATE runs SET status = ?, completed_steps = ? WHERE run_id = ?`,
		string(p.Status), p.CompletedSteps, runID)
	if err != nil {
		return fmt.Errorf("updating run %s: %w", runID, err)
	}
	return nil
}

// RunObserver adapts a DB and run id to the controller's observer interface.
type RunObserver struct {
	DB    *DB
	RunID string
}

// StepCompleted implements sweep.StepObserver.
func (o RunObserver) StepCompleted(r sweep.StepResult, p sweep.Progress) error {
	return o.DB.RecordStep(o.RunID, r, p)
}
