package sweepdb

import (
	"path/filepath"
	"testing"

	"github.com/beamline-tools/greff/internal/sweep"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "sweep.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBeginRunAndRecordSteps(t *testing.T) {
	db := openTestDB(t)

	echo := []string{"mode=constantIncidence", "min=100", "max=110", "increment=5"}
	if err := db.BeginRun("run-1", echo, 3); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	steps := []sweep.StepResult{
		{Index: 0, Coordinate: 100, OK: true, Orders: []int{-1, 0, 1}, Efficiencies: []float64{0.1, 0.5, 0.2},
			Input: sweep.PhysicalInput{WavelengthUM: 0.0124, IncidenceDeg: 88}},
		{Index: 1, Coordinate: 105, FailureReason: "solver failure"},
		{Index: 2, Coordinate: 110, OK: true, Orders: []int{-1, 0, 1}, Efficiencies: []float64{0.2, 0.4, 0.1}},
	}
	for i, r := range steps {
		p := sweep.Progress{
			Status:         sweep.DeriveStatus(i+1, 3, true, i >= 1),
			CompletedSteps: i + 1,
			TotalSteps:     3,
		}
		if err := db.RecordStep("run-1", r, p); err != nil {
			t.Fatalf("RecordStep %d: %v", i, err)
		}
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM steps WHERE run_id = ?`, "run-1").Scan(&count); err != nil {
		t.Fatalf("count steps: %v", err)
	}
	if count != 3 {
		t.Errorf("got %d step rows, want 3", count)
	}

	var status string
	var completed int
	err := db.QueryRow(`SELECT status, completed_steps FROM runs WHERE run_id = ?`, "run-1").Scan(&status, &completed)
	if err != nil {
		t.Fatalf("query run: %v", err)
	}
	if status != string(sweep.SomeFailed) {
		t.Errorf("run status = %q, want %q", status, sweep.SomeFailed)
	}
	if completed != 3 {
		t.Errorf("completed_steps = %d, want 3", completed)
	}

	var reason string
	err = db.QueryRow(`SELECT failure_reason FROM steps WHERE run_id = ? AND step_index = 1`, "run-1").Scan(&reason)
	if err != nil {
		t.Fatalf("query failed step: %v", err)
	}
	if reason != "solver failure" {
		t.Errorf("failure_reason = %q", reason)
	}
}

func TestRecordStep_DuplicateIndexRejected(t *testing.T) {
	db := openTestDB(t)
	if err := db.BeginRun("run-1", nil, 1); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	r := sweep.StepResult{Index: 0, Coordinate: 100, OK: true}
	p := sweep.Progress{Status: sweep.Succeeded, CompletedSteps: 1, TotalSteps: 1}
	if err := db.RecordStep("run-1", r, p); err != nil {
		t.Fatalf("RecordStep: %v", err)
	}
	if err := db.RecordStep("run-1", r, p); err == nil {
		t.Error("expected primary-key violation for duplicate step index")
	}
}

func TestRunObserver(t *testing.T) {
	db := openTestDB(t)
	if err := db.BeginRun("run-obs", nil, 2); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	obs := RunObserver{DB: db, RunID: "run-obs"}
	err := obs.StepCompleted(
		sweep.StepResult{Index: 0, Coordinate: 10, OK: true, Efficiencies: []float64{0.3}},
		sweep.Progress{Status: sweep.InProgress, CompletedSteps: 1, TotalSteps: 2})
	if err != nil {
		t.Fatalf("StepCompleted: %v", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM steps WHERE run_id = ?`, "run-obs").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("got %d rows, want 1", count)
	}
}
