// Package output maintains the sweep's text artifacts: the primary output
// file with an immutable # Input header and an in-place rewritable
// # Progress + # Output region, and an optional progress-only file rewritten
// from scratch on every update.
package output

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/beamline-tools/greff/internal/monitoring"
	"github.com/beamline-tools/greff/internal/sweep"
)

// Writer implements sweep.SnapshotWriter over the two text artifacts.
type Writer struct {
	f            *os.File
	rewriteAt    int64
	progressPath string
}

// New creates (truncating) the primary artifact at outputPath, writes the
// # Input header from the echo lines, and records the rewrite offset. When
// progressPath is non-empty it is also created up front so a missing or
// unwritable progress file fails the run before any step executes.
func New(outputPath, progressPath string, inputEcho []string) (*Writer, error) {
	f, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("could not open output file %s: %w", outputPath, err)
	}

	if progressPath != "" {
		pf, err := os.Create(progressPath)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("could not open progress file %s: %w", progressPath, err)
		}
		pf.Close()
	}

	var header bytes.Buffer
	header.WriteString("# Input\n")
	for _, line := range inputEcho {
		header.WriteString(line)
		header.WriteByte('\n')
	}
	if _, err := f.Write(header.Bytes()); err != nil {
		f.Close()
		return nil, fmt.Errorf("could not write output header: %w", err)
	}
	offset, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("could not record rewrite offset: %w", err)
	}

	return &Writer{f: f, rewriteAt: offset, progressPath: progressPath}, nil
}

// Snapshot overwrites everything after the header with the current progress
// block and the full result list, truncating first so stale content from a
// previous larger write can never survive. The progress artifact, when
// configured, is fully rewritten with just the progress block; a mid-run
// failure there is surfaced in the log but does not abort the sweep.
func (w *Writer) Snapshot(p sweep.Progress, results []sweep.StepResult) error {
	var buf bytes.Buffer
	writeProgress(&buf, p)
	buf.WriteString("# Output\n")
	for i := range results {
		writeResultLine(&buf, &results[i])
	}

	if err := w.f.Truncate(w.rewriteAt); err != nil {
		return fmt.Errorf("truncating rewritable region: %w", err)
	}
	if _, err := w.f.WriteAt(buf.Bytes(), w.rewriteAt); err != nil {
		return fmt.Errorf("rewriting progress and results: %w", err)
	}

	if w.progressPath != "" {
		var pb bytes.Buffer
		writeProgress(&pb, p)
		if err := os.WriteFile(w.progressPath, pb.Bytes(), 0o644); err != nil {
			monitoring.Logf("output: progress file update failed: %v", err)
		}
	}
	return nil
}

// Close closes the primary artifact.
func (w *Writer) Close() error {
	return w.f.Close()
}

func writeProgress(buf *bytes.Buffer, p sweep.Progress) {
	fmt.Fprintf(buf, "# Progress\nstatus=%s\ncompletedSteps=%d\ntotalSteps=%d\n",
		p.Status, p.CompletedSteps, p.TotalSteps)
}

// writeResultLine emits one step as <coordinate><TAB><payload>. Successful
// steps carry the comma-separated efficiencies in ascending order index;
// failed steps carry a failed:<reason> marker so every completed step has
// exactly one line.
func writeResultLine(buf *bytes.Buffer, r *sweep.StepResult) {
	buf.WriteString(strconv.FormatFloat(r.Coordinate, 'g', -1, 64))
	buf.WriteByte('\t')
	if !r.OK {
		buf.WriteString("failed:")
		buf.WriteString(strings.ReplaceAll(r.FailureReason, "\n", " "))
		buf.WriteByte('\n')
		return
	}
	for i, e := range r.Efficiencies {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.FormatFloat(e, 'g', -1, 64))
	}
	buf.WriteByte('\n')
}
