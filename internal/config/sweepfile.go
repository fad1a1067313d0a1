// Package config loads sweep parameters from a JSON file. Every field is a
// pointer so a partial file is safe: unset fields keep whatever the
// command-line flags provided.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SweepFile mirrors the command-line flags of the sweep tool. Field names
// match the flag vocabulary so a file and a flag set read the same.
type SweepFile struct {
	Mode      *string  `json:"mode,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	Increment *float64 `json:"increment,omitempty"`

	IncidenceAngle *float64 `json:"incidenceAngle,omitempty"`
	IncludedAngle  *float64 `json:"includedAngle,omitempty"`
	ToOrder        *int     `json:"toOrder,omitempty"`
	Wavelength     *float64 `json:"wavelength,omitempty"`

	EV               *bool   `json:"eV,omitempty"`
	PrintDebugOutput *bool   `json:"printDebugOutput,omitempty"`

	GratingType     *string  `json:"gratingType,omitempty"`
	GratingPeriod   *float64 `json:"gratingPeriod,omitempty"`
	GratingGeometry *string  `json:"gratingGeometry,omitempty"`
	GratingMaterial *string  `json:"gratingMaterial,omitempty"`
	N               *int     `json:"N,omitempty"`

	OutputFile    *string `json:"outputFile,omitempty"`
	ProgressFile  *string `json:"progressFile,omitempty"`
	DBFile        *string `json:"dbFile,omitempty"`
	MigrationsDir *string `json:"migrationsDir,omitempty"`
	ReportFile    *string `json:"reportFile,omitempty"`
}

// Load reads a SweepFile from path. The file must have a .json extension and
// stay under a size cap; fields omitted from the JSON remain nil.
func Load(path string) (*SweepFile, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &SweepFile{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return cfg, nil
}

// Merge helpers: each applies the file value only when the destination still
// holds its zero/default and the file set one.

func MergeString(dst *string, src *string, set bool) {
	if !set && src != nil {
		*dst = *src
	}
}

func MergeFloat(dst *float64, src *float64, set bool) {
	if !set && src != nil {
		*dst = *src
	}
}

func MergeInt(dst *int, src *int, set bool) {
	if !set && src != nil {
		*dst = *src
	}
}

func MergeBool(dst *bool, src *bool, set bool) {
	if !set && src != nil {
		*dst = *src
	}
}
