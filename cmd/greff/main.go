// Command greff runs one grating-efficiency sweep. It resolves the sweep
// configuration from flags (optionally merged with a JSON config file),
// drives the sequential calculation, and maintains the output artifacts:
// a resumable text output file, an optional progress file, an optional
// sqlite results database and an optional HTML report.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/beamline-tools/greff/internal/config"
	"github.com/beamline-tools/greff/internal/monitoring"
	"github.com/beamline-tools/greff/internal/output"
	"github.com/beamline-tools/greff/internal/report"
	"github.com/beamline-tools/greff/internal/solver"
	"github.com/beamline-tools/greff/internal/sweep"
	"github.com/beamline-tools/greff/internal/sweepdb"
	"github.com/beamline-tools/greff/internal/version"
)

// options collects every command-line input before validation.
type options struct {
	mode      string
	min       float64
	max       float64
	increment float64

	incidenceAngle float64
	includedAngle  float64
	toOrder        int
	wavelength     float64

	eV               bool
	printDebugOutput bool

	gratingType     string
	gratingPeriod   float64
	gratingGeometry string
	gratingMaterial string
	truncation      int

	outputFile    string
	progressFile  string
	dbFile        string
	migrationsDir string
	reportFile    string
	configFile    string
}

func registerFlags(fs *flag.FlagSet, o *options) {
	fs.StringVar(&o.mode, "mode", "", "Operating mode: constantIncidence|constantIncludedAngle|constantWavelength")
	fs.Float64Var(&o.min, "min", 0, "Sweep start, in um, eV or degrees depending on mode")
	fs.Float64Var(&o.max, "max", 0, "Sweep end")
	fs.Float64Var(&o.increment, "increment", 0, "Sweep step size")

	fs.Float64Var(&o.incidenceAngle, "incidenceAngle", 0, "Fixed incidence angle in degrees (constantIncidence)")
	fs.Float64Var(&o.includedAngle, "includedAngle", 0, "Fixed included angle in degrees (constantIncludedAngle)")
	fs.IntVar(&o.toOrder, "toOrder", 0, "Diffraction order held at the included angle (constantIncludedAngle)")
	fs.Float64Var(&o.wavelength, "wavelength", 0, "Fixed wavelength in um, or eV with --eV (constantWavelength)")

	fs.BoolVar(&o.eV, "eV", false, "Interpret wavelength inputs as photon energies in eV")
	fs.BoolVar(&o.printDebugOutput, "printDebugOutput", false, "Print intermediate results per step")

	fs.StringVar(&o.gratingType, "gratingType", "", "Grating profile: rectangular|blazed|sinusoidal|trapezoidal")
	fs.Float64Var(&o.gratingPeriod, "gratingPeriod", 0, "Grating period in um")
	fs.StringVar(&o.gratingGeometry, "gratingGeometry", "", "Comma-separated geometry parameters, um and/or degrees")
	fs.StringVar(&o.gratingMaterial, "gratingMaterial", "", "Grating substrate material, e.g. Au, Ni, SiO2")
	fs.IntVar(&o.truncation, "N", 0, "Truncation index: number of positive and negative orders retained")

	fs.StringVar(&o.outputFile, "outputFile", "", "Output file (required)")
	fs.StringVar(&o.progressFile, "progressFile", "", "Optional progress file, rewritten every step")
	fs.StringVar(&o.dbFile, "dbFile", "", "Optional sqlite database recording runs and steps")
	fs.StringVar(&o.migrationsDir, "migrationsDir", "", "Directory of schema migrations applied to --dbFile before the run")
	fs.StringVar(&o.reportFile, "reportFile", "", "Optional HTML efficiency report written after the run")
	fs.StringVar(&o.configFile, "config", "", "Optional JSON file supplying any flag not set on the command line")
}

// applyConfigFile merges file values under explicitly set flags. The
// returned map records which flags were supplied, on the command line or
// through the file, so validation can tell an omitted angle from a
// legitimate zero.
func applyConfigFile(fs *flag.FlagSet, o *options) (map[string]bool, error) {
	set := providedFlags(fs)
	if o.configFile == "" {
		return set, nil
	}
	cf, err := config.Load(o.configFile)
	if err != nil {
		return nil, err
	}

	config.MergeString(&o.mode, cf.Mode, set["mode"])
	config.MergeFloat(&o.min, cf.Min, set["min"])
	config.MergeFloat(&o.max, cf.Max, set["max"])
	config.MergeFloat(&o.increment, cf.Increment, set["increment"])
	config.MergeFloat(&o.incidenceAngle, cf.IncidenceAngle, set["incidenceAngle"])
	config.MergeFloat(&o.includedAngle, cf.IncludedAngle, set["includedAngle"])
	config.MergeInt(&o.toOrder, cf.ToOrder, set["toOrder"])
	config.MergeFloat(&o.wavelength, cf.Wavelength, set["wavelength"])
	config.MergeBool(&o.eV, cf.EV, set["eV"])
	config.MergeBool(&o.printDebugOutput, cf.PrintDebugOutput, set["printDebugOutput"])
	config.MergeString(&o.gratingType, cf.GratingType, set["gratingType"])
	config.MergeFloat(&o.gratingPeriod, cf.GratingPeriod, set["gratingPeriod"])
	config.MergeString(&o.gratingGeometry, cf.GratingGeometry, set["gratingGeometry"])
	config.MergeString(&o.gratingMaterial, cf.GratingMaterial, set["gratingMaterial"])
	config.MergeInt(&o.truncation, cf.N, set["N"])
	config.MergeString(&o.outputFile, cf.OutputFile, set["outputFile"])
	config.MergeString(&o.progressFile, cf.ProgressFile, set["progressFile"])
	config.MergeString(&o.dbFile, cf.DBFile, set["dbFile"])
	config.MergeString(&o.migrationsDir, cf.MigrationsDir, set["migrationsDir"])
	config.MergeString(&o.reportFile, cf.ReportFile, set["reportFile"])

	if cf.IncidenceAngle != nil {
		set["incidenceAngle"] = true
	}
	if cf.IncludedAngle != nil {
		set["includedAngle"] = true
	}
	return set, nil
}

// providedFlags reports which flags were set explicitly on the command line.
func providedFlags(fs *flag.FlagSet) map[string]bool {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// buildConfig validates the options and assembles the sweep configuration.
// provided says which flags were supplied explicitly; see applyConfigFile.
func buildConfig(o *options, provided map[string]bool) (*sweep.Config, error) {
	if o.outputFile == "" {
		return nil, fmt.Errorf("--outputFile is required")
	}
	if o.gratingType == "" {
		return nil, fmt.Errorf("--gratingType is required")
	}
	geometry, err := parseCSVFloatSlice(o.gratingGeometry)
	if err != nil {
		return nil, fmt.Errorf("invalid --gratingGeometry: %w", err)
	}
	grating, err := solver.NewGrating(solver.Profile(o.gratingType), o.gratingPeriod, o.gratingMaterial, geometry)
	if err != nil {
		return nil, err
	}

	mode := sweep.Mode(o.mode)
	switch mode {
	case sweep.ConstantIncidence:
		if !provided["incidenceAngle"] {
			return nil, fmt.Errorf("--incidenceAngle is required in constantIncidence mode")
		}
	case sweep.ConstantIncludedAngle:
		if !provided["includedAngle"] {
			return nil, fmt.Errorf("--includedAngle is required in constantIncludedAngle mode")
		}
		if o.toOrder == 0 {
			return nil, fmt.Errorf("--toOrder is required (and non-zero) in constantIncludedAngle mode")
		}
	case sweep.ConstantWavelength:
		if o.wavelength == 0 {
			return nil, fmt.Errorf("--wavelength is required in constantWavelength mode")
		}
	default:
		return nil, fmt.Errorf("invalid --mode %q", o.mode)
	}

	cfg := &sweep.Config{
		Mode:            mode,
		Min:             o.min,
		Max:             o.max,
		Increment:       o.increment,
		IncidenceAngle:  o.incidenceAngle,
		IncludedAngle:   o.includedAngle,
		ToOrder:         o.toOrder,
		Wavelength:      o.wavelength,
		EnergyUnits:     o.eV,
		DebugOutput:     o.printDebugOutput,
		Grating:         grating,
		TruncationOrder: o.truncation,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(o *options, provided map[string]bool) error {
	cfg, err := buildConfig(o, provided)
	if err != nil {
		return err
	}
	monitoring.SetDebug(cfg.DebugOutput)

	writer, err := output.New(o.outputFile, o.progressFile, cfg.InputEcho())
	if err != nil {
		return err
	}
	defer writer.Close()

	runID := uuid.NewString()
	var observers []sweep.StepObserver
	if o.dbFile != "" {
		db, err := sweepdb.New(o.dbFile)
		if err != nil {
			return fmt.Errorf("could not open results database: %w", err)
		}
		defer db.Close()
		if o.migrationsDir != "" {
			if err := db.MigrateUp(o.migrationsDir); err != nil {
				return fmt.Errorf("could not migrate results database: %w", err)
			}
			v, dirty, err := db.MigrateVersion(o.migrationsDir)
			if err != nil {
				return fmt.Errorf("could not read schema version: %w", err)
			}
			monitoring.Logf("results database at schema version %d (dirty=%v)", v, dirty)
		}
		if err := db.BeginRun(runID, cfg.InputEcho(), cfg.TotalSteps()); err != nil {
			return err
		}
		observers = append(observers, sweepdb.RunObserver{DB: db, RunID: runID})
	}

	ctl, err := sweep.NewController(cfg, solver.NewModal(), writer, observers...)
	if err != nil {
		return err
	}

	monitoring.Logf("run %s: %s sweep, %d steps", runID, cfg.Mode, cfg.TotalSteps())
	if err := ctl.Run(); err != nil {
		return err
	}
	monitoring.Logf("run %s: finished with status %s", runID, ctl.Status())

	if o.reportFile != "" {
		title := fmt.Sprintf("Grating efficiency (%s, %s)", cfg.Grating.Profile, cfg.Mode)
		if err := report.WriteHTML(o.reportFile, title, ctl.Results()); err != nil {
			return fmt.Errorf("run %s: report not written: %w", runID, err)
		}
	}
	return nil
}

func main() {
	var o options
	showVersion := flag.Bool("version", false, "Print version and exit")
	registerFlags(flag.CommandLine, &o)
	flag.Parse()

	if *showVersion {
		fmt.Printf("greff %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	provided, err := applyConfigFile(flag.CommandLine, &o)
	if err != nil {
		log.Fatalf("Invalid config file: %v", err)
	}
	if err := run(&o, provided); err != nil {
		fmt.Fprintf(os.Stderr, "greff: %v\n", err)
		os.Exit(1)
	}
}

// parseCSVFloatSlice parses a comma-separated list of floats.
func parseCSVFloatSlice(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float '%s': %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
