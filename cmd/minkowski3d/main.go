package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"minkowski3d/internal/models"
	"minkowski3d/internal/monitoring"
	"minkowski3d/pkg/analysis"
	"minkowski3d/pkg/cache"
	"minkowski3d/pkg/config"
	"minkowski3d/pkg/db"
	"minkowski3d/pkg/minkowski"
	"minkowski3d/pkg/prompt"
	"minkowski3d/pkg/volume"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "minkowski3d.yaml", "YAML configuration file")
	tableStore := flag.String("table-store", "", "Where to keep the lookup table: file, sqlite or none")
	tablePath := flag.String("table-path", "", "Lookup table file (or database for the sqlite store)")
	build := flag.String("build", "", "Build a missing lookup table: ask, always or never")
	workers := flag.Int("workers", 0, "Number of volumes measured concurrently (default from config)")
	threshold := flag.Float64("threshold", -1, "Grey level in [0,1] at or above which slice pixels are foreground")
	dims := flag.String("dims", "", "Extents WxHxD of raw volume files")
	reportPath := flag.String("report", "", "Write a YAML report to this path")
	dbPath := flag.String("db", "", "Log measurements to this SQLite database")
	exportDir := flag.String("export-slices", "", "Save each input as PNG slices along x, y and z under this directory")
	quiet := flag.Bool("quiet", false, "Only print results")
	writeConfig := flag.Bool("write-config", false, "Write the effective configuration to -config and exit")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	applyFlags(cfg, *tableStore, *tablePath, *build, *workers, *threshold, *reportPath, *dbPath, *quiet)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if *writeConfig {
		if err := config.SaveConfig(cfg, *configPath); err != nil {
			log.Fatalf("Failed to write configuration: %v", err)
		}
		fmt.Printf("Configuration written to %s\n", *configPath)
		return
	}

	inputs := flag.Args()
	if len(inputs) == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <volume>...\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
		os.Exit(1)
	}
	if !cfg.Output.Verbose {
		monitoring.SetLogger(nil)
	}

	var rawShape minkowski.Shape
	if *dims != "" {
		if rawShape, err = volume.ParseShape(*dims); err != nil {
			log.Fatalf("Invalid -dims: %v", err)
		}
	}

	var database *db.DB
	if cfg.Output.Database != "" {
		if database, err = db.NewDB(cfg.Output.Database); err != nil {
			log.Fatalf("Failed to open measurement database: %v", err)
		}
		defer database.Close()
	}

	store, closeStore, err := openStore(cfg, database)
	if err != nil {
		log.Fatalf("Failed to open lookup table store: %v", err)
	}
	defer closeStore()

	startTime := time.Now()
	table, err := cache.Resolve(store, chooser(cfg))
	if err != nil {
		log.Fatalf("Failed to prepare lookup table: %v", err)
	}
	if table != nil && cfg.Output.Verbose {
		fmt.Printf("Lookup table ready in %.2f seconds\n", time.Since(startTime).Seconds())
	}

	opts := volume.Options{Threshold: cfg.Processing.Threshold, Shape: rawShape}
	jobs := make([]analysis.Job, 0, len(inputs))
	for _, input := range inputs {
		path := input
		jobs = append(jobs, analysis.Job{
			Name: path,
			Load: func() (*minkowski.Grid, error) {
				g, err := volume.Load(path, opts)
				if err != nil || *exportDir == "" {
					return g, err
				}
				return g, exportSlices(g, filepath.Join(*exportDir, sanitize(path)))
			},
		})
	}

	analyzer := analysis.NewAnalyzer(&analysis.Params{
		Workers: cfg.Processing.Workers,
		Table:   table,
		Verbose: cfg.Output.Verbose,
	})
	measurements, err := analyzer.Run(jobs)
	if err != nil {
		log.Fatalf("Measurement failed: %v", err)
	}
	summary := analysis.Summarize(measurements)
	runID := uuid.New()

	printResults(measurements, summary)
	if cfg.Output.Verbose {
		fmt.Printf("\nRun %s: %d volume(s), %s classification, %.2f seconds\n",
			runID, len(measurements), analyzer.Method(), time.Since(startTime).Seconds())
	}

	if cfg.Output.ReportPath != "" {
		report := analysis.Report{
			RunID:        runID.String(),
			Method:       analyzer.Method(),
			Measurements: measurements,
			Summary:      summary,
		}
		if err := analysis.WriteReport(cfg.Output.ReportPath, report); err != nil {
			log.Fatalf("Failed to write report: %v", err)
		}
		fmt.Printf("Report saved to: %s\n", cfg.Output.ReportPath)
	}

	if database != nil {
		for _, m := range measurements {
			if err := database.RecordMeasurement(runID, m); err != nil {
				log.Printf("Warning: %v", err)
			}
		}
	}
}

// applyFlags overrides configuration values with flags that were set
func applyFlags(cfg *config.Config, store, path, build string, workers int, threshold float64, report, database string, quiet bool) {
	if store != "" {
		cfg.Table.Store = store
	}
	if path != "" {
		cfg.Table.Path = path
	}
	if build != "" {
		cfg.Table.Build = build
	}
	if workers > 0 {
		cfg.Processing.Workers = workers
	}
	if threshold >= 0 {
		cfg.Processing.Threshold = threshold
	}
	if report != "" {
		cfg.Output.ReportPath = report
	}
	if database != "" {
		cfg.Output.Database = database
	}
	if quiet {
		cfg.Output.Verbose = false
	}
}

// openStore returns the configured lookup table store. The sqlite store
// reuses the measurement database when both point at the same file.
func openStore(cfg *config.Config, database *db.DB) (cache.Store, func(), error) {
	noop := func() {}
	switch cfg.Table.Store {
	case config.StoreNone:
		return nil, noop, nil
	case config.StoreFile:
		return cache.NewFileStore(cfg.Table.Path), noop, nil
	case config.StoreSQLite:
		if database != nil && cfg.Output.Database == cfg.Table.Path {
			return database.TableStore(), noop, nil
		}
		tables, err := db.NewDB(cfg.Table.Path)
		if err != nil {
			return nil, noop, err
		}
		return tables.TableStore(), func() { tables.Close() }, nil
	}
	return nil, noop, fmt.Errorf("unknown table store %q", cfg.Table.Store)
}

// chooser maps the build policy onto a yes/no answer source
func chooser(cfg *config.Config) cache.UserChoice {
	switch cfg.Table.Build {
	case config.BuildAlways:
		return prompt.Fixed(true)
	case config.BuildNever:
		return prompt.Fixed(false)
	}
	return prompt.NewTerminal(os.Stdin, os.Stdout, false)
}

func exportSlices(g *minkowski.Grid, dir string) error {
	for _, axis := range []string{"x", "y", "z"} {
		if err := volume.SaveSlices(g, axis, filepath.Join(dir, axis)); err != nil {
			return fmt.Errorf("failed to save %s-axis slices: %w", axis, err)
		}
	}
	return nil
}

func sanitize(path string) string {
	name := strings.Trim(filepath.ToSlash(filepath.Clean(path)), "/.")
	if name == "" {
		return "volume"
	}
	return strings.ReplaceAll(name, "/", "_")
}

func printResults(ms []models.Measurement, summary models.Summary) {
	fmt.Println("================================")
	fmt.Println("MINKOWSKI FUNCTIONALS")
	fmt.Println("================================")
	fmt.Printf("%-32s %12s %12s %12s %12s %12s\n", "Volume", "Shape", "V", "S", "B", "Xi")
	for _, m := range ms {
		f := m.Features
		fmt.Printf("%-32s %12s %12.0f %12.0f %12.1f %12.0f\n", m.Name, m.Shape, f.V, f.S, f.B, f.Xi)
	}
	if summary.Count > 1 {
		fmt.Println("--------------------------------")
		fmt.Printf("%-32s %12s %12.2f %12.2f %12.2f %12.2f\n", "mean", "", summary.Mean.V, summary.Mean.S, summary.Mean.B, summary.Mean.Xi)
		fmt.Printf("%-32s %12s %12.2f %12.2f %12.2f %12.2f\n", "stddev", "", summary.StdDev.V, summary.StdDev.S, summary.StdDev.B, summary.StdDev.Xi)
	}
}
