// Package analysis measures batches of voxel volumes and summarises the
// resulting Minkowski functionals.
package analysis

import (
	"fmt"
	"time"

	"minkowski3d/internal/models"
	"minkowski3d/internal/monitoring"
	"minkowski3d/pkg/minkowski"
)

// Params configure an Analyzer.
type Params struct {
	// Workers is how many volumes are measured at the same time. Each volume
	// is still aggregated by a single goroutine.
	Workers int

	// Table is the shared lookup table; nil selects direct classification.
	Table *minkowski.Table

	// Verbose prints progress as volumes complete.
	Verbose bool
}

// Job is one volume to measure. Load is called on a worker goroutine.
type Job struct {
	Name string
	Load func() (*minkowski.Grid, error)
}

// GridJob wraps an already loaded grid as a Job.
func GridJob(name string, g *minkowski.Grid) Job {
	return Job{Name: name, Load: func() (*minkowski.Grid, error) { return g, nil }}
}

// Analyzer measures volumes concurrently, sharing one read-only lookup table.
type Analyzer struct {
	params *Params
}

// NewAnalyzer creates an analyzer. Fewer than one worker means one.
func NewAnalyzer(params *Params) *Analyzer {
	p := *params
	if p.Workers < 1 {
		p.Workers = 1
	}
	return &Analyzer{params: &p}
}

// Method reports the classification strategy in use.
func (a *Analyzer) Method() models.Method {
	if a.params.Table != nil {
		return models.Lookup
	}
	return models.Direct
}

// Measure loads and measures a single job.
func (a *Analyzer) Measure(job Job) (models.Measurement, error) {
	g, err := job.Load()
	if err != nil {
		return models.Measurement{}, fmt.Errorf("failed to load %s: %w", job.Name, err)
	}

	start := time.Now()
	features, err := minkowski.ComputeFeatures(g, a.params.Table)
	if err != nil {
		return models.Measurement{}, fmt.Errorf("failed to measure %s: %w", job.Name, err)
	}

	return models.Measurement{
		Name:     job.Name,
		Shape:    g.Shape(),
		Voxels:   g.Count(),
		Method:   a.Method(),
		Features: features,
		Elapsed:  time.Since(start),
	}, nil
}

// Run measures all jobs and returns the measurements in job order. The first
// failure is returned after all in-flight jobs finish.
func (a *Analyzer) Run(jobs []Job) ([]models.Measurement, error) {
	type result struct {
		index       int
		measurement models.Measurement
		err         error
	}

	work := make(chan int)
	results := make(chan result)

	workers := a.params.Workers
	if workers > len(jobs) {
		workers = len(jobs)
	}
	for w := 0; w < workers; w++ {
		go func() {
			for i := range work {
				m, err := a.Measure(jobs[i])
				results <- result{index: i, measurement: m, err: err}
			}
		}()
	}

	go func() {
		for i := range jobs {
			work <- i
		}
		close(work)
	}()

	out := make([]models.Measurement, len(jobs))
	var firstErr error
	for completed := 1; completed <= len(jobs); completed++ {
		res := <-results
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		out[res.index] = res.measurement

		if a.params.Verbose {
			monitoring.Logf("Measured %s (%d/%d) in %v", res.measurement.Name, completed, len(jobs), res.measurement.Elapsed)
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}
