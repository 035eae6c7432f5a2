package analysis

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"minkowski3d/internal/models"
	"minkowski3d/pkg/minkowski"
)

// Summarize computes per-functional statistics over ms. The standard deviation
// is the unbiased sample estimate and is zero for fewer than two values.
func Summarize(ms []models.Measurement) models.Summary {
	summary := models.Summary{Count: len(ms)}
	if len(ms) == 0 {
		return summary
	}

	columns := [4][]float64{}
	for _, m := range ms {
		columns[0] = append(columns[0], m.Features.V)
		columns[1] = append(columns[1], m.Features.S)
		columns[2] = append(columns[2], m.Features.B)
		columns[3] = append(columns[3], m.Features.Xi)
	}

	var mean, std, lo, hi [4]float64
	for i, col := range columns {
		if len(col) > 1 {
			mean[i], std[i] = stat.MeanStdDev(col, nil)
		} else {
			mean[i] = col[0]
		}
		lo[i] = floats.Min(col)
		hi[i] = floats.Max(col)
	}

	summary.Mean = toFeatures(mean)
	summary.StdDev = toFeatures(std)
	summary.Min = toFeatures(lo)
	summary.Max = toFeatures(hi)
	return summary
}

func toFeatures(v [4]float64) minkowski.Features {
	return minkowski.Features{V: v[0], S: v[1], B: v[2], Xi: v[3]}
}

// Report is the document written by WriteReport.
type Report struct {
	RunID        string               `yaml:"runId"`
	Method       models.Method        `yaml:"method"`
	Measurements []models.Measurement `yaml:"measurements"`
	Summary      models.Summary       `yaml:"summary"`
}

// WriteReport writes report as YAML to path.
func WriteReport(path string, report Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating report directory: %w", err)
	}
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("error marshaling report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing report: %w", err)
	}
	return nil
}

// ReadReport loads a report written by WriteReport.
func ReadReport(path string) (Report, error) {
	var report Report
	data, err := os.ReadFile(path)
	if err != nil {
		return report, fmt.Errorf("error reading report: %w", err)
	}
	if err := yaml.Unmarshal(data, &report); err != nil {
		return report, fmt.Errorf("error parsing report: %w", err)
	}
	return report, nil
}
