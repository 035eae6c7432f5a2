package models

import (
	"time"

	"minkowski3d/pkg/minkowski"
)

// Slice describes one image of a slice stack after it has been binarised
type Slice struct {
	// Index is the position of this slice along the stacking axis
	Index int `yaml:"index"`

	// Filename is the original filename of the slice
	Filename string `yaml:"filename"`

	// Width and Height are the slice dimensions in pixels
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// Foreground is the number of pixels at or above the threshold
	Foreground int `yaml:"foreground"`
}

// Method names the classification strategy used for a measurement
type Method string

const (
	// Direct evaluates the configuration polynomials for every window
	Direct Method = "direct"

	// Lookup reads every window's counts from the precomputed table
	Lookup Method = "lookup"
)

// Measurement is the result of measuring one voxel volume
type Measurement struct {
	// Name identifies the input, usually its path
	Name string `yaml:"name"`

	// Shape is the grid extent along x, y and z
	Shape minkowski.Shape `yaml:"shape"`

	// Voxels is the number of foreground voxels
	Voxels int `yaml:"voxels"`

	// Method is the classification strategy that produced Features
	Method Method `yaml:"method"`

	Features minkowski.Features `yaml:"features"`

	// Elapsed is the time spent aggregating, excluding loading
	Elapsed time.Duration `yaml:"elapsed"`
}

// Summary aggregates the functionals over a batch of measurements
type Summary struct {
	Count  int                `yaml:"count"`
	Mean   minkowski.Features `yaml:"mean"`
	StdDev minkowski.Features `yaml:"stddev"`
	Min    minkowski.Features `yaml:"min"`
	Max    minkowski.Features `yaml:"max"`
}
