package minkowski

import "errors"

var (
	// ErrInvalidWindowShape is returned when a window handed to Classify does not
	// have the WindowShape geometry.
	ErrInvalidWindowShape = errors.New("invalid window shape")

	// ErrInvalidGridShape is returned for grids with a zero or negative extent, or
	// whose backing data does not match their dimensions.
	ErrInvalidGridShape = errors.New("invalid grid shape")

	// ErrConfigurationMismatch is returned when a lookup table was built for a
	// different window geometry than the one the classifier and the aggregation
	// loop use.
	ErrConfigurationMismatch = errors.New("window configuration mismatch")

	// ErrNonBinary is returned when a grid or window cell is neither 0 nor 1.
	ErrNonBinary = errors.New("non-binary cell value")

	// ErrTableTooLarge is returned when enumerating a shape with more than
	// MaxTableCells cells.
	ErrTableTooLarge = errors.New("window too large to enumerate")
)
