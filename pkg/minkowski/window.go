package minkowski

import "fmt"

// Shape is the extent of a 3-D array along its three axes.
type Shape struct {
	X, Y, Z int
}

// WindowShape is the geometry of the local neighbourhood classified for every
// voxel: two stacked 3x3 layers along the third axis. Classify, the table
// builder and the aggregation loop all derive their layout from it.
var WindowShape = Shape{X: 3, Y: 3, Z: 2}

// windowAnchor is the window cell occupied by the voxel under test.
var windowAnchor = [3]int{1, 1, 1}

// Cells returns the number of cells in an array of this shape.
func (s Shape) Cells() int {
	return s.X * s.Y * s.Z
}

func (s Shape) String() string {
	return fmt.Sprintf("%dx%dx%d", s.X, s.Y, s.Z)
}

func (s Shape) valid() bool {
	return s.X > 0 && s.Y > 0 && s.Z > 0
}

// offset flattens (i, j, k) in row-major order, last axis fastest.
func (s Shape) offset(i, j, k int) int {
	return (i*s.Y+j)*s.Z + k
}

// Pattern is the flattened content of a binary window packed into an integer:
// bit n holds the cell at flat offset n. Two windows have the same Pattern
// exactly when they have the same cells.
type Pattern uint32

// Window is one local patch of cells, flattened in row-major order.
type Window struct {
	Shape Shape
	Cells []uint8
}

// NewWindow returns an all-background window of the given shape.
func NewWindow(shape Shape) Window {
	return Window{Shape: shape, Cells: make([]uint8, shape.Cells())}
}

// At returns the cell at (i, j, k).
func (w Window) At(i, j, k int) uint8 {
	return w.Cells[w.Shape.offset(i, j, k)]
}

// Set stores v at (i, j, k).
func (w Window) Set(i, j, k int, v uint8) {
	w.Cells[w.Shape.offset(i, j, k)] = v
}

// Pattern packs the window into its lookup key. It fails for non-binary cells
// and for windows too large to fit a Pattern.
func (w Window) Pattern() (Pattern, error) {
	if len(w.Cells) > 32 {
		return 0, fmt.Errorf("%w: %d cells do not fit a pattern", ErrTableTooLarge, len(w.Cells))
	}
	var p Pattern
	for n, c := range w.Cells {
		switch c {
		case 0:
		case 1:
			p |= 1 << n
		default:
			return 0, fmt.Errorf("%w: cell %d holds %d", ErrNonBinary, n, c)
		}
	}
	return p, nil
}

// Window returns the window whose Pattern is p.
func (p Pattern) Window(shape Shape) Window {
	w := NewWindow(shape)
	for n := range w.Cells {
		w.Cells[n] = uint8(p>>n) & 1
	}
	return w
}
