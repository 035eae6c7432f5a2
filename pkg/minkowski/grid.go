// Package minkowski computes the Minkowski functionals (volume, surface area,
// mean breadth and Euler characteristic) of a binary voxel structure by
// counting local configurations: every foreground voxel's neighbourhood is
// classified into incremental counts which are summed over the volume and
// combined linearly into the four functionals.
package minkowski

import "fmt"

// Grid is a binary voxel volume. Data is stored with x varying fastest, then
// y, then z: the voxel at (x, y, z) lives at z*Width*Height + y*Width + x.
// Every cell is 0 (background) or 1 (foreground).
type Grid struct {
	Data []uint8

	// Width, Height and Depth are the extents along axes 0, 1 and 2.
	Width  int
	Height int
	Depth  int
}

// NewGrid returns an all-background grid of the given dimensions.
func NewGrid(width, height, depth int) (*Grid, error) {
	if width <= 0 || height <= 0 || depth <= 0 {
		return nil, fmt.Errorf("%w: %dx%dx%d", ErrInvalidGridShape, width, height, depth)
	}
	return &Grid{
		Data:   make([]uint8, width*height*depth),
		Width:  width,
		Height: height,
		Depth:  depth,
	}, nil
}

// GridFromData wraps data as a grid after checking its length and that every
// cell is binary. The slice is not copied.
func GridFromData(data []uint8, width, height, depth int) (*Grid, error) {
	g := &Grid{Data: data, Width: width, Height: height, Depth: depth}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate reports whether the grid is well formed.
func (g *Grid) Validate() error {
	if g == nil {
		return fmt.Errorf("%w: nil grid", ErrInvalidGridShape)
	}
	if g.Width <= 0 || g.Height <= 0 || g.Depth <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidGridShape, g.Shape())
	}
	if want := g.Width * g.Height * g.Depth; len(g.Data) != want {
		return fmt.Errorf("%w: %s needs %d cells, have %d", ErrInvalidGridShape, g.Shape(), want, len(g.Data))
	}
	for i, v := range g.Data {
		if v > 1 {
			x, y, z := g.coords(i)
			return fmt.Errorf("%w: voxel (%d,%d,%d) holds %d", ErrNonBinary, x, y, z, v)
		}
	}
	return nil
}

// Shape returns the grid's extents.
func (g *Grid) Shape() Shape {
	return Shape{X: g.Width, Y: g.Height, Z: g.Depth}
}

func (g *Grid) index(x, y, z int) int {
	return z*g.Width*g.Height + y*g.Width + x
}

func (g *Grid) coords(idx int) (x, y, z int) {
	plane := g.Width * g.Height
	z = idx / plane
	y = (idx % plane) / g.Width
	x = idx % g.Width
	return x, y, z
}

// At returns the voxel at (x, y, z).
func (g *Grid) At(x, y, z int) uint8 {
	return g.Data[g.index(x, y, z)]
}

// Set stores v at (x, y, z).
func (g *Grid) Set(x, y, z int, v uint8) {
	g.Data[g.index(x, y, z)] = v
}

// Count returns the number of foreground voxels.
func (g *Grid) Count() int {
	n := 0
	for _, v := range g.Data {
		if v != 0 {
			n++
		}
	}
	return n
}

// Pad returns a copy of g surrounded by one layer of background on all six
// faces, so that every input voxel has a complete neighbourhood. The input
// is left untouched.
func Pad(g *Grid) (*Grid, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	padded, err := NewGrid(g.Width+2, g.Height+2, g.Depth+2)
	if err != nil {
		return nil, err
	}
	for z := 0; z < g.Depth; z++ {
		for y := 0; y < g.Height; y++ {
			src := g.index(0, y, z)
			dst := padded.index(1, y+1, z+1)
			copy(padded.Data[dst:dst+g.Width], g.Data[src:src+g.Width])
		}
	}
	return padded, nil
}
