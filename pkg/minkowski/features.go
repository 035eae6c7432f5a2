package minkowski

// Totals are the running sums n3, n2, n1 and n0 over all classified windows.
type Totals struct {
	N3, N2, N1, N0 int64
}

// Add accumulates one window's increments.
func (t *Totals) Add(inc Increments) {
	t.N3 += int64(inc.N3)
	t.N2 += int64(inc.N2)
	t.N1 += int64(inc.N1)
	t.N0 += int64(inc.N0)
}

// Merge adds the totals of another, disjoint part of the volume.
func (t *Totals) Merge(o Totals) {
	t.N3 += o.N3
	t.N2 += o.N2
	t.N1 += o.N1
	t.N0 += o.N0
}

// Features holds the four Minkowski functionals of a voxel structure.
type Features struct {
	// V is the volume, the number of foreground voxels.
	V float64 `yaml:"volume"`
	// S is the surface area in voxel faces.
	S float64 `yaml:"surface"`
	// B is the mean breadth.
	B float64 `yaml:"breadth"`
	// Xi is the Euler characteristic: components minus tunnels plus cavities.
	Xi float64 `yaml:"euler"`
}

// Features applies the linear transform from configuration counts to
// functionals.
func (t Totals) Features() Features {
	n3 := float64(t.N3)
	n2 := float64(t.N2)
	n1 := float64(t.N1)
	n0 := float64(t.N0)
	return Features{
		V:  n3,
		S:  -6*n3 + 2*n2,
		B:  1.5*n3 - n2 + 0.5*n1,
		Xi: -n3 + n2 - n1 + n0,
	}
}

// ComputeFeatures returns the Minkowski functionals of g. With a nil table
// every window is classified directly; otherwise the table is consulted and
// the result is identical.
func ComputeFeatures(g *Grid, table *Table) (Features, error) {
	totals, err := Accumulate(g, table)
	if err != nil {
		return Features{}, err
	}
	return totals.Features(), nil
}

// Accumulate pads g, extracts the WindowShape neighbourhood of every input
// voxel, classifies it and sums the increments.
func Accumulate(g *Grid, table *Table) (Totals, error) {
	var totals Totals
	if table != nil {
		if err := checkTable(table); err != nil {
			return totals, err
		}
	}
	padded, err := Pad(g)
	if err != nil {
		return totals, err
	}

	offsets := windowOffsets(padded)
	win := NewWindow(WindowShape)

	for z := 1; z <= g.Depth; z++ {
		for y := 1; y <= g.Height; y++ {
			for x := 1; x <= g.Width; x++ {
				center := padded.index(x, y, z)
				if table != nil {
					var p Pattern
					for n, off := range offsets {
						p |= Pattern(padded.Data[center+off]) << n
					}
					totals.Add(table.entries[p])
					continue
				}
				for n, off := range offsets {
					win.Cells[n] = padded.Data[center+off]
				}
				inc, err := Classify(win)
				if err != nil {
					return totals, err
				}
				totals.Add(inc)
			}
		}
	}
	return totals, nil
}

// windowOffsets returns, for each window cell in flat order, the distance in
// padded.Data from the anchored voxel to the grid voxel that fills that cell.
func windowOffsets(padded *Grid) []int {
	offsets := make([]int, WindowShape.Cells())
	plane := padded.Width * padded.Height
	for i := 0; i < WindowShape.X; i++ {
		for j := 0; j < WindowShape.Y; j++ {
			for k := 0; k < WindowShape.Z; k++ {
				dx := i - windowAnchor[0]
				dy := j - windowAnchor[1]
				dz := k - windowAnchor[2]
				offsets[WindowShape.offset(i, j, k)] = dz*plane + dy*padded.Width + dx
			}
		}
	}
	return offsets
}
