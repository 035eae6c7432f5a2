package minkowski

import "fmt"

// Increments are the contributions of one window to the running totals
// n3, n2, n1 and n0. The largest possible value is 12 (N1 of an isolated
// voxel), so a byte per count keeps the lookup table compact.
type Increments struct {
	N3, N2, N1, N0 uint8
}

// Classify returns the incremental counts contributed by the voxel at the
// anchor (1,1,1) of w. A background voxel contributes nothing. For a
// foreground voxel the counts are polynomials over the complements of its
// neighbours, enumerating the cube faces, edges and vertices it adds that are
// not already owned by a neighbour visited earlier.
func Classify(w Window) (Increments, error) {
	if w.Shape != WindowShape || len(w.Cells) != WindowShape.Cells() {
		return Increments{}, fmt.Errorf("%w: got %s with %d cells, want %s",
			ErrInvalidWindowShape, w.Shape, len(w.Cells), WindowShape)
	}
	for n, c := range w.Cells {
		if c > 1 {
			return Increments{}, fmt.Errorf("%w: window cell %d holds %d", ErrNonBinary, n, c)
		}
	}
	return classify(w.Cells), nil
}

// classify evaluates the configuration polynomials on a validated window.
func classify(cells []uint8) Increments {
	if cells[WindowShape.offset(1, 1, 1)] == 0 {
		return Increments{}
	}
	q := func(i, j, k int) int {
		return 1 - int(cells[WindowShape.offset(i, j, k)])
	}

	dn2 := 3 + q(1, 1, 0) + q(1, 2, 1) + q(0, 1, 1)

	dn1 := 3 +
		q(1, 1, 0)*q(1, 2, 1)*q(1, 2, 0) +
		q(1, 1, 0)*q(2, 1, 0) +
		q(1, 1, 0)*q(1, 0, 0) +
		q(1, 1, 0)*q(0, 1, 1)*q(0, 1, 0) +
		q(1, 2, 1)*q(2, 2, 1) +
		2*q(0, 1, 1) +
		q(0, 2, 1)*q(1, 2, 1)*q(0, 1, 1) +
		q(1, 2, 1)

	dn0 := 1 +
		q(0, 1, 1) +
		q(1, 2, 1)*q(2, 2, 1) +
		q(0, 2, 1)*q(1, 2, 1)*q(0, 1, 1) +
		q(1, 1, 0)*q(2, 1, 0)*q(2, 0, 0)*q(1, 0, 0) +
		q(0, 1, 0)*q(1, 1, 0)*q(1, 0, 0)*q(0, 0, 0)*q(0, 1, 1) +
		q(1, 2, 0)*q(2, 2, 0)*q(2, 1, 0)*q(1, 1, 0)*q(1, 2, 1)*q(2, 2, 1) +
		q(0, 2, 0)*q(1, 2, 0)*q(1, 1, 0)*q(0, 1, 0)*q(0, 2, 1)*q(1, 2, 1)*q(0, 1, 1)

	return Increments{
		N3: 1,
		N2: uint8(dn2),
		N1: uint8(dn1),
		N0: uint8(dn0),
	}
}
