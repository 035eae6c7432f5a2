package minkowski

import "fmt"

// MaxTableCells bounds the window size that may be enumerated. A table over n
// cells has 1<<n entries.
const MaxTableCells = 24

// unassigned marks a cell not yet fixed during enumeration.
const unassigned uint8 = 0xff

// Assignments holds every binary assignment of a shape's cells, stored back to
// back in one buffer.
type Assignments struct {
	Shape Shape
	cells []uint8
	count int
}

// Len returns the number of assignments.
func (a *Assignments) Len() int {
	return a.count
}

// Window returns assignment n as a window sharing the underlying buffer.
func (a *Assignments) Window(n int) Window {
	size := a.Shape.Cells()
	return Window{Shape: a.Shape, Cells: a.cells[n*size : (n+1)*size : (n+1)*size]}
}

// Enumerate produces all 1<<cells binary assignments of shape by iterative
// doubling: starting from one template with every cell unassigned, each cell
// position in turn splits every partial assignment into a copy with that cell
// set to 0 and a copy with it set to 1. Each generation lives in a single flat
// buffer twice the size of the previous one.
func Enumerate(shape Shape) (*Assignments, error) {
	if !shape.valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidWindowShape, shape)
	}
	size := shape.Cells()
	if size > MaxTableCells {
		return nil, fmt.Errorf("%w: %s has %d cells, limit %d", ErrTableTooLarge, shape, size, MaxTableCells)
	}

	current := make([]uint8, size)
	for i := range current {
		current[i] = unassigned
	}
	count := 1

	for pos := 0; pos < size; pos++ {
		next := make([]uint8, 2*count*size)
		for n := 0; n < count; n++ {
			parent := current[n*size : (n+1)*size]
			zero := next[2*n*size : (2*n+1)*size]
			one := next[(2*n+1)*size : (2*n+2)*size]
			copy(zero, parent)
			copy(one, parent)
			zero[pos] = 0
			one[pos] = 1
		}
		current = next
		count *= 2
	}

	return &Assignments{Shape: shape, cells: current, count: count}, nil
}

// Table maps every window pattern to its classification. It is immutable once
// built and safe for concurrent use.
type Table struct {
	shape   Shape
	entries []Increments
}

// BuildTable classifies every binary window of WindowShape once.
func BuildTable() (*Table, error) {
	return BuildTableForShape(WindowShape)
}

// BuildTableForShape enumerates shape and classifies each assignment. The
// classifier only understands WindowShape, so any other shape is rejected
// before enumeration starts.
func BuildTableForShape(shape Shape) (*Table, error) {
	if shape != WindowShape {
		return nil, fmt.Errorf("%w: table shape %s, classifier expects %s",
			ErrConfigurationMismatch, shape, WindowShape)
	}
	all, err := Enumerate(shape)
	if err != nil {
		return nil, err
	}

	entries := make([]Increments, 1<<shape.Cells())
	seen := make([]bool, len(entries))
	for n := 0; n < all.Len(); n++ {
		w := all.Window(n)
		p, err := w.Pattern()
		if err != nil {
			return nil, fmt.Errorf("assignment %d: %w", n, err)
		}
		if seen[p] {
			return nil, fmt.Errorf("pattern %#x enumerated twice", uint32(p))
		}
		inc, err := Classify(w)
		if err != nil {
			return nil, err
		}
		seen[p] = true
		entries[p] = inc
	}
	for p, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("pattern %#x never enumerated", p)
		}
	}

	return &Table{shape: shape, entries: entries}, nil
}

// NewTable wraps previously computed entries, indexed by Pattern, as a table.
// It fails with ErrConfigurationMismatch unless shape is WindowShape and there
// is exactly one entry per pattern. The entries are copied.
func NewTable(shape Shape, entries []Increments) (*Table, error) {
	if shape != WindowShape {
		return nil, fmt.Errorf("%w: table shape %s, classifier expects %s",
			ErrConfigurationMismatch, shape, WindowShape)
	}
	if want := 1 << shape.Cells(); len(entries) != want {
		return nil, fmt.Errorf("%w: table has %d entries, want %d",
			ErrConfigurationMismatch, len(entries), want)
	}
	t := &Table{shape: shape, entries: make([]Increments, len(entries))}
	copy(t.entries, entries)
	return t, nil
}

// Shape returns the window geometry the table was built for.
func (t *Table) Shape() Shape {
	return t.shape
}

// Len returns the number of patterns in the table.
func (t *Table) Len() int {
	return len(t.entries)
}

// Lookup returns the increments stored for p.
func (t *Table) Lookup(p Pattern) (Increments, bool) {
	if int(p) >= len(t.entries) {
		return Increments{}, false
	}
	return t.entries[p], true
}

// Range calls fn for every pattern in ascending order until fn returns false.
func (t *Table) Range(fn func(p Pattern, inc Increments) bool) {
	for p, inc := range t.entries {
		if !fn(Pattern(p), inc) {
			return
		}
	}
}

// checkTable verifies that t can stand in for the classifier.
func checkTable(t *Table) error {
	if t.shape != WindowShape || len(t.entries) != 1<<WindowShape.Cells() {
		return fmt.Errorf("%w: table built for %s with %d entries, aggregation uses %s",
			ErrConfigurationMismatch, t.shape, len(t.entries), WindowShape)
	}
	return nil
}
