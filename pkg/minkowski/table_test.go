package minkowski

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sharedTable     *Table
	sharedTableErr  error
	sharedTableOnce sync.Once
)

// builtTable builds the full lookup table once per test binary.
func builtTable(t testing.TB) *Table {
	t.Helper()
	sharedTableOnce.Do(func() {
		sharedTable, sharedTableErr = BuildTable()
	})
	require.NoError(t, sharedTableErr)
	return sharedTable
}

func TestEnumerateSmallShape(t *testing.T) {
	shape := Shape{X: 1, Y: 1, Z: 3}
	all, err := Enumerate(shape)
	require.NoError(t, err)
	require.Equal(t, 8, all.Len())

	// The first cell is split first, so it varies slowest.
	want := [][]uint8{
		{0, 0, 0}, {0, 0, 1}, {0, 1, 0}, {0, 1, 1},
		{1, 0, 0}, {1, 0, 1}, {1, 1, 0}, {1, 1, 1},
	}
	for n := 0; n < all.Len(); n++ {
		w := all.Window(n)
		assert.Equal(t, shape, w.Shape)
		assert.Equal(t, want[n], w.Cells, "assignment %d", n)
	}
}

func TestEnumerateCoversEveryPattern(t *testing.T) {
	shape := Shape{X: 2, Y: 2, Z: 2}
	all, err := Enumerate(shape)
	require.NoError(t, err)
	require.Equal(t, 256, all.Len())

	seen := make(map[Pattern]bool)
	for n := 0; n < all.Len(); n++ {
		p, err := all.Window(n).Pattern()
		require.NoError(t, err, "assignment %d still has unassigned cells", n)
		assert.False(t, seen[p], "pattern %#x repeated", p)
		seen[p] = true
	}
	assert.Len(t, seen, 256)
}

func TestEnumerateRejectsBadShapes(t *testing.T) {
	_, err := Enumerate(Shape{X: 0, Y: 3, Z: 2})
	assert.ErrorIs(t, err, ErrInvalidWindowShape)

	_, err = Enumerate(Shape{X: 5, Y: 5, Z: 1})
	assert.ErrorIs(t, err, ErrTableTooLarge)
}

func TestBuildTableForShapeRequiresWindowShape(t *testing.T) {
	// A cube of edge 3 is not the geometry the classifier reads.
	_, err := BuildTableForShape(Shape{X: 3, Y: 3, Z: 3})
	assert.ErrorIs(t, err, ErrConfigurationMismatch)

	_, err = BuildTableForShape(Shape{X: 2, Y: 3, Z: 3})
	assert.ErrorIs(t, err, ErrConfigurationMismatch)
}

func TestBuildTable(t *testing.T) {
	table := builtTable(t)

	assert.Equal(t, WindowShape, table.Shape())
	assert.Equal(t, 1<<18, table.Len())

	count := 0
	table.Range(func(p Pattern, inc Increments) bool {
		want, err := Classify(p.Window(WindowShape))
		require.NoError(t, err)
		if inc != want {
			t.Errorf("pattern %#x: table %+v, classifier %+v", p, inc, want)
			return false
		}
		count++
		return true
	})
	assert.Equal(t, table.Len(), count)

	_, ok := table.Lookup(Pattern(1 << 18))
	assert.False(t, ok)
}

func TestNewTable(t *testing.T) {
	table := builtTable(t)

	entries := make([]Increments, 0, table.Len())
	table.Range(func(_ Pattern, inc Increments) bool {
		entries = append(entries, inc)
		return true
	})

	copied, err := NewTable(WindowShape, entries)
	require.NoError(t, err)
	assert.Equal(t, table.entries, copied.entries)

	entries[0].N3 = 9
	got, _ := copied.Lookup(0)
	assert.Zero(t, got.N3, "NewTable must copy its input")

	_, err = NewTable(Shape{X: 3, Y: 3, Z: 3}, entries)
	assert.ErrorIs(t, err, ErrConfigurationMismatch)

	_, err = NewTable(WindowShape, entries[:100])
	assert.ErrorIs(t, err, ErrConfigurationMismatch)
}

func BenchmarkBuildTable(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := BuildTable(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEnumerate(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := Enumerate(WindowShape); err != nil {
			b.Fatal(err)
		}
	}
}
