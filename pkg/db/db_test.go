package db

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minkowski3d/internal/models"
	"minkowski3d/internal/monitoring"
	"minkowski3d/pkg/minkowski"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	os.Exit(m.Run())
}

var (
	testTable     *minkowski.Table
	testTableErr  error
	testTableOnce sync.Once
)

func builtTable(t testing.TB) *minkowski.Table {
	t.Helper()
	testTableOnce.Do(func() {
		testTable, testTableErr = minkowski.BuildTable()
	})
	require.NoError(t, testTableErr)
	return testTable
}

func openTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := NewDB(filepath.Join(t.TempDir(), "minkowski.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})
	return d
}

func TestNewDBMigrates(t *testing.T) {
	d := openTestDB(t)

	version, dirty, err := d.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	// Migrating again is a no-op.
	require.NoError(t, d.MigrateUp())

	var journalMode string
	require.NoError(t, d.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)
}

func TestTableStoreEmpty(t *testing.T) {
	table, err := openTestDB(t).TableStore().Load()
	require.NoError(t, err)
	assert.Nil(t, table)
}

func TestTableStoreRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping full table round trip in short mode")
	}
	d := openTestDB(t)
	store := d.TableStore()
	want := builtTable(t)

	require.NoError(t, store.Save(want))
	// Saving twice replaces rather than duplicates.
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.Shape(), got.Shape())
	require.Equal(t, want.Len(), got.Len())
	want.Range(func(p minkowski.Pattern, inc minkowski.Increments) bool {
		other, _ := got.Lookup(p)
		if other != inc {
			t.Errorf("pattern %#x: want %+v, got %+v", p, inc, other)
			return false
		}
		return true
	})
}

func TestTableStoreRejectsOtherGeometry(t *testing.T) {
	d := openTestDB(t)
	_, err := d.Exec(`INSERT INTO lookup_meta (key, value) VALUES ('shape', '3x3x3')`)
	require.NoError(t, err)

	_, err = d.TableStore().Load()
	assert.ErrorIs(t, err, minkowski.ErrConfigurationMismatch)
}

func TestTableStoreRejectsIncompleteTable(t *testing.T) {
	d := openTestDB(t)
	_, err := d.Exec(`INSERT INTO lookup_meta (key, value) VALUES ('shape', '3x3x2')`)
	require.NoError(t, err)
	_, err = d.Exec(`INSERT INTO lookup_entries (pattern, dn3, dn2, dn1, dn0) VALUES (512, 1, 6, 12, 8)`)
	require.NoError(t, err)

	_, err = d.TableStore().Load()
	assert.ErrorIs(t, err, minkowski.ErrConfigurationMismatch)
}

func TestMeasurements(t *testing.T) {
	d := openTestDB(t)
	first := uuid.New()
	second := uuid.New()

	cube := models.Measurement{
		Name:     "cube.raw",
		Shape:    minkowski.Shape{X: 2, Y: 2, Z: 2},
		Voxels:   8,
		Method:   models.Lookup,
		Features: minkowski.Features{V: 8, S: 24, B: 3, Xi: 1},
		Elapsed:  1500 * time.Microsecond,
	}
	ring := models.Measurement{
		Name:     "ring",
		Shape:    minkowski.Shape{X: 3, Y: 3, Z: 1},
		Voxels:   8,
		Method:   models.Direct,
		Features: minkowski.Features{V: 8, S: 32, B: 4, Xi: 0},
		Elapsed:  time.Millisecond,
	}

	require.NoError(t, d.RecordMeasurement(first, cube))
	require.NoError(t, d.RecordMeasurement(second, ring))
	require.NoError(t, d.RecordMeasurement(first, ring))

	got, err := d.Measurements(first)
	require.NoError(t, err)
	if diff := cmp.Diff([]models.Measurement{cube, ring}, got); diff != "" {
		t.Errorf("measurements mismatch (-want +got):\n%s", diff)
	}

	runs, err := d.Runs()
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{first, second}, runs)

	none, err := d.Measurements(uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}
