package cache

import (
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

// memoryStore is an in-memory Store that records saves.
type memoryStore struct {
	table   *minkowski.Table
	loadErr error
	saveErr error
	saves   int
}

func (m *memoryStore) Load() (*minkowski.Table, error) {
	return m.table, m.loadErr
}

func (m *memoryStore) Save(table *minkowski.Table) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.table = table
	return nil
}

// countingChoice answers with a fixed value and counts questions.
type countingChoice struct {
	answer bool
	err    error
	asked  int
}

func (c *countingChoice) Confirm(string) (bool, error) {
	c.asked++
	return c.answer, c.err
}

func TestResolveUsesStoredTable(t *testing.T) {
	stored := builtTable(t)
	store := &memoryStore{table: stored}
	choice := &countingChoice{answer: true}

	got, err := Resolve(store, choice)
	require.NoError(t, err)
	assert.Same(t, stored, got)
	assert.Zero(t, choice.asked, "a stored table must not trigger a question")
	assert.Zero(t, store.saves)
}

func TestResolveBuildsAndSavesWhenConfirmed(t *testing.T) {
	store := &memoryStore{}
	choice := &countingChoice{answer: true}

	got, err := Resolve(store, choice)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1<<18, got.Len())
	assert.Equal(t, 1, choice.asked)
	assert.Equal(t, 1, store.saves)
	assert.Same(t, got, store.table)
}

func TestResolveDeclined(t *testing.T) {
	store := &memoryStore{}
	choice := &countingChoice{answer: false}

	got, err := Resolve(store, choice)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 1, choice.asked)
	assert.Zero(t, store.saves)
}

func TestResolveWithoutCollaborators(t *testing.T) {
	got, err := Resolve(nil, nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = Resolve(nil, &countingChoice{answer: true})
	require.NoError(t, err)
	assert.NotNil(t, got, "building without a store still returns the table")
}

func TestResolveErrors(t *testing.T) {
	boom := errors.New("boom")

	_, err := Resolve(&memoryStore{loadErr: boom}, &countingChoice{answer: true})
	assert.ErrorIs(t, err, boom)

	_, err = Resolve(&memoryStore{}, &countingChoice{err: boom})
	assert.ErrorIs(t, err, boom)

	// A failed save is reported but the table is still usable.
	store := &memoryStore{saveErr: boom}
	got, err := Resolve(store, &countingChoice{answer: true})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, 1, store.saves)
}
