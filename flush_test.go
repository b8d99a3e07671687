package tierstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/tierstore/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createObject(t *testing.T, src *Source, loc *Location, name string, data []byte) {
	t.Helper()

	obj, err := src.Open(loc, name, OpenCreate)
	require.NoError(t, err)
	if len(data) > 0 {
		_, err = obj.WriteAt(data, 0)
		require.NoError(t, err)
	}
	require.NoError(t, obj.Close())
}

func markerExists(t *testing.T, loc *Location, name string) bool {
	t.Helper()

	_, err := os.Stat(filepath.Join(loc.Bucket(), "FLUSH_"+loc.ClusterPrefix()+name))
	if err != nil {
		require.True(t, os.IsNotExist(err))
		return false
	}
	return true
}

func TestFlush_SingleObject(t *testing.T) {
	src := newTestSource(t)
	loc := newTestLocation(t, src, "c1")

	createObject(t, src, loc, "a", []byte("aa"))
	createObject(t, src, loc, "b", []byte("bb"))
	createObject(t, src, loc, "c", []byte("cc"))
	require.Equal(t, 3, src.PendingFlushes())

	// Flushing one named object retires exactly that record and marker.
	require.NoError(t, src.Flush(context.Background(), loc, "b"))

	assert.Equal(t, 2, src.PendingFlushes())
	assert.True(t, markerExists(t, loc, "a"))
	assert.False(t, markerExists(t, loc, "b"))
	assert.True(t, markerExists(t, loc, "c"))
}

func TestFlush_WholeLocation(t *testing.T) {
	src := newTestSource(t)
	loc1 := newTestLocation(t, src, "c1")
	loc2 := newTestLocation(t, src, "c2")

	createObject(t, src, loc1, "a", nil)
	createObject(t, src, loc1, "b", nil)
	createObject(t, src, loc2, "x", nil)

	// Location-scoped flush retires all and only that location's records.
	require.NoError(t, src.Flush(context.Background(), loc1, ""))

	assert.Equal(t, 1, src.PendingFlushes())
	assert.False(t, markerExists(t, loc1, "a"))
	assert.False(t, markerExists(t, loc1, "b"))
	assert.True(t, markerExists(t, loc2, "x"))

	pending, err := src.ListPending(loc2, "", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, pending)
}

func TestFlush_Global(t *testing.T) {
	src := newTestSource(t)
	loc1 := newTestLocation(t, src, "c1")
	loc2 := newTestLocation(t, src, "c2")

	createObject(t, src, loc1, "a", nil)
	createObject(t, src, loc2, "x", nil)

	require.NoError(t, src.Flush(context.Background(), nil, ""))

	assert.Equal(t, 0, src.PendingFlushes())
	assert.False(t, markerExists(t, loc1, "a"))
	assert.False(t, markerExists(t, loc2, "x"))
}

func TestFlush_NameWithoutLocation(t *testing.T) {
	src := newTestSource(t)
	loc := newTestLocation(t, src, "c1")
	createObject(t, src, loc, "a", nil)

	err := src.Flush(context.Background(), nil, "a")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	// Nothing was mutated.
	assert.Equal(t, 1, src.PendingFlushes())
	assert.True(t, markerExists(t, loc, "a"))
}

func TestFlush_ForceError(t *testing.T) {
	src := newTestSource(t, WithForceError(3))
	loc := newTestLocation(t, src, "c1")

	names := []string{"o1", "o2", "o3", "o4", "o5", "o6"}
	for _, name := range names {
		createObject(t, src, loc, name, nil)
	}

	// The 3rd and 6th flushed objects (by global count) fail, but every
	// record and marker is retired anyway: flush is not retryable.
	err := src.Flush(context.Background(), nil, "")
	assert.ErrorIs(t, err, ErrSimulatedNetwork)

	assert.Equal(t, 0, src.PendingFlushes())
	for _, name := range names {
		assert.False(t, markerExists(t, loc, name), name)
	}
	assert.Equal(t, uint64(6), src.Stats().ObjectFlushes)
}

func TestFlush_ForceErrorCountsGlobally(t *testing.T) {
	src := newTestSource(t, WithForceError(2))
	loc1 := newTestLocation(t, src, "c1")
	loc2 := newTestLocation(t, src, "c2")

	createObject(t, src, loc1, "a", nil)
	createObject(t, src, loc2, "x", nil)

	// First flush is fine, the 2nd trips the injected error even though
	// it is the first flush of its location.
	require.NoError(t, src.Flush(context.Background(), loc1, ""))
	err := src.Flush(context.Background(), loc2, "")
	assert.ErrorIs(t, err, ErrSimulatedNetwork)
}

func TestFlush_UploadsToTier(t *testing.T) {
	tier := remote.NewMemoryTier()
	src := newTestSource(t, WithTier(tier))
	loc := newTestLocation(t, src, "c1")

	data := []byte("segment bytes")
	createObject(t, src, loc, "seg-1", data)

	require.NoError(t, src.Flush(context.Background(), loc, "seg-1"))

	uploads := tier.Uploads()
	require.Len(t, uploads, 1)
	assert.Equal(t, loc.Bucket(), uploads[0].Bucket)
	assert.Equal(t, "c1_seg-1", uploads[0].Name)
	assert.Equal(t, "kms-test-key", uploads[0].KMSID)

	stored, ok := tier.Object("c1_seg-1")
	require.True(t, ok)
	assert.Equal(t, data, stored)

	// Flush is idempotent on an empty queue.
	require.NoError(t, src.Flush(context.Background(), loc, "seg-1"))
	assert.Len(t, tier.Uploads(), 1)
}

func TestFlush_TierErrorStillRetires(t *testing.T) {
	tier := remote.NewMemoryTier()
	tier.SetErr(assert.AnError)

	src := newTestSource(t, WithTier(tier))
	loc := newTestLocation(t, src, "c1")
	createObject(t, src, loc, "a", []byte("x"))

	err := src.Flush(context.Background(), loc, "")
	assert.ErrorIs(t, err, assert.AnError)

	assert.Equal(t, 0, src.PendingFlushes())
	assert.False(t, markerExists(t, loc, "a"))
}

func TestFlush_FirstErrorWins(t *testing.T) {
	src := newTestSource(t, WithForceError(1)) // every flush errors
	loc := newTestLocation(t, src, "c1")

	createObject(t, src, loc, "a", nil)
	createObject(t, src, loc, "b", nil)

	err := src.Flush(context.Background(), nil, "")
	assert.ErrorIs(t, err, ErrSimulatedNetwork)
	// Draining continued past the first failure.
	assert.Equal(t, 0, src.PendingFlushes())
	assert.Equal(t, uint64(2), src.Stats().ObjectFlushes)
}
