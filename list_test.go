package tierstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_PrefixAndLimit(t *testing.T) {
	src := newTestSource(t)
	loc := newTestLocation(t, src, "c1")

	for _, name := range []string{"seg-1", "seg-2", "seg-3", "log-1"} {
		createObject(t, src, loc, name, nil)
	}

	names, err := src.List(loc, "", 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"seg-1", "seg-2", "seg-3", "log-1"}, names)

	names, err = src.List(loc, "seg-", 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"seg-1", "seg-2", "seg-3"}, names)

	names, err = src.List(loc, "seg-", 2)
	require.NoError(t, err)
	assert.Len(t, names, 2)
	for _, name := range names {
		assert.Contains(t, name, "seg-")
	}

	names, err = src.List(loc, "nothing-", 0)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestList_ClusterIsolation(t *testing.T) {
	src := newTestSource(t)

	// Two clusters sharing one bucket directory must not see each
	// other's objects.
	bucket := t.TempDir()
	loc1, err := src.OpenLocation(LocationConfig{Bucket: bucket, Cluster: "c1", KMSID: "k"})
	require.NoError(t, err)
	loc2, err := src.OpenLocation(LocationConfig{Bucket: bucket, Cluster: "c2", KMSID: "k"})
	require.NoError(t, err)

	createObject(t, src, loc1, "shared-name", nil)
	createObject(t, src, loc2, "shared-name", nil)
	createObject(t, src, loc2, "only-c2", nil)

	names, err := src.List(loc1, "", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"shared-name"}, names)

	names, err = src.List(loc2, "", 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"shared-name", "only-c2"}, names)

	exists, err := src.Exist(loc1, "only-c2")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestList_HidesMarkerFiles(t *testing.T) {
	src := newTestSource(t)
	loc := newTestLocation(t, src, "c1")

	createObject(t, src, loc, "done", nil)

	// An in-progress creation leaves TEMP_ and FLUSH_ artifacts around.
	obj, err := src.Open(loc, "in-progress", OpenCreate)
	require.NoError(t, err)
	defer obj.Close()

	names, err := src.List(loc, "", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"done"}, names)
}

func TestListPending(t *testing.T) {
	src := newTestSource(t)
	loc := newTestLocation(t, src, "c1")

	createObject(t, src, loc, "a", nil)
	createObject(t, src, loc, "b", nil)

	pending, err := src.ListPending(loc, "", 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, pending)

	pending, err = src.ListPending(loc, "a", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, pending)

	// The on-disk backlog shrinks with the flushes.
	require.NoError(t, src.Flush(context.Background(), loc, "a"))
	pending, err = src.ListPending(loc, "", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, pending)
}

func TestList_MissingBucket(t *testing.T) {
	src := newTestSource(t)
	loc, err := src.OpenLocation(LocationConfig{Bucket: "/nonexistent/bucket", Cluster: "c", KMSID: "k"})
	require.NoError(t, err)

	_, err = src.List(loc, "", 0)
	assert.Error(t, err)
}
