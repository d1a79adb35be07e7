package namespace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestView_DirectFile(t *testing.T) {
	now := time.Now()
	entries := View("users/alice", []Key{
		{Key: "users/alice/report.csv", Size: 42, ModTime: now},
	})
	require.Len(t, entries, 1)
	assert.Equal(t, "report.csv", entries[0].Name)
	assert.False(t, entries[0].IsDir)
	assert.Equal(t, int64(42), entries[0].Size)
}

func TestView_DirectoryMarker(t *testing.T) {
	entries := View("users/alice", []Key{
		{Key: "users/alice/archive/.directory"},
	})
	require.Len(t, entries, 1)
	assert.Equal(t, "archive", entries[0].Name)
	assert.True(t, entries[0].IsDir)
}

func TestView_InferredDirectory(t *testing.T) {
	entries := View("users/alice", []Key{
		{Key: "users/alice/archive/2024/jan.pdf"},
	})
	require.Len(t, entries, 1)
	assert.Equal(t, "archive", entries[0].Name)
	assert.True(t, entries[0].IsDir)
}

func TestView_DirectoryBeatsFileOnDedup(t *testing.T) {
	// A plain object, a marker, and an inferred-directory key all exist
	// for "archive"; the directory classification must win over the file.
	entries := View("users/alice", []Key{
		{Key: "users/alice/archive", Size: 7},
		{Key: "users/alice/archive/.directory"},
		{Key: "users/alice/archive/nested/file.txt"},
	})
	require.Len(t, entries, 1)
	assert.True(t, entries[0].IsDir)
}

func TestView_LegacyRootMarkerHidden(t *testing.T) {
	entries := View("users/alice", []Key{
		{Key: "users/alice/.dir"},
		{Key: "users/alice/report.csv"},
	})
	require.Len(t, entries, 1)
	assert.Equal(t, "report.csv", entries[0].Name)
}

func TestView_SortedByName(t *testing.T) {
	entries := View("users/alice", []Key{
		{Key: "users/alice/zeta.txt"},
		{Key: "users/alice/alpha.txt"},
	})
	require.Len(t, entries, 2)
	assert.Equal(t, "alpha.txt", entries[0].Name)
	assert.Equal(t, "zeta.txt", entries[1].Name)
}

func TestVirtualRootEntries(t *testing.T) {
	now := time.Now()
	entries := VirtualRootEntries("alice", now)
	require.Len(t, entries, 3)
	names := []string{entries[0].Name, entries[1].Name, entries[2].Name}
	assert.ElementsMatch(t, []string{"alice", "ledgers", "invoices"}, names)
	for _, e := range entries {
		assert.True(t, e.IsDir)
	}
}
