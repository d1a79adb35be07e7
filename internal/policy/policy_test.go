package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdmitted(t *testing.T) {
	cases := []struct {
		name     string
		username string
		allowed  []string
		path     string
		want     bool
	}{
		{"default prefix root", "alice", nil, "/", true},
		{"default prefix ledgers", "alice", nil, "/ledgers/jan.pdf", true},
		{"own home", "alice", nil, "/alice/notes.txt", true},
		{"top-level single segment", "alice", nil, "/scratch", true},
		{"top-level nested rejected", "alice", nil, "/scratch/deep/file", false},
		{"override prefix", "alice", []string{"/shared"}, "/shared/doc.txt", true},
		{"override excludes default", "alice", []string{"/shared"}, "/ledgers/jan.pdf", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Admitted(c.username, c.allowed, c.path))
		})
	}
}

func TestIsProtected(t *testing.T) {
	assert.True(t, IsProtected("alice", "/ledgers"))
	assert.True(t, IsProtected("alice", "/invoices"))
	assert.True(t, IsProtected("alice", "/alice/ledgers"))
	assert.True(t, IsProtected("alice", "/ledgers/.directory"))
	assert.False(t, IsProtected("alice", "/ledgers/jan.pdf"))
	assert.False(t, IsProtected("alice", "/scratch"))
}

func TestAllowsWrite(t *testing.T) {
	cases := []struct {
		name string
		path string
		want bool
	}{
		{"pdf under ledgers", "/ledgers/jan.pdf", true},
		{"case-insensitive extension", "/ledgers/jan.PDF", true},
		{"non-pdf under ledgers rejected", "/ledgers/jan.txt", false},
		{"bare ledgers dir rejected", "/ledgers", false},
		{"nested under ledgers rejected", "/ledgers/2024/jan.pdf", false},
		{"outside ledgers unrestricted", "/scratch/notes.txt", true},
		{"per-user invoices alias", "/alice/invoices/feb.pdf", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, AllowsWrite("alice", c.path))
		})
	}
}

func TestRequiresPDF(t *testing.T) {
	assert.True(t, RequiresPDF("alice", "/ledgers/jan.pdf"))
	assert.True(t, RequiresPDF("alice", "/ledgers"))
	assert.False(t, RequiresPDF("alice", "/scratch/jan.pdf"))
}

func TestCapabilities(t *testing.T) {
	mask := SerializeCapabilities([]string{CapRead, CapReadContent})
	assert.True(t, Can(mask, CapRead))
	assert.True(t, Can(mask, CapReadContent))
	assert.False(t, Can(mask, CapCreate))
	assert.False(t, Can(mask, CapDelete))

	names := DeserializeCapabilities(mask)
	assert.ElementsMatch(t, []string{CapRead, CapReadContent}, names)
}
