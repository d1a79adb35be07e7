package policy

import (
	"github.com/oarkflow/bitwise"
)

// Capability names the coarse-grained actions a user's account can be
// granted, independent of path. This supplements the path allow-list and
// file-type/protected-path rules with a per-account CRUD grant: an account
// can be provisioned read-only, for example, without touching the path
// rules at all.
const (
	CapRead        = "read"
	CapReadContent = "read-content"
	CapCreate      = "create"
	CapUpdate      = "update"
	CapDelete      = "delete"
)

// DefaultCapabilities grants every capability; most users are provisioned
// with this set.
var DefaultCapabilities = []string{CapRead, CapReadContent, CapCreate, CapUpdate, CapDelete}

var capFactory = bitwise.Factory([]string{CapRead, CapReadContent, CapCreate, CapUpdate, CapDelete})

// SerializeCapabilities packs a capability name list into the bitmask
// stored on the user record.
func SerializeCapabilities(caps []string) int64 {
	return capFactory.Serialize(caps)
}

// DeserializeCapabilities unpacks a bitmask back into capability names.
func DeserializeCapabilities(mask int64) []string {
	return capFactory.Deserialize(mask)
}

// Can reports whether mask grants capability cap.
func Can(mask int64, cap string) bool {
	return capFactory.Has(mask, cap)
}
