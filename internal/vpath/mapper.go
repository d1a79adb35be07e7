// Package vpath implements the bidirectional mapping between SFTP
// virtual paths and object-store keys.
package vpath

import (
	"strings"
)

// aliasRoots are the top-level virtual directory names that are
// transparently redirected into the user's own home subtree. Order
// matters only for documentation purposes; lookups are by exact segment
// match.
var aliasRoots = []string{"ledgers", "invoices"}

// Normalize converts backslashes to forward slashes, collapses repeated
// slashes, resolves "." and ".." segments, strips trailing slashes (except
// root), and ensures a leading "/". A ".." that would climb above the
// virtual root is simply dropped rather than rejected: the result is always
// a clean absolute path, and Map prepends the user's home prefix to it
// unconditionally, so there is no key a client can construct that escapes
// that prefix.
func Normalize(p string) string {
	if p == "" {
		return "/"
	}
	p = strings.ReplaceAll(p, "\\", "/")
	segments := strings.Split(p, "/")
	var clean []string
	for _, seg := range segments {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(clean) > 0 {
				clean = clean[:len(clean)-1]
			}
		default:
			clean = append(clean, seg)
		}
	}
	if len(clean) == 0 {
		return "/"
	}
	return "/" + strings.Join(clean, "/")
}

// Map translates a virtual path into an object-store key under homePrefix,
// applying the ledgers/invoices virtual-alias rewrite.
func Map(homePrefix, virtualPath string) string {
	norm := Normalize(virtualPath)
	if alias, rest, ok := splitAlias(norm); ok {
		if rest == "" {
			return homePrefix + "/" + alias
		}
		return homePrefix + "/" + alias + rest
	}
	return homePrefix + norm
}

// splitAlias reports whether norm begins with one of the virtual alias
// roots ("/ledgers" or "/invoices", exactly or as a directory prefix), and
// if so returns the alias name and the remainder of the path (which begins
// with "/" or is empty).
func splitAlias(norm string) (alias, rest string, ok bool) {
	for _, a := range aliasRoots {
		prefix := "/" + a
		if norm == prefix {
			return a, "", true
		}
		if strings.HasPrefix(norm, prefix+"/") {
			return a, norm[len(prefix):], true
		}
	}
	return "", "", false
}

// IsAlias reports whether virtualPath falls under one of the top-level
// virtual alias roots.
func IsAlias(virtualPath string) bool {
	_, _, ok := splitAlias(Normalize(virtualPath))
	return ok
}

// ToDisplay strips the prefix from key and returns the remaining path
// relative to prefix, for presenting object keys back to the client as
// directory-entry names. prefix must not have a trailing slash.
func ToDisplay(key, prefix string) string {
	rel := strings.TrimPrefix(key, prefix)
	return strings.TrimPrefix(rel, "/")
}
