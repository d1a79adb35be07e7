// Package policy implements the three independent access checks every
// SFTP verb must pass before it reaches the store: the per-user path
// allow-list, the ledgers/invoices PDF-only file-type rule, and the
// protected-path rule that makes the system-owned directories immutable.
package policy

import (
	"strings"
)

// DefaultAllowedPrefixes is the allow-list applied to a user with no
// per-user override.
var DefaultAllowedPrefixes = []string{"/", "/ledgers", "/invoices"}

// Admitted reports whether virtualPath is within the user's scope: the
// per-user allow-list, the user's own home directory, or a top-level
// single-segment path. virtualPath must already be normalized (see
// vpath.Normalize).
func Admitted(username string, allowedPrefixes []string, virtualPath string) bool {
	if len(allowedPrefixes) == 0 {
		allowedPrefixes = DefaultAllowedPrefixes
	}
	for _, prefix := range allowedPrefixes {
		if virtualPath == prefix || strings.HasPrefix(virtualPath, prefix+"/") {
			return true
		}
	}
	if virtualPath == "/"+username || strings.HasPrefix(virtualPath, "/"+username+"/") {
		return true
	}
	if isTopLevelSingleSegment(virtualPath) {
		return true
	}
	return false
}

// isTopLevelSingleSegment reports whether p is "/name" with no further
// slashes, the root-level-upload admission rule. Admitted checks it last,
// after the allow-list and home-directory checks, against the unmapped
// virtual path; it does not single out the ledgers/invoices aliases, so
// "/ledgers" passes it too. vpath.Map sends such a path to the same key
// the alias rewrite produces, so the two rules never select different
// objects.
func isTopLevelSingleSegment(p string) bool {
	if p == "/" {
		return false
	}
	return strings.Count(p, "/") == 1
}

// protectedNames are the directory names whose virtual paths (top-level
// and per-user) users may never remove, rename, or target with
// MKDIR/RMDIR.
var protectedNames = []string{"ledgers", "invoices"}

// IsProtected reports whether virtualPath (normalized) is one of the
// protected paths: /ledgers, /invoices, /<user>/ledgers, /<user>/invoices,
// or a ".directory"/".dir" marker of one of those.
func IsProtected(username, virtualPath string) bool {
	candidates := []string{virtualPath, strings.TrimSuffix(virtualPath, "/.directory"), strings.TrimSuffix(virtualPath, "/.dir")}
	for _, c := range candidates {
		for _, name := range protectedNames {
			if c == "/"+name || c == "/"+username+"/"+name {
				return true
			}
		}
	}
	return false
}

// underLedgersOrInvoices reports whether virtualPath falls under a
// ledgers/invoices directory, either the top-level alias or the per-user
// subtree, and if so returns the filename component (the segment after
// that directory) and whether one was present.
func underLedgersOrInvoices(username, virtualPath string) (filename string, under bool) {
	for _, name := range protectedNames {
		for _, base := range []string{"/" + name, "/" + username + "/" + name} {
			if virtualPath == base {
				return "", true
			}
			if strings.HasPrefix(virtualPath, base+"/") {
				rest := strings.TrimPrefix(virtualPath, base+"/")
				return rest, true
			}
		}
	}
	return "", false
}

// AllowsWrite applies the file-type policy: OPEN-for-WRITE under
// ledgers/invoices is allowed only for a filename (not the bare directory)
// ending in ".pdf" (case-insensitive). Paths outside ledgers/invoices are
// unrestricted by this rule.
func AllowsWrite(username, virtualPath string) bool {
	filename, under := underLedgersOrInvoices(username, virtualPath)
	if !under {
		return true
	}
	if filename == "" || strings.Contains(filename, "/") {
		return false
	}
	return strings.HasSuffix(strings.ToLower(filename), ".pdf")
}

// RequiresPDF reports whether virtualPath falls under a ledgers/invoices
// directory, so CLOSE-time validation should re-check the ".pdf" suffix
// even if OPEN-time admission already did.
func RequiresPDF(username, virtualPath string) bool {
	_, under := underLedgersOrInvoices(username, virtualPath)
	return under
}
