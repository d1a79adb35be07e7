// Package namespace implements the pure function that turns a flat LIST
// result into the hierarchical view an SFTP client expects immediately
// under one prefix.
package namespace

import (
	"sort"
	"strings"
	"time"
)

// Entry is one visible directory entry.
type Entry struct {
	Name      string
	IsDir     bool
	Size      int64
	ModTime   time.Time
	ObjectKey string // empty for synthetic/inferred directories with no marker object
}

// Key is one object key the caller observed under the listed prefix,
// alongside its size and modification time (as returned by LIST).
type Key struct {
	Key     string
	Size    int64
	ModTime time.Time
}

// View materializes the entries that live immediately under prefix (no
// trailing slash) given the full set of keys sharing that prefix. It
// implements the classification rules exactly, including the
// directory-beats-file precedence on de-duplication.
func View(prefix string, keys []Key) []Entry {
	type state struct {
		isDir     bool
		size      int64
		modTime   time.Time
		objectKey string
		hasMarker bool
	}
	byName := make(map[string]*state)

	order := func(name string) {
		if _, ok := byName[name]; !ok {
			byName[name] = &state{}
		}
	}

	// Single pass over the keys: direct files, direct ".directory"
	// markers, and nested keys, each of which marks its own top segment
	// as a directory (rule 4).
	for _, k := range keys {
		rel := strings.TrimPrefix(k.Key, prefix)
		if rel == "/.dir" {
			continue // rule 1: legacy root marker, never shown
		}
		rel = strings.TrimPrefix(rel, "/")
		if rel == "" {
			continue
		}
		segments := strings.SplitN(rel, "/", 2)
		name := segments[0]

		if len(segments) == 1 {
			if name == ".directory" || name == ".dir" {
				continue
			}
			// rule 2: exactly one segment after the prefix -> file.
			order(name)
			st := byName[name]
			if !st.isDir {
				st.size = k.Size
				st.modTime = k.ModTime
				st.objectKey = k.Key
			}
			continue
		}

		// rel has a further slash: either a ".directory" marker for name,
		// or some other nested object under name/.
		if segments[1] == ".directory" {
			// rule 3: direct marker -> directory, strip the marker suffix.
			order(name)
			st := byName[name]
			st.isDir = true
			st.hasMarker = true
			st.modTime = k.ModTime
			st.objectKey = k.Key
			continue
		}
		// rule 4: inferred directory. This key continues past
		// prefix/name/, so name is a directory even without a marker.
		order(name)
		st := byName[name]
		if !st.hasMarker {
			st.isDir = true
		}
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		st := byName[name]
		e := Entry{Name: name, IsDir: st.isDir, ObjectKey: st.objectKey}
		if !st.isDir {
			e.Size = st.size
			e.ModTime = st.modTime
		} else {
			e.ModTime = st.modTime
		}
		entries = append(entries, e)
	}
	return entries
}

// VirtualRootEntries returns the three synthetic entries (<username>,
// ledgers, invoices) that replace whatever LIST would have returned when a
// directory listing resolves to the root of a user's view.
func VirtualRootEntries(username string, now time.Time) []Entry {
	return []Entry{
		{Name: username, IsDir: true, ModTime: now},
		{Name: "ledgers", IsDir: true, ModTime: now},
		{Name: "invoices", IsDir: true, ModTime: now},
	}
}
