// Package handles implements the per-session map from opaque 32-bit
// handles to open-file/open-directory state.
package handles

import (
	"encoding/binary"
	"fmt"
	"sync"
)

// Kind identifies which of the three handle state shapes a handle holds.
type Kind int

const (
	KindFileRead Kind = iota
	KindFileWrite
	KindDirectory
)

// ErrUnknownHandle is returned when a handle is not present in the table.
var ErrUnknownHandle = fmt.Errorf("unknown handle")

// ErrWrongKind is returned when a handle exists but holds a different
// Kind than the caller expected (e.g. a WRITE on a directory handle).
var ErrWrongKind = fmt.Errorf("handle is the wrong kind")

// Table is a per-session handle table. The zero value is not usable; use
// New. Safe for concurrent use by the request-router goroutines serving
// one session (SFTP is single-request-at-a-time per channel, but CLOSE's
// deferred completion and idle-timer callbacks can still race a table
// lookup against allocation).
type Table struct {
	mu      sync.Mutex
	counter uint32
	entries map[uint32]entry
}

type entry struct {
	kind  Kind
	state interface{}
}

// New returns an empty handle table.
func New() *Table {
	return &Table{entries: make(map[uint32]entry)}
}

// Allocate reserves a new, unique handle for state and returns its 4-byte
// big-endian wire encoding.
func (t *Table) Allocate(kind Kind, state interface{}) []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counter++
	id := t.counter
	t.entries[id] = entry{kind: kind, state: state}
	return encode(id)
}

// Lookup resolves a wire handle to its state, failing if the handle is
// unknown or holds a different kind than expected.
func (t *Table) Lookup(wire []byte, want Kind) (interface{}, error) {
	id, err := decode(wire)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[id]
	if !ok {
		return nil, ErrUnknownHandle
	}
	if e.kind != want {
		return nil, ErrWrongKind
	}
	return e.state, nil
}

// Release frees a handle. Releasing an unknown handle is a no-op.
func (t *Table) Release(wire []byte) {
	id, err := decode(wire)
	if err != nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, id)
}

// Len reports the number of currently open handles, for diagnostics.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

func encode(id uint32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, id)
	return buf
}

func decode(wire []byte) (uint32, error) {
	if len(wire) != 4 {
		return 0, fmt.Errorf("malformed handle: want 4 bytes, got %d", len(wire))
	}
	return binary.BigEndian.Uint32(wire), nil
}
