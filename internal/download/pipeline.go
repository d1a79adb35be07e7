// Package download implements ranged reads from the store with EOF
// accounting.
package download

import (
	"context"
	"io"
	"sync"

	"github.com/nimbusdepot/gatesftp/internal/store"
)

// Handle is the per-open-file-for-read state. It implements io.ReaderAt so
// it can be returned directly from Fileread, matching how the backing
// store's own ranged GET is exposed.
type Handle struct {
	ObjectKey string
	Size      int64

	ctx context.Context
	cli store.Client

	mu        sync.Mutex
	readAtEOF bool
}

// NewHandle returns a read handle for an object already confirmed to
// exist, with its size recorded from the OPEN-time LIST.
func NewHandle(ctx context.Context, cli store.Client, objectKey string, size int64) *Handle {
	return &Handle{ctx: ctx, cli: cli, ObjectKey: objectKey, Size: size}
}

// ReadAt services one READ(offset, length): clamps length to the object's
// remaining size, issues the ranged GET, and latches EOF once the read
// reaches the end of the object.
func (h *Handle) ReadAt(p []byte, offset int64) (int, error) {
	h.mu.Lock()
	if h.readAtEOF {
		h.mu.Unlock()
		return 0, io.EOF
	}
	if offset >= h.Size {
		h.readAtEOF = true
		h.mu.Unlock()
		return 0, io.EOF
	}
	h.mu.Unlock()

	length := len(p)
	remaining := h.Size - offset
	if int64(length) > remaining {
		length = int(remaining)
	}
	if length == 0 {
		h.mu.Lock()
		h.readAtEOF = true
		h.mu.Unlock()
		return 0, io.EOF
	}

	rc, err := h.cli.Get(h.ctx, h.ObjectKey, offset, offset+int64(length)-1)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	n, err := io.ReadFull(rc, p[:length])
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return n, err
	}

	var retErr error
	if offset+int64(n) >= h.Size {
		h.mu.Lock()
		h.readAtEOF = true
		h.mu.Unlock()
		retErr = io.EOF
	}
	return n, retErr
}
