// Package upload buffers a client's incremental WRITEs for one file
// handle and emits a single object-store PUT at CLOSE, coordinated with
// the SFTP CLOSE response.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/nimbusdepot/gatesftp/internal/store"
)

// State is the upload-completion state a Handle transitions through.
type State int

const (
	Pending State = iota
	Complete
	Failed
)

// ErrEmptyFile is the validation failure for a zero-byte upload.
var ErrEmptyFile = fmt.Errorf("empty files not allowed")

// ErrNotPDF is the validation failure for a non-PDF write under
// ledgers/invoices.
var ErrNotPDF = fmt.Errorf("only .pdf uploads are allowed under ledgers/invoices")

// FxQuotaExceeded is the wire status this package's quota check maps to:
// SSH_FX_QUOTA_EXCEEDED, extension code 15 in the draft filexfer spec that
// github.com/pkg/sftp doesn't define a named constant for.
const FxQuotaExceeded = 15

// ErrQuotaExceeded is returned when a buffered upload's size would exceed
// the configured per-file limit.
type ErrQuotaExceeded struct {
	Limit int64
}

func (e ErrQuotaExceeded) Error() string {
	return fmt.Sprintf("upload exceeds the %d byte limit", e.Limit)
}

// Handle is the per-open-file-for-write state. WRITE appends are assumed
// to arrive in order; WriteAt reports a non-monotonic offset through
// OnNonMonotonicWrite and still appends the bytes, since true
// random-offset writes are not supported by the backing store.
type Handle struct {
	mu         sync.Mutex
	buf        bytes.Buffer
	nextOffset int64
	state      State
	err        error
	done       chan struct{}
	closed     bool

	// OnNonMonotonicWrite, if set, is called when a WriteAt arrives with an
	// offset that doesn't match the end of the buffer. The offset is
	// still treated as an append.
	OnNonMonotonicWrite func(gotOffset, wantOffset int64)

	// MaxSize caps the buffered size; zero means unlimited. A write that
	// would cross it sets state to Failed and every subsequent WriteAt
	// returns ErrQuotaExceeded without buffering further bytes.
	MaxSize int64
}

// NewHandle returns a fresh, empty write handle.
func NewHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

// Append adds bytes to the buffer in receipt order. It never touches the
// store: WRITE never suspends.
func (h *Handle) Append(p []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.buf.Write(p)
}

// WriteAt implements io.WriterAt so a Handle can be returned directly from
// Filewrite. offset is expected to equal the current buffer length (the
// store accepts only whole-object PUTs, so true random-offset writes
// aren't supported); a mismatch is logged via OnNonMonotonicWrite and
// treated as an append.
func (h *Handle) WriteAt(p []byte, offset int64) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state == Failed {
		return 0, h.err
	}
	if h.MaxSize > 0 && int64(h.buf.Len())+int64(len(p)) > h.MaxSize {
		h.state = Failed
		h.err = ErrQuotaExceeded{Limit: h.MaxSize}
		return 0, h.err
	}
	if offset != h.nextOffset && h.OnNonMonotonicWrite != nil {
		h.OnNonMonotonicWrite(offset, h.nextOffset)
	}
	n, _ := h.buf.Write(p)
	h.nextOffset = int64(h.buf.Len())
	return n, nil
}

// Len reports the current buffered size.
func (h *Handle) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.buf.Len()
}

// Bytes returns the buffered content. Only safe to call after the upload
// has committed (state is Complete or Failed); used by tests.
func (h *Handle) Bytes() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.buf.Bytes()
}

// Commit runs the CLOSE-time validation and PUT, then signals completion
// for any CLOSE call blocked in Wait. requirePDF is true when the target
// virtual path falls under ledgers/invoices (policy.AllowsWrite's callers
// should already have rejected the OPEN in the common case; this is the
// CLOSE-time belt-and-suspenders check).
func (h *Handle) Commit(ctx context.Context, cli store.Client, objectKey string, requirePDF bool) error {
	h.mu.Lock()
	if h.state == Failed {
		err := h.err
		if !h.closed {
			h.closed = true
			close(h.done)
		}
		h.mu.Unlock()
		return err
	}
	data := h.buf.Bytes()
	h.mu.Unlock()

	err := validate(data, objectKey, requirePDF)
	if err == nil {
		err = cli.Put(ctx, objectKey, bytes.NewReader(data), int64(len(data)), contentTypeFor(objectKey))
	}

	h.mu.Lock()
	if err != nil {
		h.state = Failed
		h.err = err
	} else {
		h.state = Complete
	}
	if !h.closed {
		h.closed = true
		close(h.done)
	}
	h.mu.Unlock()
	return err
}

func validate(data []byte, objectKey string, requirePDF bool) error {
	if len(data) == 0 {
		return ErrEmptyFile
	}
	if requirePDF && !strings.HasSuffix(strings.ToLower(objectKey), ".pdf") {
		return ErrNotPDF
	}
	return nil
}

// Wait blocks until Commit has run (or ctx is cancelled), returning the
// final error: CLOSE must not return OK until the PUT resolves. This
// waits on Commit's completion signal rather than polling.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		h.mu.Lock()
		defer h.mu.Unlock()
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func contentTypeFor(objectKey string) string {
	if strings.HasSuffix(strings.ToLower(objectKey), ".pdf") {
		return "application/pdf"
	}
	return "application/octet-stream"
}
