package namespace

import (
	"sync"
	"time"
)

// StalenessWindow is how long after a PUT anywhere OPENDIR should assume
// LIST results may still be stale.
const StalenessWindow = 10 * time.Second

// RecheckDelay is how long OPENDIR sleeps before re-LISTing when within
// StalenessWindow of the last upload.
const RecheckDelay = 1 * time.Second

// Tracker holds the single, monotonically-updated lastUploadTs visible to
// every OPENDIR across every session: any recent upload anywhere triggers
// the consistency delay for everyone, not just the uploader. One Tracker
// is shared by every gateway.FS the server constructs.
type Tracker struct {
	mu         sync.Mutex
	lastUpload time.Time
}

// NewTracker returns a Tracker with no recorded upload.
func NewTracker() *Tracker {
	return &Tracker{}
}

// MarkUploaded records that a PUT just completed.
func (t *Tracker) MarkUploaded() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastUpload = time.Now()
}

// RecentlyUploaded reports whether a PUT completed within StalenessWindow.
func (t *Tracker) RecentlyUploaded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.lastUpload.IsZero() && time.Since(t.lastUpload) < StalenessWindow
}
