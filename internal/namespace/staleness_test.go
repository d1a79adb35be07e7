package namespace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTracker_RecentlyUploaded(t *testing.T) {
	tr := NewTracker()
	assert.False(t, tr.RecentlyUploaded(), "fresh tracker should report no recent upload")

	tr.MarkUploaded()
	assert.True(t, tr.RecentlyUploaded())
}

func TestTracker_WindowExpires(t *testing.T) {
	tr := NewTracker()
	tr.MarkUploaded()
	tr.lastUpload = time.Now().Add(-StalenessWindow - time.Second)
	assert.False(t, tr.RecentlyUploaded())
}
