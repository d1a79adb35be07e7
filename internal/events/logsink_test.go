package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusdepot/gatesftp/internal/log"
)

type recordedCall struct {
	level   string
	msg     string
	keyvals []interface{}
}

type recordingLogger struct {
	calls *[]recordedCall
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{calls: &[]recordedCall{}}
}

func (r *recordingLogger) Debug(msg string, kv ...interface{}) {
	*r.calls = append(*r.calls, recordedCall{"debug", msg, kv})
}
func (r *recordingLogger) Info(msg string, kv ...interface{}) {
	*r.calls = append(*r.calls, recordedCall{"info", msg, kv})
}
func (r *recordingLogger) Warn(msg string, kv ...interface{}) {
	*r.calls = append(*r.calls, recordedCall{"warn", msg, kv})
}
func (r *recordingLogger) Error(msg string, kv ...interface{}) {
	*r.calls = append(*r.calls, recordedCall{"error", msg, kv})
}
func (r *recordingLogger) With(...interface{}) log.Logger { return r }

func TestLogSink_SuccessfulEventLogsAtInfo(t *testing.T) {
	rl := newRecordingLogger()
	sink := LogSink{Logger: rl}

	sink.Handle(Event{Kind: FileUploaded, Username: "alice", Path: "/alice/report.pdf", Size: 1024})

	require.Len(t, *rl.calls, 1)
	call := (*rl.calls)[0]
	assert.Equal(t, "info", call.level)
	assert.Contains(t, call.keyvals, int64(1024))
}

func TestLogSink_ErrorEventLogsAtError(t *testing.T) {
	rl := newRecordingLogger()
	sink := LogSink{Logger: rl}

	cause := errors.New("quota exceeded")
	sink.Handle(Event{Kind: UploadError, Username: "alice", Path: "/alice/x.pdf", Err: cause})

	require.Len(t, *rl.calls, 1)
	call := (*rl.calls)[0]
	assert.Equal(t, "error", call.level)
	assert.Contains(t, call.keyvals, cause)
}
