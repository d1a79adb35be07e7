package events

import "github.com/nimbusdepot/gatesftp/internal/log"

// LogSink is a Subscriber that writes every event to a Logger: errors at
// Error level, everything else at Info level.
type LogSink struct {
	Logger log.Logger
}

func (l LogSink) Handle(ev Event) {
	keyvals := []interface{}{
		"event", string(ev.Kind),
		"user", ev.Username,
		"path", ev.Path,
	}
	if ev.Target != "" {
		keyvals = append(keyvals, "target", ev.Target)
	}
	if ev.Size != 0 {
		keyvals = append(keyvals, "size", ev.Size)
	}
	if ev.Cause != "" {
		keyvals = append(keyvals, "cause", ev.Cause)
	}
	if ev.Err != nil {
		keyvals = append(keyvals, "err", ev.Err)
		l.Logger.Error("sftp event", keyvals...)
		return
	}
	l.Logger.Info("sftp event", keyvals...)
}
