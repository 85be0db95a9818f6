package logging

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

// SentryHook forwards error-level entries to Sentry.
type SentryHook struct {
	hub *sentry.Hub
}

// NewSentryHook creates a hook on the given hub, or the current hub when nil.
func NewSentryHook(hub *sentry.Hub) *SentryHook {
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	return &SentryHook{hub: hub}
}

// Levels returns the levels the hook fires on.
func (h *SentryHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel}
}

// Fire sends the entry to Sentry.
func (h *SentryHook) Fire(entry *logrus.Entry) error {
	event := sentry.NewEvent()
	event.Level = sentry.LevelError
	if entry.Level <= logrus.FatalLevel {
		event.Level = sentry.LevelFatal
	}
	event.Message = entry.Message
	event.Timestamp = entry.Time

	extra := sentry.Context{}
	for k, v := range entry.Data {
		switch val := v.(type) {
		case error:
			event.Exception = append(event.Exception, sentry.Exception{
				Type:  fmt.Sprintf("%T", val),
				Value: val.Error(),
			})
			extra[k] = val.Error()
		default:
			extra[k] = val
		}
	}
	if id, ok := entry.Data[TraceKey].(string); ok {
		event.Tags = map[string]string{TraceKey: id}
	}
	event.Contexts = map[string]sentry.Context{"log": extra}

	h.hub.CaptureEvent(event)
	return nil
}

// Flush waits for buffered events to be sent.
func (h *SentryHook) Flush(timeout time.Duration) bool {
	return h.hub.Flush(timeout)
}
