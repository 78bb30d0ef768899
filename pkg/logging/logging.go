// Package logging adapts charmbracelet/log to the userstyle Logger hook.
package logging

import (
	"io"
	"sort"

	"github.com/charmbracelet/log"

	userstyle "github.com/goliatone/go-userstyle"
)

// NewDefault builds a timestamped logger writing to w at level.
func NewDefault(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
		Prefix:          "userstyle",
	})
}

// Logger forwards userstyle log events to a charmbracelet logger. Events
// carrying an error log at Error, everything else at Debug.
type Logger struct {
	base *log.Logger
}

var _ userstyle.Logger = (*Logger)(nil)

// New wraps base. A nil base falls back to log.Default().
func New(base *log.Logger) *Logger {
	if base == nil {
		base = log.Default()
	}
	return &Logger{base: base}
}

// LogEvent implements userstyle.Logger.
func (l *Logger) LogEvent(event userstyle.LogEvent) {
	keyvals := eventKeyvals(event)
	msg := event.Message
	if msg == "" {
		msg = event.Component
	}
	if event.Err != nil {
		l.base.Error(msg, append(keyvals, "err", event.Err)...)
		return
	}
	l.base.Debug(msg, keyvals...)
}

func eventKeyvals(event userstyle.LogEvent) []any {
	keyvals := make([]any, 0, 4+len(event.Fields)*2)
	if event.Component != "" {
		keyvals = append(keyvals, "component", event.Component)
	}
	if event.Duration > 0 {
		keyvals = append(keyvals, "duration", event.Duration)
	}
	keys := make([]string, 0, len(event.Fields))
	for key := range event.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		keyvals = append(keyvals, key, event.Fields[key])
	}
	return keyvals
}
