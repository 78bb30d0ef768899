package userstyle

import "time"

// LogEvent describes one observable step: an evaluation, a repository update
// or rejection, or a stack resolution.
type LogEvent struct {
	Component string
	Message   string
	Fields    map[string]any
	Err       error
	Duration  time.Duration
}

// Logger records log events. Implementations must be safe for concurrent use.
type Logger interface {
	LogEvent(LogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(LogEvent)

// LogEvent implements Logger.
func (f LoggerFunc) LogEvent(event LogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogEvent(LogEvent) {}

func loggerOrNoop(logger Logger) Logger {
	if logger == nil {
		return noopLogger{}
	}
	return logger
}
