package libevents

// Logger is the minimal logging surface this package needs. Callers adapt
// their own logger to it; tests use the io.Writer-backed implementation.
type Logger interface {
	WithField(key string, value any) Logger
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}
