package libevents

type noopLogger struct{}

// NewNoopLogger returns a Logger that discards everything.
func NewNoopLogger() Logger {
	return noopLogger{}
}

func (l noopLogger) WithField(string, any) Logger { return l }

func (noopLogger) Debugf(string, ...any) {}

func (noopLogger) Infof(string, ...any) {}

func (noopLogger) Warnf(string, ...any) {}

func (noopLogger) Errorf(string, ...any) {}
