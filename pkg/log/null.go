package log

// nullLogger discards everything. Useful for tests and embedders that
// don't want log noise.
type nullLogger struct{}

// NewNull returns a Logger that discards all messages.
func NewNull() Logger {
	return &nullLogger{}
}

func (n nullLogger) Infof(format string, args ...interface{})  {}
func (n nullLogger) Errorf(format string, args ...interface{}) {}
func (n nullLogger) Debugf(format string, args ...interface{}) {}
