package logger

type nopLogger struct{}

// NewNopLogger discards everything. Library packages fall back to it when no logger is wired.
func NewNopLogger() ILogger {
	return nopLogger{}
}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

func (nopLogger) GetLogs(string, int, int) ([]LogEntry, error) {
	return []LogEntry{}, nil
}
