package sdk

import (
	"sort"

	"github.com/hashicorp/go-hclog"
)

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// hcLogger adapts hashicorp/go-hclog to Logger.
type hcLogger struct {
	logger hclog.Logger
}

// NewHCLogger returns a Logger that writes through an hclog.Logger. A nil
// logger yields one that discards everything.
func NewHCLogger(logger hclog.Logger) Logger {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &hcLogger{logger: logger}
}

func (l *hcLogger) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug(msg, args(fields)...)
}

func (l *hcLogger) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, args(fields)...)
}

func (l *hcLogger) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn(msg, args(fields)...)
}

func (l *hcLogger) Error(msg string, fields map[string]interface{}) {
	l.logger.Error(msg, args(fields)...)
}

// args flattens fields into sorted key/value pairs.
func args(fields map[string]interface{}) []interface{} {
	if len(fields) == 0 {
		return nil
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	out := make([]interface{}, 0, 2*len(keys))
	for _, k := range keys {
		out = append(out, k, fields[k])
	}

	return out
}

// NopLogger discards all log output.
type NopLogger struct{}

func (NopLogger) Debug(string, map[string]interface{}) {}
func (NopLogger) Info(string, map[string]interface{})  {}
func (NopLogger) Warn(string, map[string]interface{})  {}
func (NopLogger) Error(string, map[string]interface{}) {}
