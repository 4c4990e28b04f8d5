// Package log provides structured logging for the cluster entity tools and daemon.
package log

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Level represents the severity level of a log message.
type Level int

// Log levels
const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FatalLevel:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a level name such as "debug" or "warn".
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "fatal":
		return FatalLevel, nil
	default:
		return InfoLevel, fmt.Errorf("unknown log level: %s", level)
	}
}

// Fields is a map of field names to values.
type Fields map[string]interface{}

// Well-known field keys
const (
	ComponentKey = "component"
	EntityIDKey  = "entity_id"
	OperationKey = "operation"
)

// Entry represents a single log entry.
type Entry struct {
	Level     Level
	Message   string
	Fields    Fields
	Timestamp time.Time
	Caller    string
}

// Logger is the logging interface passed to every component.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	// Printf-style variants, used by the adapters for third-party libraries
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})

	// With returns a child logger that adds fields to every entry
	With(fields ...Field) Logger

	// WithError is With(Err(err))
	WithError(err error) Logger

	// WithComponent tags logs with a component name
	WithComponent(component string) Logger

	SetLevel(level Level)
	GetLevel() Level
}

// Formatter renders an entry to bytes.
type Formatter interface {
	Format(entry *Entry) ([]byte, error)
}

// Output receives formatted entries.
type Output interface {
	Write(entry *Entry, formatted []byte) error
	Close() error
}

// Hook can modify an entry before it is formatted.
type Hook interface {
	Levels() []Level
	Fire(entry *Entry) error
}

// LoggerOption configures a BaseLogger.
type LoggerOption func(*BaseLogger)

// WithLevel sets the minimum log level.
func WithLevel(level Level) LoggerOption {
	return func(l *BaseLogger) {
		l.level = level
	}
}

// WithFormatter sets the log formatter.
func WithFormatter(formatter Formatter) LoggerOption {
	return func(l *BaseLogger) {
		l.formatter = formatter
	}
}

// WithOutput adds an output.
func WithOutput(output Output) LoggerOption {
	return func(l *BaseLogger) {
		l.outputs = append(l.outputs, output)
	}
}

// WithHook adds a hook.
func WithHook(hook Hook) LoggerOption {
	return func(l *BaseLogger) {
		l.hooks = append(l.hooks, hook)
	}
}

// WithCaller records the calling file and line on each entry.
func WithCaller() LoggerOption {
	return func(l *BaseLogger) {
		l.caller = true
	}
}

// NewLogger creates a logger. Without options it writes text at info level to stdout.
func NewLogger(options ...LoggerOption) Logger {
	logger := &BaseLogger{
		level:     InfoLevel,
		fields:    Fields{},
		formatter: NewTextFormatter(),
	}
	for _, option := range options {
		option(logger)
	}
	if len(logger.outputs) == 0 {
		logger.outputs = append(logger.outputs, NewConsoleOutput())
	}
	return logger
}

var (
	defaultMu     sync.RWMutex
	defaultLogger = NewLogger(WithLevel(InfoLevel))
)

// SetDefaultLogger replaces the process-wide logger.
func SetDefaultLogger(logger Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}

// GetDefaultLogger returns the process-wide logger.
func GetDefaultLogger() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// Info logs on the default logger.
func Info(msg string, fields ...Field) {
	GetDefaultLogger().Info(msg, fields...)
}

// Warn logs on the default logger.
func Warn(msg string, fields ...Field) {
	GetDefaultLogger().Warn(msg, fields...)
}

// Error logs on the default logger.
func Error(msg string, fields ...Field) {
	GetDefaultLogger().Error(msg, fields...)
}

// WithComponent returns a child of the default logger.
func WithComponent(component string) Logger {
	return GetDefaultLogger().WithComponent(component)
}
