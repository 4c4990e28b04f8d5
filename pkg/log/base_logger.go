package log

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"time"
)

// BaseLogger implements Logger on top of a formatter, outputs and hooks.
type BaseLogger struct {
	level     Level
	fields    Fields
	formatter Formatter
	outputs   []Output
	hooks     []Hook
	caller    bool
}

// Debug logs a message at the debug level with fields.
func (l *BaseLogger) Debug(msg string, fields ...Field) {
	l.logFields(DebugLevel, msg, fields)
}

// Info logs a message at the info level with fields.
func (l *BaseLogger) Info(msg string, fields ...Field) {
	l.logFields(InfoLevel, msg, fields)
}

// Warn logs a message at the warn level with fields.
func (l *BaseLogger) Warn(msg string, fields ...Field) {
	l.logFields(WarnLevel, msg, fields)
}

// Error logs a message at the error level with fields.
func (l *BaseLogger) Error(msg string, fields ...Field) {
	l.logFields(ErrorLevel, msg, fields)
}

// Fatal logs a message at the fatal level and exits the process.
func (l *BaseLogger) Fatal(msg string, fields ...Field) {
	l.logFields(FatalLevel, msg, fields)
	os.Exit(1)
}

// Debugf logs a formatted message at the debug level.
func (l *BaseLogger) Debugf(format string, args ...interface{}) {
	l.logf(DebugLevel, format, args)
}

// Infof logs a formatted message at the info level.
func (l *BaseLogger) Infof(format string, args ...interface{}) {
	l.logf(InfoLevel, format, args)
}

// Warnf logs a formatted message at the warn level.
func (l *BaseLogger) Warnf(format string, args ...interface{}) {
	l.logf(WarnLevel, format, args)
}

// Errorf logs a formatted message at the error level.
func (l *BaseLogger) Errorf(format string, args ...interface{}) {
	l.logf(ErrorLevel, format, args)
}

// With returns a child logger carrying the extra fields.
func (l *BaseLogger) With(fields ...Field) Logger {
	if len(fields) == 0 {
		return l
	}
	child := *l
	child.fields = make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		child.fields[k] = v
	}
	for _, f := range fields {
		child.fields[f.Key] = f.Value
	}
	return &child
}

// WithError returns a child logger with the error attached.
func (l *BaseLogger) WithError(err error) Logger {
	if err == nil {
		return l
	}
	return l.With(Err(err))
}

// WithComponent returns a child logger tagged with the component name.
func (l *BaseLogger) WithComponent(component string) Logger {
	return l.With(Component(component))
}

// SetLevel sets the minimum log level.
func (l *BaseLogger) SetLevel(level Level) {
	l.level = level
}

// GetLevel returns the current minimum log level.
func (l *BaseLogger) GetLevel() Level {
	return l.level
}

// Close closes every output.
func (l *BaseLogger) Close() error {
	var first error
	for _, o := range l.outputs {
		if err := o.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (l *BaseLogger) logf(level Level, format string, args []interface{}) {
	if level < l.level {
		return
	}
	l.write(level, fmt.Sprintf(format, args...), nil)
}

func (l *BaseLogger) logFields(level Level, msg string, fields []Field) {
	if level < l.level {
		return
	}
	l.write(level, msg, fields)
}

func (l *BaseLogger) write(level Level, msg string, fields []Field) {
	entry := &Entry{
		Level:     level,
		Message:   msg,
		Fields:    make(Fields, len(l.fields)+len(fields)),
		Timestamp: time.Now(),
	}
	for k, v := range l.fields {
		entry.Fields[k] = v
	}
	for _, f := range fields {
		entry.Fields[f.Key] = f.Value
	}
	if l.caller {
		// write <- logFields/logf <- public method <- caller
		if _, file, line, ok := runtime.Caller(3); ok {
			entry.Caller = fmt.Sprintf("%s/%s:%d", filepath.Base(filepath.Dir(file)), filepath.Base(file), line)
		}
	}

	for _, hook := range l.hooks {
		if !slices.Contains(hook.Levels(), level) {
			continue
		}
		if err := hook.Fire(entry); err != nil {
			fmt.Fprintf(os.Stderr, "log hook failed: %v\n", err)
		}
	}

	formatted, err := l.formatter.Format(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot format log entry: %v\n", err)
		return
	}
	for _, output := range l.outputs {
		if err := output.Write(entry, formatted); err != nil {
			fmt.Fprintf(os.Stderr, "cannot write log entry: %v\n", err)
		}
	}
}
