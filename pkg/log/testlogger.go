package log

import (
	"fmt"
	"strings"
	"sync"
)

// TestEntry is a captured log entry.
type TestEntry struct {
	Level   Level
	Message string
	Fields  []Field
}

// testSink is shared by a TestLogger and every logger derived from it.
type testSink struct {
	mu      sync.Mutex
	entries []TestEntry
}

// TestLogger captures entries in memory for assertions. Child loggers created
// with With or WithComponent record into the same sink, so assertions on the
// root logger see everything a component logged.
type TestLogger struct {
	sink   *testSink
	fields []Field
	level  Level
}

// NewTestLogger creates a TestLogger that captures debug and above.
func NewTestLogger() *TestLogger {
	return &TestLogger{sink: &testSink{}, level: DebugLevel}
}

// GetEntries returns a copy of the captured entries.
func (l *TestLogger) GetEntries() []TestEntry {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return append([]TestEntry(nil), l.sink.entries...)
}

// ClearEntries drops all captured entries.
func (l *TestLogger) ClearEntries() {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.entries = nil
}

func (l *TestLogger) record(level Level, msg string, fields []Field) {
	if level < l.level {
		return
	}
	all := make([]Field, 0, len(l.fields)+len(fields))
	all = append(all, l.fields...)
	all = append(all, fields...)

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.entries = append(l.sink.entries, TestEntry{Level: level, Message: msg, Fields: all})
}

func (l *TestLogger) Debug(msg string, fields ...Field) { l.record(DebugLevel, msg, fields) }
func (l *TestLogger) Info(msg string, fields ...Field)  { l.record(InfoLevel, msg, fields) }
func (l *TestLogger) Warn(msg string, fields ...Field)  { l.record(WarnLevel, msg, fields) }
func (l *TestLogger) Error(msg string, fields ...Field) { l.record(ErrorLevel, msg, fields) }

// Fatal records the entry without exiting.
func (l *TestLogger) Fatal(msg string, fields ...Field) { l.record(FatalLevel, msg, fields) }

func (l *TestLogger) Debugf(format string, args ...interface{}) {
	l.record(DebugLevel, fmt.Sprintf(format, args...), nil)
}

func (l *TestLogger) Infof(format string, args ...interface{}) {
	l.record(InfoLevel, fmt.Sprintf(format, args...), nil)
}

func (l *TestLogger) Warnf(format string, args ...interface{}) {
	l.record(WarnLevel, fmt.Sprintf(format, args...), nil)
}

func (l *TestLogger) Errorf(format string, args ...interface{}) {
	l.record(ErrorLevel, fmt.Sprintf(format, args...), nil)
}

// With returns a child logger sharing this logger's sink.
func (l *TestLogger) With(fields ...Field) Logger {
	child := &TestLogger{sink: l.sink, level: l.level}
	child.fields = append(append(make([]Field, 0, len(l.fields)+len(fields)), l.fields...), fields...)
	return child
}

func (l *TestLogger) WithError(err error) Logger { return l.With(Err(err)) }

func (l *TestLogger) WithComponent(component string) Logger { return l.With(Component(component)) }

func (l *TestLogger) SetLevel(level Level) { l.level = level }

func (l *TestLogger) GetLevel() Level { return l.level }

// AssertLogged reports whether an entry at level whose message contains msg was captured.
func (l *TestLogger) AssertLogged(level Level, msg string) bool {
	for _, e := range l.GetEntries() {
		if e.Level == level && strings.Contains(e.Message, msg) {
			return true
		}
	}
	return false
}

// AssertLoggedWithField is AssertLogged that also requires a field key whose value
// prints the same as value.
func (l *TestLogger) AssertLoggedWithField(level Level, msg, key string, value interface{}) bool {
	want := fmt.Sprint(value)
	for _, e := range l.GetEntries() {
		if e.Level != level || !strings.Contains(e.Message, msg) {
			continue
		}
		for _, f := range e.Fields {
			if f.Key == key && fmt.Sprint(f.Value) == want {
				return true
			}
		}
	}
	return false
}
