package log

import (
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/robfig/cron/v3"
)

// badgerLogger adapts Logger to badger.Logger. Badger is chatty at info level,
// so its info lines are demoted to debug.
type badgerLogger struct {
	logger Logger
}

// NewBadgerLogger returns a badger.Logger that writes through logger.
func NewBadgerLogger(logger Logger) badger.Logger {
	return &badgerLogger{logger: logger.WithComponent("badger")}
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Errorf(trimNewline(format), args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warnf(trimNewline(format), args...)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debugf(trimNewline(format), args...)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debugf(trimNewline(format), args...)
}

func trimNewline(format string) string {
	return strings.TrimSuffix(format, "\n")
}

// cronLogger adapts Logger to cron.Logger. Cron passes alternating key/value
// pairs after the message.
type cronLogger struct {
	logger Logger
}

// NewCronLogger returns a cron.Logger that writes through logger.
func NewCronLogger(logger Logger) cron.Logger {
	return &cronLogger{logger: logger}
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, pairsToFields(keysAndValues)...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(pairsToFields(keysAndValues), Err(err))...)
}

func pairsToFields(kv []interface{}) []Field {
	fields := make([]Field, 0, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprintf("arg%d", i)
		}
		if i+1 < len(kv) {
			fields = append(fields, Any(key, kv[i+1]))
		} else {
			fields = append(fields, Any(key, nil))
		}
	}
	return fields
}
