package log

import "strings"

// RedactedValue replaces the value of redacted fields.
const RedactedValue = "[REDACTED]"

// DefaultRedactedFields lists the field keys that carry public keys or
// credentials in cluster entities.
var DefaultRedactedFields = []string{"sshKey", "ssh_key", "password", "token"}

// RedactionHook replaces the values of sensitive fields. Keys match case-insensitively.
type RedactionHook struct {
	fields map[string]struct{}
}

// NewRedactionHook creates a redaction hook for the given field keys.
func NewRedactionHook(fields []string) *RedactionHook {
	h := &RedactionHook{fields: make(map[string]struct{}, len(fields))}
	for _, f := range fields {
		h.fields[strings.ToLower(f)] = struct{}{}
	}
	return h
}

// Levels implements Hook.
func (h *RedactionHook) Levels() []Level {
	return []Level{DebugLevel, InfoLevel, WarnLevel, ErrorLevel, FatalLevel}
}

// Fire implements Hook.
func (h *RedactionHook) Fire(entry *Entry) error {
	for k := range entry.Fields {
		if _, ok := h.fields[strings.ToLower(k)]; ok {
			entry.Fields[k] = RedactedValue
		}
	}
	return nil
}
