package log

import (
	"encoding/json"
	"time"
)

// Field is a structured log field.
type Field struct {
	Key   string
	Value interface{}
}

// Err creates an "error" field holding the error text.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Str creates a string field.
func Str(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an integer field.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a boolean field.
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Duration creates a duration field.
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value}
}

// Any creates a field for any value.
func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Json creates a field holding the JSON encoding of value.
func Json(key string, value interface{}) Field {
	data, err := json.Marshal(value)
	if err != nil {
		return Field{Key: key, Value: err.Error()}
	}
	return Field{Key: key, Value: string(data)}
}

// Component tags an entry with a component name.
func Component(value string) Field {
	return Field{Key: ComponentKey, Value: value}
}

// EntityID tags an entry with a cluster entity id.
func EntityID(value string) Field {
	return Field{Key: EntityIDKey, Value: value}
}
