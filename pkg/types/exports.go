package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// LegacyExports is the nfs export list of a generation 1 node. Older writers stored
// it as the string form of a list ("['/a', '/b']"); newer ones store a JSON array.
// The JSON token kind seen at decode time decides how Paths reads it, and the value
// is written back in the same form.
type LegacyExports struct {
	encoded string
	paths   []string
	isText  bool
}

// NewEncodedExports builds the string form used by generation 1 writers.
func NewEncodedExports(paths []string) LegacyExports {
	return LegacyExports{encoded: FormatExportList(paths), isText: true}
}

// NewExportList builds the list form.
func NewExportList(paths []string) LegacyExports {
	return LegacyExports{paths: append([]string(nil), paths...)}
}

// IsEncoded reports whether the value arrived as the string form of a list.
func (e LegacyExports) IsEncoded() bool {
	return e.isText
}

// Paths returns the export paths, parsing the string form if needed.
func (e LegacyExports) Paths() []string {
	if e.isText {
		return ParseExportList(e.encoded)
	}
	return append([]string(nil), e.paths...)
}

// MarshalJSON writes the value in the form it was decoded from.
func (e LegacyExports) MarshalJSON() ([]byte, error) {
	if e.isText {
		return json.Marshal(e.encoded)
	}
	if e.paths == nil {
		return []byte("null"), nil
	}
	return json.Marshal(e.paths)
}

// UnmarshalJSON accepts a JSON string, a JSON array of strings or null.
func (e *LegacyExports) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	*e = LegacyExports{}
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	switch trimmed[0] {
	case '"':
		e.isText = true
		return json.Unmarshal(trimmed, &e.encoded)
	case '[':
		return json.Unmarshal(trimmed, &e.paths)
	default:
		return fmt.Errorf("exports must be a string or a list of strings, got %s", trimmed)
	}
}

// MarshalYAML renders the value in the form it was decoded from.
func (e LegacyExports) MarshalYAML() (interface{}, error) {
	if e.isText {
		return e.encoded, nil
	}
	return e.paths, nil
}

// UnmarshalYAML accepts a string, a sequence of strings or null.
func (e *LegacyExports) UnmarshalYAML(value *yaml.Node) error {
	*e = LegacyExports{}
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			return nil
		}
		e.isText = true
		return value.Decode(&e.encoded)
	case yaml.SequenceNode:
		return value.Decode(&e.paths)
	default:
		return fmt.Errorf("exports must be a string or a list of strings, line %d", value.Line)
	}
}

// ParseExportList turns the string form of a list back into paths by stripping the
// enclosing brackets and quotes and splitting on ", ". A path that itself contains
// ", " or a bracket is split or trimmed incorrectly; the historical writers never
// escaped it, so there is nothing to recover it from.
func ParseExportList(s string) []string {
	inner := strings.TrimSpace(s)
	inner = strings.TrimPrefix(inner, "[")
	inner = strings.TrimSuffix(inner, "]")
	if strings.TrimSpace(inner) == "" {
		return []string{}
	}

	parts := strings.Split(inner, ", ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.Trim(strings.TrimSpace(p), `'"`))
	}
	return out
}

// FormatExportList renders paths the way generation 1 writers did.
func FormatExportList(paths []string) string {
	quoted := make([]string, 0, len(paths))
	for _, p := range paths {
		quoted = append(quoted, "'"+p+"'")
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
