package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rzbill/cse/pkg/types"
)

// Filters select entities by field value. Keys are dotted paths into the entity's JSON
// form, e.g. "name", "state" or "entity.metadata.orgName"; values are compared as
// strings.
type Filters map[string]string

// Match reports whether entity satisfies every filter. A path that does not exist in
// the entity never matches.
func (f Filters) Match(entity *types.ClusterEntity) (bool, error) {
	if len(f) == 0 {
		return true, nil
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return false, fmt.Errorf("failed to serialize entity: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return false, fmt.Errorf("failed to deserialize entity: %w", err)
	}

	for path, want := range f {
		got, ok := lookupPath(doc, path)
		if !ok || fmt.Sprint(got) != want {
			return false, nil
		}
	}
	return true, nil
}

// ParseFilters parses "key=value" pairs.
func ParseFilters(pairs []string) (Filters, error) {
	filters := make(Filters, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q, expected key=value", pair)
		}
		filters[key] = value
	}
	return filters, nil
}

func lookupPath(doc map[string]any, path string) (any, bool) {
	var current any = doc
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
