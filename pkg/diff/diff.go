// Package diff compares two spec-shaped values leaf by leaf.
package diff

import (
	"reflect"
	"slices"

	"github.com/rzbill/cse/pkg/types"
)

// Exclusions is a set of paths the comparison skips.
type Exclusions map[types.FieldPath]struct{}

// NewExclusions builds a set from paths.
func NewExclusions(paths ...types.FieldPath) Exclusions {
	e := make(Exclusions, len(paths))
	e.Add(paths...)
	return e
}

// Add inserts paths into the set.
func (e Exclusions) Add(paths ...types.FieldPath) {
	for _, p := range paths {
		e[p] = struct{}{}
	}
}

// Has reports whether p is excluded. A nil set excludes nothing.
func (e Exclusions) Has(p types.FieldPath) bool {
	_, ok := e[p]
	return ok
}

// Paths returns the excluded paths in sorted order.
func (e Exclusions) Paths() []types.FieldPath {
	return sortedKeys(e)
}

// Result maps each differing leaf to its input (actual) and reference (expected) values.
type Result map[types.FieldPath]types.FieldDiff

// Paths returns the differing paths in sorted order.
func (r Result) Paths() []types.FieldPath {
	return sortedKeys(r)
}

// Has reports whether p differs.
func (r Result) Has(p types.FieldPath) bool {
	_, ok := r[p]
	return ok
}

// Diff flattens input and reference and reports every leaf that is present in both,
// is not excluded and holds different values.
func Diff(input, reference any, excluded Exclusions) (Result, error) {
	actual, err := Flatten(input)
	if err != nil {
		return nil, err
	}
	expected, err := Flatten(reference)
	if err != nil {
		return nil, err
	}

	result := make(Result)
	for path, a := range actual {
		if excluded.Has(path) {
			continue
		}
		e, ok := expected[path]
		if !ok {
			continue
		}
		if !reflect.DeepEqual(a, e) {
			result[path] = types.FieldDiff{Actual: a, Expected: e}
		}
	}
	return result, nil
}

func sortedKeys[V any](m map[types.FieldPath]V) []types.FieldPath {
	out := make([]types.FieldPath, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
