package diff

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/rzbill/cse/pkg/types"
)

// Flatten walks a struct by JSON field names and returns its leaves keyed by dotted
// path. Embedded structs without a JSON name are merged into their parent. Slices and
// maps are leaves, with empty ones recorded as nil. A nil pointer is a nil leaf; a
// non-nil pointer to a scalar is recorded as the scalar.
func Flatten(v any) (map[types.FieldPath]any, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, fmt.Errorf("cannot flatten a nil value")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("cannot flatten %s, expected a struct", rv.Type())
	}

	out := make(map[types.FieldPath]any)
	flattenStruct(rv, "", out)
	return out, nil
}

func flattenStruct(rv reflect.Value, prefix string, out map[types.FieldPath]any) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		name, skip := jsonName(field)
		if skip {
			continue
		}

		fv := rv.Field(i)
		if field.Anonymous && name == "" && indirectType(field.Type).Kind() == reflect.Struct {
			if fv.Kind() == reflect.Pointer {
				if fv.IsNil() {
					continue
				}
				fv = fv.Elem()
			}
			flattenStruct(fv, prefix, out)
			continue
		}

		if name == "" {
			name = field.Name
		}
		flattenValue(fv, join(prefix, name), out)
	}
}

func flattenValue(fv reflect.Value, path string, out map[types.FieldPath]any) {
	switch fv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if fv.IsNil() {
			out[types.FieldPath(path)] = nil
			return
		}
		flattenValue(fv.Elem(), path, out)
	case reflect.Struct:
		flattenStruct(fv, path, out)
	case reflect.Slice, reflect.Map:
		if fv.Len() == 0 {
			out[types.FieldPath(path)] = nil
			return
		}
		out[types.FieldPath(path)] = fv.Interface()
	default:
		out[types.FieldPath(path)] = fv.Interface()
	}
}

func jsonName(field reflect.StructField) (string, bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", true
	}
	name, _, _ := strings.Cut(tag, ",")
	return name, false
}

func indirectType(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	return t
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
