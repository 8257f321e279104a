// Package rawdata produces and inspects the generic data tree the resolver
// consumes: string-keyed records (map[string]any), lists ([]any) and scalars.
package rawdata

import (
	"encoding/json"
	"reflect"
	"time"
)

// Record returns v as a record. Maps with string keys of other types are
// copied into a map[string]any; the values are not converted.
func Record(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key()
		if k.Kind() == reflect.Interface {
			k = k.Elem()
		}
		if k.Kind() != reflect.String {
			return nil, false
		}
		out[k.String()] = iter.Value().Interface()
	}
	return out, true
}

// List returns v as a list. Slices and arrays of other element types are
// copied into a []any.
func List(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case nil, []byte, json.RawMessage:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// IsScalar reports whether v is nil or a primitive value.
func IsScalar(v any) bool {
	switch v.(type) {
	case nil, bool, string, json.Number, time.Time:
		return true
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// Normalize converts v recursively so that every record is a map[string]any
// and every list is a []any. Values of other types are left as they are.
func Normalize(v any) any {
	if IsScalar(v) {
		return v
	}
	if m, ok := Record(v); ok {
		out := make(map[string]any, len(m))
		for k, e := range m {
			out[k] = Normalize(e)
		}
		return out
	}
	if l, ok := List(v); ok {
		out := make([]any, len(l))
		for i, e := range l {
			out[i] = Normalize(e)
		}
		return out
	}
	return v
}
