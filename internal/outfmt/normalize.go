package outfmt

import (
	"bytes"
	"reflect"

	"github.com/goccy/go-json"
)

// List output always has the shape {"items": [...], "metaData": {...}},
// with metaData present only for paginated endpoints.
const (
	itemsField    = "items"
	metaDataField = "metaData"
)

// normalizeJSONOutput gives bare lists the list shape. A nil slice becomes
// an empty items array so jq filters like .items[] never see null.
func normalizeJSONOutput(v any) any {
	if m, ok := v.(map[string]any); ok && isListObject(m) && m[itemsField] == nil {
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[k] = val
		}
		out[itemsField] = []any{}
		return out
	}

	rv, ok := listValue(v)
	if !ok {
		return v
	}
	if rv.Kind() == reflect.Slice && rv.IsNil() {
		return map[string]any{itemsField: []any{}}
	}
	return map[string]any{itemsField: rv.Interface()}
}

// listValue dereferences v and reports whether it is a Go slice or array.
// Byte slices and raw JSON are whole documents, not lists.
func listValue(v any) (reflect.Value, bool) {
	switch v.(type) {
	case nil, []byte, json.RawMessage:
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return reflect.Value{}, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return reflect.Value{}, false
	}
	return rv, true
}

// isListObject reports whether m is a list payload: an items field and at
// most a metaData field beside it. A cart, which has items next to its own
// id and total, is an entity.
func isListObject(m map[string]any) bool {
	if _, ok := m[itemsField]; !ok {
		return false
	}
	for k := range m {
		if k != itemsField && k != metaDataField {
			return false
		}
	}
	return true
}

// listItems returns the elements of a list-shaped value, whether it is a
// Go slice, a decoded array or a list payload struct or map.
func listItems(v any) ([]any, bool) {
	plain, err := toPlain(normalizeJSONOutput(v))
	if err != nil {
		return nil, false
	}
	switch t := plain.(type) {
	case []any:
		return t, true
	case map[string]any:
		if !isListObject(t) {
			return nil, false
		}
		items, ok := t[itemsField].([]any)
		if !ok && t[itemsField] == nil {
			return []any{}, true
		}
		return items, ok
	default:
		return nil, false
	}
}

// toPlain converts v to decoded JSON values (maps, slices, json.Number)
// using its JSON field names.
func toPlain(v any) (any, error) {
	switch v.(type) {
	case nil, bool, string, json.Number:
		return v, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
