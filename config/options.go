package config

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// NewOptions captures v as an opaque options payload of the given type.
// The value is reduced to a plain tree using its JSON field names, so the
// payload encodes identically in every format. v must encode as a JSON object.
func NewOptions(typeID string, v any) (*Options, error) {
	if typeID == "" {
		return nil, fmt.Errorf("config: options type is empty")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("config: options %s: %w", typeID, err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("config: options %s: %w", typeID, err)
	}
	if tree == nil {
		return &Options{Type: typeID}, nil
	}
	m, ok := tree.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("config: options %s: must encode as an object, got %T", typeID, tree)
	}
	value, _ := plain(m).(map[string]any)
	if len(value) == 0 {
		value = nil
	}
	return &Options{Type: typeID, Value: value}, nil
}

// plain replaces json.Number with int64 or float64 throughout the tree.
func plain(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, e := range v {
			v[k] = plain(e)
		}
		return v
	case []any:
		for i, e := range v {
			v[i] = plain(e)
		}
		return v
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	default:
		return v
	}
}
