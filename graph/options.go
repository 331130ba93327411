package graph

import (
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
)

var (
	jsonMarshaler = reflect.TypeFor[json.Marshaler]()
	textMarshaler = reflect.TypeFor[encoding.TextMarshaler]()
)

// checkOptionsType reports why values of t cannot be captured as an options
// payload, or "" when they can. A payload is a JSON object whose fields
// survive the trip into every configuration format, so t must be a struct
// or a string-keyed map and must not hold fields the capture would drop.
func checkOptionsType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Struct, reflect.Map:
		return checkValueType(t, map[reflect.Type]bool{})
	default:
		return fmt.Sprintf("must be a struct or a map, got %s", t.Kind())
	}
}

func checkValueType(t reflect.Type, seen map[reflect.Type]bool) string {
	if seen[t] {
		return ""
	}
	seen[t] = true
	// Custom encodings are trusted.
	if t.Implements(jsonMarshaler) || reflect.PointerTo(t).Implements(jsonMarshaler) ||
		t.Implements(textMarshaler) || reflect.PointerTo(t).Implements(textMarshaler) {
		return ""
	}

	switch t.Kind() {
	case reflect.Chan, reflect.Func, reflect.Complex64, reflect.Complex128, reflect.UnsafePointer:
		return fmt.Sprintf("%s values cannot be encoded", t)
	case reflect.Pointer:
		return checkValueType(t.Elem(), seen)
	case reflect.Slice, reflect.Array:
		e := t.Elem()
		for e.Kind() == reflect.Pointer {
			e = e.Elem()
		}
		if e.Kind() == reflect.Array || e.Kind() == reflect.Slice && e.Elem().Kind() != reflect.Uint8 {
			return fmt.Sprintf("%s: nested lists are not representable", t)
		}
		return checkValueType(t.Elem(), seen)
	case reflect.Map:
		if !validKey(t.Key()) {
			return fmt.Sprintf("%s: map keys must encode as strings", t)
		}
		return checkValueType(t.Elem(), seen)
	case reflect.Struct:
		return checkStructType(t, seen)
	}
	return ""
}

func checkStructType(t reflect.Type, seen map[reflect.Type]bool) string {
	for i := range t.NumField() {
		f := t.Field(i)
		if f.Tag.Get("json") == "-" {
			continue
		}
		if !f.IsExported() {
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			// Exported fields of embedded structs are promoted.
			if f.Anonymous && ft.Kind() == reflect.Struct {
				if reason := checkStructType(ft, seen); reason != "" {
					return reason
				}
				continue
			}
			return fmt.Sprintf("field %s.%s is unexported and would be dropped", t.Name(), f.Name)
		}
		if reason := checkValueType(f.Type, seen); reason != "" {
			return fmt.Sprintf("field %s.%s: %s", t.Name(), f.Name, reason)
		}
	}
	return ""
}

// validKey mirrors the map key types encoding/json accepts.
func validKey(k reflect.Type) bool {
	switch k.Kind() {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return k.Implements(textMarshaler)
}
