package graph

import "reflect"

// Any is the erased handle type. A Stream[Any] connects to a stream of any type.
type Any = any

// TypeTag is the construction-time type attached to a handle: either the
// erased Any marker or a concrete Go type. The zero TypeTag is Any.
type TypeTag struct {
	t reflect.Type
}

// TypeOf returns the tag of T. The empty interface maps to Any.
func TypeOf[T any]() TypeTag {
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Interface && t.NumMethod() == 0 {
		return TypeTag{}
	}
	return TypeTag{t: t}
}

// IsAny reports whether the tag is the erased Any marker.
func (t TypeTag) IsAny() bool { return t.t == nil }

// Type returns the concrete Go type, or nil for Any.
func (t TypeTag) Type() reflect.Type { return t.t }

// Compatible reports whether a handle tagged t may be connected to one tagged o.
func (t TypeTag) Compatible(o TypeTag) bool {
	return t.IsAny() || o.IsAny() || t.t == o.t
}

func (t TypeTag) String() string {
	if t.t == nil {
		return "any"
	}
	return t.t.String()
}
