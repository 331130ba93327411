package load

import (
	"fmt"
	"regexp"
	"strings"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// builtins are the predeclared types a port may carry unqualified.
var builtins = map[string]bool{
	"any": true, "bool": true, "byte": true, "rune": true, "string": true, "error": true,
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true, "uintptr": true,
	"float32": true, "float64": true, "complex64": true, "complex128": true,
}

// TypeRef is a parsed port or options type: an optional slice and pointer
// marker followed by a predeclared type or an import-path qualified name.
type TypeRef struct {
	Slice   bool
	Pointer bool
	PkgPath string
	Name    string
}

// ParseType parses type expressions such as "any", "[]float32",
// "*image.Image" or "github.com/acme/media.Frame". The empty string is any.
func ParseType(s string) (TypeRef, error) {
	var t TypeRef
	expr := strings.TrimSpace(s)
	if expr == "" {
		return TypeRef{Name: "any"}, nil
	}
	if rest, ok := strings.CutPrefix(expr, "[]"); ok {
		t.Slice, expr = true, rest
	}
	if rest, ok := strings.CutPrefix(expr, "*"); ok {
		t.Pointer, expr = true, rest
	}
	slash := strings.LastIndex(expr, "/")
	dot := strings.LastIndex(expr, ".")
	if dot <= slash {
		if !builtins[expr] {
			return TypeRef{}, fmt.Errorf("type %q: %q is not a predeclared type", s, expr)
		}
		t.Name = expr
		return t, nil
	}
	t.PkgPath, t.Name = expr[:dot], expr[dot+1:]
	if t.PkgPath == "" || strings.ContainsAny(t.PkgPath, " \t[]*") || strings.HasSuffix(t.PkgPath, "/") {
		return TypeRef{}, fmt.Errorf("type %q: invalid import path %q", s, t.PkgPath)
	}
	if !identPattern.MatchString(t.Name) || strings.ToUpper(t.Name[:1]) != t.Name[:1] {
		return TypeRef{}, fmt.Errorf("type %q: %q is not an exported identifier", s, t.Name)
	}
	return t, nil
}

// IsAny reports whether the reference is the untyped any.
func (t TypeRef) IsAny() bool {
	return t.Name == "any" && t.PkgPath == "" && !t.Slice && !t.Pointer
}

// Named reports whether the reference is a bare qualified type.
func (t TypeRef) Named() bool {
	return t.PkgPath != "" && !t.Slice && !t.Pointer
}

func (t TypeRef) String() string {
	var b strings.Builder
	if t.Slice {
		b.WriteString("[]")
	}
	if t.Pointer {
		b.WriteString("*")
	}
	if t.PkgPath != "" {
		b.WriteString(t.PkgPath)
		b.WriteString(".")
	}
	b.WriteString(t.Name)
	return b.String()
}
