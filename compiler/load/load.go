package load

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/syssam/pipegraph"
)

// ErrInvalidContract is matched by every registry validation failure.
var ErrInvalidContract = errors.New("load: invalid contract")

// ContractError describes a problem in one contract of a registry.
type ContractError struct {
	Kind    string // Contract kind, empty for registry-level problems
	Field   string // Offending field path, if any
	Message string
}

// Error implements the error interface.
func (e *ContractError) Error() string {
	var b strings.Builder
	b.WriteString("load: ")
	if e.Kind != "" {
		b.WriteString("contract ")
		b.WriteString(e.Kind)
	} else {
		b.WriteString("registry")
	}
	if e.Field != "" {
		b.WriteString(" field ")
		b.WriteString(e.Field)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

// Is reports whether the target matches ErrInvalidContract.
func (e *ContractError) Is(target error) bool {
	return target == ErrInvalidContract
}

// NewContractError creates a new ContractError.
func NewContractError(kind, field, message string) *ContractError {
	return &ContractError{Kind: kind, Field: field, Message: message}
}

// IsContractError reports whether the error is a ContractError.
func IsContractError(err error) bool {
	var e *ContractError
	return errors.As(err, &e)
}

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	tagPattern = regexp.MustCompile(`^[A-Z_][A-Z0-9_]*$`)
)

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	must(validate.RegisterValidation("porttag", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || tagPattern.MatchString(s)
	}))
	must(validate.RegisterValidation("gotype", func(fl validator.FieldLevel) bool {
		_, err := ParseType(fl.Field().String())
		return err == nil
	}))
	must(validate.RegisterValidation("goident", func(fl validator.FieldLevel) bool {
		return identPattern.MatchString(fl.Field().String())
	}))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Load reads and validates the registry at path.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load: read registry: %w", err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load: %s: %w", path, err)
	}
	r.Path = path
	return r, nil
}

// Parse decodes and validates a registry. Unknown fields are rejected.
// Validation problems are collected and returned together.
func Parse(data []byte) (*Registry, error) {
	r := &Registry{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(r); err != nil {
		return nil, fmt.Errorf("load: decode registry: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks field formats and structural constraints: unique kinds
// and helper names, and unique tags within each port category.
func (r *Registry) Validate() error {
	var errs []error
	if err := validate.Struct(r); err != nil {
		errs = append(errs, validationErrors("", err)...)
	}
	kinds := make(map[string]bool)
	funcs := make(map[string]string)
	for i, c := range r.Contracts {
		if c == nil {
			errs = append(errs, NewContractError("", fmt.Sprintf("contracts[%d]", i), "empty contract"))
			continue
		}
		if err := validate.Struct(c); err != nil {
			errs = append(errs, validationErrors(c.Kind, err)...)
		}
		if kinds[c.Kind] {
			errs = append(errs, NewContractError(c.Kind, "kind", "declared more than once"))
		}
		kinds[c.Kind] = true
		if other, ok := funcs[c.FuncName()]; ok {
			errs = append(errs, NewContractError(c.Kind, "func", fmt.Sprintf("helper %s already generated for %s", c.FuncName(), other)))
		} else {
			funcs[c.FuncName()] = c.Kind
		}
		errs = append(errs, c.checkPorts()...)
	}
	return pipegraph.NewAggregateError(errs...)
}

func (c *Contract) checkPorts() []error {
	var errs []error
	for _, cat := range Categories {
		seen := make(map[string]bool)
		for i, p := range c.Ports(cat) {
			if p == nil {
				continue
			}
			field := fmt.Sprintf("%s[%d]", cat, i)
			if seen[p.Tag] {
				errs = append(errs, NewContractError(c.Kind, field, fmt.Sprintf("tag %q used more than once", p.Tag)))
			}
			seen[p.Tag] = true
			if p.Optional && !cat.Consumer() {
				errs = append(errs, NewContractError(c.Kind, field, "only inputs can be optional"))
			}
			if p.Optional && p.Repeated {
				errs = append(errs, NewContractError(c.Kind, field, "a repeated port cannot be optional"))
			}
		}
	}
	if c.Options != "" {
		if t, err := ParseType(c.Options); err == nil && !t.Named() {
			errs = append(errs, NewContractError(c.Kind, "options", fmt.Sprintf("%q must be a qualified named type", c.Options)))
		}
	}
	return errs
}

// validationErrors converts validator errors into contract errors.
func validationErrors(kind string, err error) []error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []error{err}
	}
	out := make([]error, 0, len(verrs))
	for _, e := range verrs {
		_, field, _ := strings.Cut(e.Namespace(), ".")
		var msg string
		switch e.Tag() {
		case "required":
			msg = "field is required"
		case "min":
			msg = "must have at least " + e.Param() + " element(s)"
		case "porttag":
			msg = fmt.Sprintf("tag %q must match %s", e.Value(), tagPattern)
		case "gotype":
			_, perr := ParseType(fmt.Sprint(e.Value()))
			msg = perr.Error()
		case "goident":
			msg = fmt.Sprintf("%q is not a Go identifier", e.Value())
		default:
			msg = fmt.Sprintf("validation failed (%s)", e.Tag())
		}
		out = append(out, NewContractError(kind, field, msg))
	}
	return out
}
