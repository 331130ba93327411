package pipegraph

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for graph construction. Every typed error below matches
// exactly one of them through errors.Is.
var (
	// ErrTypeMismatch is returned when two concrete, different types are connected.
	ErrTypeMismatch = errors.New("pipegraph: type mismatch")

	// ErrPortAlreadyConnected is returned when a consumer port already has a producer.
	ErrPortAlreadyConnected = errors.New("pipegraph: port already connected")

	// ErrNameAlreadySet is returned when a port or stream is named twice.
	ErrNameAlreadySet = errors.New("pipegraph: name already set")

	// ErrConflictingOptionsType is returned when a node's options slot is
	// requested with a second, different options type.
	ErrConflictingOptionsType = errors.New("pipegraph: conflicting options type")

	// ErrCrossGraphConnection is returned when handles of two graphs are connected.
	ErrCrossGraphConnection = errors.New("pipegraph: cross-graph connection")

	// ErrIncompleteGraph is returned by config emission when a port is left dangling.
	ErrIncompleteGraph = errors.New("pipegraph: incomplete graph")

	// ErrInvalidHandle is returned for zero-value handles or handles used in the
	// wrong direction (a consumer as a source, a producer as a target).
	ErrInvalidHandle = errors.New("pipegraph: invalid handle")

	// ErrInvalidName is returned for malformed, reserved or duplicate stream names.
	ErrInvalidName = errors.New("pipegraph: invalid name")

	// ErrInvalidTag is returned for malformed port tags.
	ErrInvalidTag = errors.New("pipegraph: invalid tag")

	// ErrInvalidOptions is returned for options types that cannot be captured
	// into the configuration without losing data.
	ErrInvalidOptions = errors.New("pipegraph: invalid options")
)

// ConnectionError describes a failed edge between two ports.
type ConnectionError struct {
	Source     string // Producer port description
	Target     string // Consumer port description
	SourceType string // Type tag of the source handle
	TargetType string // Type tag of the target handle
	Err        error  // One of the Err* sentinels
}

// Error returns the error string.
func (e *ConnectionError) Error() string {
	var b strings.Builder
	b.WriteString("pipegraph: connect ")
	b.WriteString(e.Source)
	b.WriteString(" -> ")
	b.WriteString(e.Target)
	if e.SourceType != "" || e.TargetType != "" {
		fmt.Fprintf(&b, " (%s -> %s)", e.SourceType, e.TargetType)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(strings.TrimPrefix(e.Err.Error(), "pipegraph: "))
	}
	return b.String()
}

// Unwrap returns the underlying sentinel.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// NewConnectionError returns a new ConnectionError.
func NewConnectionError(source, target string, err error) *ConnectionError {
	return &ConnectionError{Source: source, Target: target, Err: err}
}

// IsConnectionError returns true if the error is a ConnectionError.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var e *ConnectionError
	return errors.As(err, &e)
}

// NameError describes a rejected stream or port name.
type NameError struct {
	Port    string // Port description
	Name    string // Rejected name
	Current string // Name already in place, if any
	Err     error  // ErrNameAlreadySet or ErrInvalidName
}

// Error returns the error string.
func (e *NameError) Error() string {
	msg := "invalid name"
	if e.Err != nil {
		msg = strings.TrimPrefix(e.Err.Error(), "pipegraph: ")
	}
	if e.Current != "" {
		return fmt.Sprintf("pipegraph: name %q for %s: %s (current %q)", e.Name, e.Port, msg, e.Current)
	}
	return fmt.Sprintf("pipegraph: name %q for %s: %s", e.Name, e.Port, msg)
}

// Unwrap returns the underlying sentinel.
func (e *NameError) Unwrap() error {
	return e.Err
}

// NewNameError returns a new NameError.
func NewNameError(port, name, current string, err error) *NameError {
	return &NameError{Port: port, Name: name, Current: current, Err: err}
}

// IsNameError returns true if the error is a NameError.
func IsNameError(err error) bool {
	if err == nil {
		return false
	}
	var e *NameError
	return errors.As(err, &e)
}

// TagError describes a malformed port tag.
type TagError struct {
	Port string
	Tag  string
}

// Error returns the error string.
func (e *TagError) Error() string {
	return fmt.Sprintf("pipegraph: invalid tag %q on %s", e.Tag, e.Port)
}

// Is reports whether the target error matches ErrInvalidTag.
func (e *TagError) Is(err error) bool {
	return err == ErrInvalidTag
}

// NewTagError returns a new TagError.
func NewTagError(port, tag string) *TagError {
	return &TagError{Port: port, Tag: tag}
}

// OptionsError describes a rejected options request: a second request
// with a different type, or a type whose values cannot be captured.
type OptionsError struct {
	Node      string // Node description
	Existing  string // Options type already attached to the node
	Requested string // Options type requested by the caller
	Reason    string // Why Requested cannot be captured; empty for conflicts
	Err       error  // Underlying encoding error, if any
}

// Error returns the error string.
func (e *OptionsError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("pipegraph: options of %s already typed %s, requested %s", e.Node, e.Existing, e.Requested)
	}
	msg := fmt.Sprintf("pipegraph: invalid options %s on %s: %s", e.Requested, e.Node, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether the target error matches ErrConflictingOptionsType,
// or ErrInvalidOptions when a reason is set.
func (e *OptionsError) Is(err error) bool {
	if e.Reason != "" {
		return err == ErrInvalidOptions
	}
	return err == ErrConflictingOptionsType
}

// Unwrap returns the underlying encoding error.
func (e *OptionsError) Unwrap() error {
	return e.Err
}

// NewOptionsError returns a new OptionsError for a conflicting request.
func NewOptionsError(node, existing, requested string) *OptionsError {
	return &OptionsError{Node: node, Existing: existing, Requested: requested}
}

// NewInvalidOptionsError returns a new OptionsError for an options type
// that cannot be captured.
func NewInvalidOptionsError(node, requested, reason string, err error) *OptionsError {
	return &OptionsError{Node: node, Requested: requested, Reason: reason, Err: err}
}

// IsOptionsError returns true if the error is an OptionsError.
func IsOptionsError(err error) bool {
	if err == nil {
		return false
	}
	var e *OptionsError
	return errors.As(err, &e)
}

// IncompleteGraphError lists every port left without a connection at config time.
type IncompleteGraphError struct {
	Ports []string
}

// Error returns the error string.
func (e *IncompleteGraphError) Error() string {
	if len(e.Ports) == 1 {
		return fmt.Sprintf("pipegraph: incomplete graph: %s is not connected", e.Ports[0])
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "pipegraph: incomplete graph: %d ports are not connected:", len(e.Ports))
	for i, p := range e.Ports {
		fmt.Fprintf(&sb, "\n  [%d] %s", i+1, p)
	}
	return sb.String()
}

// Is reports whether the target error matches ErrIncompleteGraph.
func (e *IncompleteGraphError) Is(err error) bool {
	return err == ErrIncompleteGraph
}

// IsIncompleteGraph returns true if the error reports dangling ports.
func IsIncompleteGraph(err error) bool {
	if err == nil {
		return false
	}
	var e *IncompleteGraphError
	return errors.As(err, &e) || errors.Is(err, ErrIncompleteGraph)
}

// AggregateError represents multiple errors collected during an operation.
type AggregateError struct {
	Errors []error
}

// Error returns the error string.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return "pipegraph: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("pipegraph: multiple errors:")
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  [%d] %v", i+1, err)
	}
	return sb.String()
}

// Unwrap returns the collected errors.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// NewAggregateError returns a new AggregateError if there are errors,
// otherwise returns nil.
func NewAggregateError(errs ...error) error {
	var filtered []error
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &AggregateError{Errors: filtered}
}
