package graph

import (
	"fmt"
	"reflect"

	"github.com/syssam/pipegraph"
)

// Node is a calculator instance inside a Graph. Nodes are created with
// Graph.AddNode and live as long as their graph.
type Node struct {
	g    *Graph
	id   int
	kind string

	// ports lists allocated addresses per kind in allocation order.
	ports [numKinds][]PortAddress
	// next is the next free index per kind and tag.
	next [numKinds]map[string]int

	backEdges map[PortAddress]bool
	executor  string
	handler   string

	options     any
	optionsType string
}

// ID returns the node's position in its graph.
func (n *Node) ID() int { return n.id }

// Kind returns the calculator name.
func (n *Node) Kind() string { return n.kind }

func (n *Node) String() string {
	return fmt.Sprintf("node %d %q", n.id, n.kind)
}

// alloc registers the next port of a kind under tag. A malformed tag is a
// programming error and panics with a *pipegraph.TagError.
func (n *Node) alloc(kind portKind, tag string) endpoint {
	if !validTag(tag) {
		e := endpoint{node: n.id, kind: kind, addr: PortAddress{Tag: tag, Index: n.next[kind][tag]}}
		panic(pipegraph.NewTagError(n.g.describe(e), tag))
	}
	if n.next[kind] == nil {
		n.next[kind] = make(map[string]int)
	}
	addr := PortAddress{Tag: tag, Index: n.next[kind][tag]}
	n.next[kind][tag]++
	n.ports[kind] = append(n.ports[kind], addr)
	return endpoint{node: n.id, kind: kind, addr: addr}
}

// In allocates the next input stream under tag. The returned handle is a
// connection target.
func (n *Node) In(tag string) Stream[Any] {
	return Stream[Any]{g: n.g, end: n.alloc(streamIn, tag)}
}

// InBackEdge allocates an input stream fed by a back edge, which lets the
// engine close a loop.
func (n *Node) InBackEdge(tag string) Stream[Any] {
	s := n.In(tag)
	if n.backEdges == nil {
		n.backEdges = make(map[PortAddress]bool)
	}
	n.backEdges[s.end.addr] = true
	return s
}

// Out allocates the next output stream under tag.
func (n *Node) Out(tag string) Stream[Any] {
	return Stream[Any]{g: n.g, end: n.alloc(streamOut, tag)}
}

// SideIn allocates the next input side packet under tag.
func (n *Node) SideIn(tag string) SidePacket[Any] {
	return SidePacket[Any]{g: n.g, end: n.alloc(sideIn, tag)}
}

// SideOut allocates the next output side packet under tag.
func (n *Node) SideOut(tag string) SidePacket[Any] {
	return SidePacket[Any]{g: n.g, end: n.alloc(sideOut, tag)}
}

// SetExecutor pins the node to a named executor.
func (n *Node) SetExecutor(name string) {
	n.executor = name
}

// SetInputStreamHandler selects the engine's input stream handler for the node.
func (n *Node) SetInputStreamHandler(name string) {
	n.handler = name
}

// OptionsTyper lets an options type choose its own identifier in the
// emitted configuration. Types that don't implement it are identified by
// their package path and name.
type OptionsTyper interface {
	OptionsType() string
}

// Options returns the node's options payload typed as O, creating it on the
// first call. A node has a single options slot: requesting a different
// options type afterwards fails with ErrConflictingOptionsType. O must be a
// struct or a string-keyed map without unexported or unencodable fields;
// other types fail with ErrInvalidOptions.
func Options[O any](n *Node) (*O, error) {
	id := optionsTypeID[O]()
	if n.options != nil {
		o, ok := n.options.(*O)
		if !ok || n.optionsType != id {
			return nil, pipegraph.NewOptionsError(n.String(), n.optionsType, id)
		}
		return o, nil
	}
	if reason := checkOptionsType(reflect.TypeFor[O]()); reason != "" {
		return nil, pipegraph.NewInvalidOptionsError(n.String(), id, reason, nil)
	}
	o := new(O)
	n.options, n.optionsType = o, id
	return o, nil
}

func optionsTypeID[O any]() string {
	var zero O
	if t, ok := any(zero).(OptionsTyper); ok {
		return t.OptionsType()
	}
	if t, ok := any(&zero).(OptionsTyper); ok {
		return t.OptionsType()
	}
	t := reflect.TypeFor[O]()
	if t.PkgPath() == "" || t.Name() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}
