package graph

import (
	"fmt"
	"strconv"
)

// PortAddress identifies one connection point: a tag namespace and an index
// disambiguating repeated ports under the same tag. The empty tag is the
// default namespace.
type PortAddress struct {
	Tag   string
	Index int
}

// String renders the address as TAG:index.
func (a PortAddress) String() string {
	return a.Tag + ":" + strconv.Itoa(a.Index)
}

// portKind is the category and direction of a port. Directions are seen
// from the edge: producers feed consumers. Graph-level inputs are producers,
// graph-level outputs are consumers.
type portKind uint8

const (
	streamIn portKind = iota
	streamOut
	sideIn
	sideOut
	numKinds
)

func (k portKind) producer() bool { return k == streamOut || k == sideOut }

func (k portKind) sidePacket() bool { return k == sideIn || k == sideOut }

func (k portKind) String() string {
	switch k {
	case streamIn:
		return "input stream"
	case streamOut:
		return "output stream"
	case sideIn:
		return "input side packet"
	default:
		return "output side packet"
	}
}

// boundary is the node id of graph-level ports.
const boundary = -1

// endpoint is a port's identity inside its graph.
type endpoint struct {
	node int
	kind portKind
	addr PortAddress
}

// nameKey scopes stream names: streams and side packets are separate namespaces.
type nameKey struct {
	side bool
	name string
}

// describe renders a port for error messages and logs.
func (g *Graph) describe(e endpoint) string {
	if e.node == boundary {
		switch e.kind {
		case streamOut:
			return fmt.Sprintf("graph input stream %d", e.addr.Index)
		case sideOut:
			return fmt.Sprintf("graph input side packet %d", e.addr.Index)
		case streamIn:
			return fmt.Sprintf("graph output stream %d", e.addr.Index)
		default:
			return fmt.Sprintf("graph output side packet %d", e.addr.Index)
		}
	}
	return fmt.Sprintf("%s %s %s", g.nodes[e.node], e.kind, e.addr)
}
