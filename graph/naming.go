package graph

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/syssam/pipegraph"
)

var (
	namePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
	tagPattern  = regexp.MustCompile(`^[A-Z_][A-Z0-9_]*$`)
)

// reservedPrefix starts every synthesized name; explicit names may not use it.
const reservedPrefix = "__"

func validName(name string) bool {
	return namePattern.MatchString(name) && !strings.HasPrefix(name, reservedPrefix)
}

func validTag(tag string) bool {
	return tag == "" || tagPattern.MatchString(tag)
}

// producerOf returns the producer feeding e, which is e itself for producers.
func (g *Graph) producerOf(e endpoint) (endpoint, bool) {
	if e.kind.producer() {
		return e, true
	}
	p, ok := g.edges[e]
	return p, ok
}

// explicitName returns the explicit name of the stream flowing through e.
func (g *Graph) explicitName(e endpoint) string {
	if p, ok := g.producerOf(e); ok {
		if name, ok := g.streamNames[p]; ok {
			return name
		}
	}
	return g.portNames[e]
}

func (g *Graph) setName(e endpoint, name string) error {
	port := g.describe(e)
	if !validName(name) {
		return pipegraph.NewNameError(port, name, "", pipegraph.ErrInvalidName)
	}
	if current, ok := g.portNames[e]; ok {
		return pipegraph.NewNameError(port, name, current, pipegraph.ErrNameAlreadySet)
	}
	// An unconnected consumer keeps the name until it is connected.
	if p, ok := g.producerOf(e); ok {
		if err := g.checkBind(p, name, port); err != nil {
			return err
		}
		g.bind(p, name)
	}
	g.portNames[e] = name
	return nil
}

// checkBind verifies that producer p can carry name.
func (g *Graph) checkBind(p endpoint, name, port string) error {
	if current, ok := g.streamNames[p]; ok && current != name {
		return pipegraph.NewNameError(port, name, current, pipegraph.ErrNameAlreadySet)
	}
	if owner, ok := g.owners[nameKey{side: p.kind.sidePacket(), name: name}]; ok && owner != p {
		return pipegraph.NewNameError(port, name, "", pipegraph.ErrInvalidName)
	}
	return nil
}

func (g *Graph) bind(p endpoint, name string) {
	g.streamNames[p] = name
	g.owners[nameKey{side: p.kind.sidePacket(), name: name}] = p
}

// resolve returns the config name of the stream produced by p.
func (g *Graph) resolve(p endpoint) string {
	if name, ok := g.streamNames[p]; ok {
		return name
	}
	return synthName(p)
}

// synthName derives a unique name from the producer's identity. Explicit
// names cannot collide with it because they may not start with "__".
func synthName(p endpoint) string {
	var b strings.Builder
	b.WriteString(reservedPrefix)
	if p.kind.sidePacket() {
		b.WriteString("side_packet_")
	} else {
		b.WriteString("stream_")
	}
	if p.node == boundary {
		b.WriteString("in")
	} else {
		b.WriteString("n")
		b.WriteString(strconv.Itoa(p.node))
		b.WriteString("_")
		b.WriteString(strings.ToLower(p.addr.Tag))
	}
	b.WriteString("_")
	b.WriteString(strconv.Itoa(p.addr.Index))
	return b.String()
}
