package graph

import (
	"slices"
	"strconv"

	"github.com/syssam/pipegraph"
	"github.com/syssam/pipegraph/config"
)

// Config emits the graph configuration. It fails with ErrIncompleteGraph
// when a consumer port has no producer or a graph input feeds nothing, and
// with ErrInvalidOptions when an options value cannot be encoded. Emission
// never mutates the graph; calling Config twice yields equal results.
func (g *Graph) Config() (*config.Graph, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}
	cfg := &config.Graph{
		Type:             g.typeName,
		MaxQueueSize:     g.maxQueueSize,
		Executor:         slices.Clone(g.executors),
		InputStream:      g.boundaryNames(streamOut),
		OutputStream:     g.boundaryNames(streamIn),
		InputSidePacket:  g.boundaryNames(sideOut),
		OutputSidePacket: g.boundaryNames(sideIn),
	}
	for _, n := range g.nodes {
		nc, err := n.config()
		if err != nil {
			return nil, err
		}
		cfg.Node = append(cfg.Node, nc)
	}
	g.logger.Debug("config emitted", "nodes", len(cfg.Node), "edges", len(g.edges))
	return cfg, nil
}

// validate collects every dangling port in emission order.
func (g *Graph) validate() error {
	var dangling []string
	for _, n := range g.nodes {
		for kind := range numKinds {
			for _, addr := range n.ports[kind] {
				e := endpoint{node: n.id, kind: kind, addr: addr}
				if _, ok := g.edges[e]; !kind.producer() && !ok {
					dangling = append(dangling, g.describe(e))
				}
			}
		}
	}
	for _, kind := range []portKind{streamOut, sideOut, streamIn, sideIn} {
		for _, e := range g.boundaryPorts(kind) {
			if kind.producer() && g.fanout[e] == 0 {
				dangling = append(dangling, g.describe(e))
			}
			if _, ok := g.edges[e]; !kind.producer() && !ok {
				dangling = append(dangling, g.describe(e))
			}
		}
	}
	if len(dangling) > 0 {
		return &pipegraph.IncompleteGraphError{Ports: dangling}
	}
	return nil
}

// boundaryPorts returns the graph-level ports of a kind ordered by index.
func (g *Graph) boundaryPorts(kind portKind) []endpoint {
	indices := make([]int, 0, len(g.boundary[kind]))
	for i := range g.boundary[kind] {
		indices = append(indices, i)
	}
	slices.Sort(indices)
	ports := make([]endpoint, len(indices))
	for i, idx := range indices {
		ports[i] = endpoint{node: boundary, kind: kind, addr: PortAddress{Index: idx}}
	}
	return ports
}

func (g *Graph) boundaryNames(kind portKind) []string {
	var names []string
	for _, e := range g.boundaryPorts(kind) {
		names = append(names, g.streamName(e))
	}
	return names
}

// streamName resolves the name of the stream flowing through e. It must
// only be called on validated graphs.
func (g *Graph) streamName(e endpoint) string {
	p, _ := g.producerOf(e)
	return g.resolve(p)
}

func (n *Node) config() (config.Node, error) {
	nc := config.Node{
		Calculator:         n.kind,
		InputStream:        n.entries(streamIn),
		OutputStream:       n.entries(streamOut),
		InputSidePacket:    n.entries(sideIn),
		OutputSidePacket:   n.entries(sideOut),
		Executor:           n.executor,
		InputStreamHandler: n.handler,
	}
	for _, addr := range n.ports[streamIn] {
		if n.backEdges[addr] {
			nc.InputStreamInfo = append(nc.InputStreamInfo, config.InputStreamInfo{
				TagIndex: n.tagIndex(streamIn, addr),
				BackEdge: true,
			})
		}
	}
	if n.options != nil {
		opts, err := config.NewOptions(n.optionsType, n.options)
		if err != nil {
			return nc, pipegraph.NewInvalidOptionsError(n.String(), n.optionsType, "cannot be encoded", err)
		}
		nc.NodeOptions = opts
	}
	return nc, nil
}

// entries renders the ports of a kind as config entries: "name" for the
// default tag, "TAG:name" for a tag used once and "TAG:index:name" otherwise.
func (n *Node) entries(kind portKind) []string {
	var out []string
	for _, addr := range n.ports[kind] {
		name := n.g.streamName(endpoint{node: n.id, kind: kind, addr: addr})
		switch {
		case addr.Tag == "":
			out = append(out, name)
		case n.next[kind][addr.Tag] == 1:
			out = append(out, addr.Tag+":"+name)
		default:
			out = append(out, addr.Tag+":"+strconv.Itoa(addr.Index)+":"+name)
		}
	}
	return out
}

func (n *Node) tagIndex(kind portKind, addr PortAddress) string {
	if addr.Tag != "" && n.next[kind][addr.Tag] == 1 {
		return addr.Tag
	}
	return addr.String()
}
