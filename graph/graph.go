package graph

import (
	"fmt"
	"log/slog"

	"github.com/syssam/pipegraph"
	"github.com/syssam/pipegraph/config"
)

// Graph is the root of a pipeline under construction. It owns every node,
// the graph-level ports and the connection table.
//
// A Graph is not safe for concurrent use. Build independent graphs on
// separate goroutines instead of sharing one.
type Graph struct {
	logger *slog.Logger

	typeName     string
	maxQueueSize int
	executors    []config.Executor

	nodes []*Node

	// boundary holds the allocated graph-level port indices per kind.
	boundary [numKinds]map[int]struct{}

	// edges maps every connected consumer to its producer.
	edges map[endpoint]endpoint
	// fanout counts the consumers of each producer.
	fanout map[endpoint]int

	// portNames records SetName calls per port.
	portNames map[endpoint]string
	// streamNames holds the explicit name of each named producer.
	streamNames map[endpoint]string
	// owners maps an explicit name back to its producer.
	owners map[nameKey]endpoint
}

// Option configures a Graph.
type Option func(*Graph)

// WithLogger sets the logger used for construction diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(g *Graph) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithType sets the graph type, used when the graph is registered as a subgraph.
func WithType(name string) Option {
	return func(g *Graph) {
		g.typeName = name
	}
}

// WithMaxQueueSize bounds the engine's per-stream input queues.
func WithMaxQueueSize(n int) Option {
	return func(g *Graph) {
		if n > 0 {
			g.maxQueueSize = n
		}
	}
}

// New returns an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		logger:      slog.New(slog.DiscardHandler),
		edges:       make(map[endpoint]endpoint),
		fanout:      make(map[endpoint]int),
		portNames:   make(map[endpoint]string),
		streamNames: make(map[endpoint]string),
		owners:      make(map[nameKey]endpoint),
	}
	for k := range g.boundary {
		g.boundary[k] = make(map[int]struct{})
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// In returns the graph input stream at index, allocating it on first use.
func (g *Graph) In(index int) Stream[Any] {
	return Stream[Any]{g: g, end: g.allocBoundary(streamOut, index)}
}

// Out returns the graph output stream at index, allocating it on first use.
// Graph outputs are connection targets.
func (g *Graph) Out(index int) Stream[Any] {
	return Stream[Any]{g: g, end: g.allocBoundary(streamIn, index)}
}

// SideIn returns the graph input side packet at index.
func (g *Graph) SideIn(index int) SidePacket[Any] {
	return SidePacket[Any]{g: g, end: g.allocBoundary(sideOut, index)}
}

// SideOut returns the graph output side packet at index.
func (g *Graph) SideOut(index int) SidePacket[Any] {
	return SidePacket[Any]{g: g, end: g.allocBoundary(sideIn, index)}
}

func (g *Graph) allocBoundary(kind portKind, index int) endpoint {
	if index < 0 {
		panic(fmt.Sprintf("pipegraph: negative graph port index %d", index))
	}
	g.boundary[kind][index] = struct{}{}
	return endpoint{node: boundary, kind: kind, addr: PortAddress{Index: index}}
}

// AddNode appends a node running the given calculator.
func (g *Graph) AddNode(kind string) *Node {
	n := &Node{g: g, id: len(g.nodes), kind: kind}
	g.nodes = append(g.nodes, n)
	g.logger.Debug("node added", "id", n.id, "calculator", kind)
	return n
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	return append([]*Node(nil), g.nodes...)
}

// SetType sets the graph type, used when the graph is registered as a subgraph.
func (g *Graph) SetType(name string) {
	g.typeName = name
}

// SetMaxQueueSize bounds the engine's per-stream input queues. Zero leaves
// the engine default.
func (g *Graph) SetMaxQueueSize(n int) {
	g.maxQueueSize = n
}

// AddExecutor declares a named executor. numThreads of zero leaves the
// executor's default.
func (g *Graph) AddExecutor(name, typ string, numThreads int) error {
	if !validName(name) {
		return pipegraph.NewNameError("executor", name, "", pipegraph.ErrInvalidName)
	}
	for _, e := range g.executors {
		if e.Name == name {
			return pipegraph.NewNameError("executor", name, e.Name, pipegraph.ErrNameAlreadySet)
		}
	}
	g.executors = append(g.executors, config.Executor{Name: name, Type: typ, NumThreads: numThreads})
	return nil
}
