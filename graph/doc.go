// Package graph provides the typed builder for pipeline graphs.
//
// A Graph collects calculator nodes, the typed connections between their
// ports and the graph-level inputs and outputs, and emits the declarative
// configuration consumed by the execution engine (see package config).
//
// # Handles
//
// Ports are addressed through typed handles. Stream[T] refers to a stream
// port, SidePacket[T] to a side packet port. Newly allocated ports are
// untyped (T is Any); Cast relabels a handle without touching the port:
//
//	g := graph.New()
//	in := graph.Cast[int](g.In(0).MustSetName("in"))
//
// Cast performs no runtime check. The configuration carries no type
// information, so the declared type is taken on trust.
//
// # Nodes
//
// AddNode appends a node. Each call to In, Out, SideIn or SideOut allocates
// the next index under the given tag, so the order of calls determines the
// emitted configuration. Tags are upper-case identifiers or empty; a
// malformed tag panics:
//
//	n := g.AddNode("ScaleCalculator")
//	if err := in.ConnectTo(n.In("X")); err != nil {
//	    return err
//	}
//	out := graph.Cast[int](n.Out("Y"))
//
// Options returns the node's single options payload. Its type must be a
// struct or a string-keyed map whose fields all survive encoding:
//
//	opts, err := graph.Options[ScaleOptions](n)
//	opts.Factor = 2
//
// # Connections
//
// ConnectTo records an edge from a producer (node output or graph input) to
// a consumer (node input or graph output). A consumer accepts one producer;
// a producer may feed any number of consumers. Handles of different concrete
// types cannot be connected, and Any is compatible with every type. Connect
// is the compile-time checked form for two handles of the same type.
//
// # Names
//
// Stream names belong to producers. Naming a consumer port names the stream
// that feeds it. Unnamed streams get a deterministic synthesized name
// starting with "__", a prefix explicit names may not use.
//
// # Emission
//
// Config walks the nodes in insertion order. It fails with
// pipegraph.ErrIncompleteGraph if any node input, graph output or graph input
// is left unconnected; dangling node outputs are allowed.
package graph
