package graph

import "github.com/syssam/pipegraph"

// connect records edges[dst] = src after checking, in order: handle
// validity, graph ownership, direction, fan-in, type compatibility and the
// names carried by the two ports. A failed call leaves the graph unchanged.
func connect(src, dst portRef) error {
	if src.g == nil || dst.g == nil {
		return pipegraph.NewConnectionError(describeRef(src), describeRef(dst), pipegraph.ErrInvalidHandle)
	}
	if src.g != dst.g {
		return pipegraph.NewConnectionError(describeRef(src), describeRef(dst), pipegraph.ErrCrossGraphConnection)
	}
	g := src.g
	from, to := g.describe(src.end), g.describe(dst.end)
	if !src.end.kind.producer() || dst.end.kind.producer() {
		return pipegraph.NewConnectionError(from, to, pipegraph.ErrInvalidHandle)
	}
	if prev, ok := g.edges[dst.end]; ok {
		err := pipegraph.NewConnectionError(from, to, pipegraph.ErrPortAlreadyConnected)
		g.logger.Debug("edge rejected", "to", to, "connected_from", g.describe(prev))
		return err
	}
	if !src.tag.Compatible(dst.tag) {
		return &pipegraph.ConnectionError{
			Source:     from,
			Target:     to,
			SourceType: src.tag.String(),
			TargetType: dst.tag.String(),
			Err:        pipegraph.ErrTypeMismatch,
		}
	}
	pending, named := g.portNames[dst.end]
	if named {
		if err := g.checkBind(src.end, pending, to); err != nil {
			return err
		}
	}
	g.edges[dst.end] = src.end
	g.fanout[src.end]++
	if named {
		g.bind(src.end, pending)
	}
	g.logger.Debug("edge recorded", "from", from, "to", to, "type", src.tag.String())
	return nil
}

func describeRef(r portRef) string {
	if r.g == nil {
		return "invalid handle"
	}
	return r.g.describe(r.end)
}
