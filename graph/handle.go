package graph

import "github.com/syssam/pipegraph"

// portRef is the untyped view of a handle.
type portRef struct {
	g   *Graph
	end endpoint
	tag TypeTag
}

// StreamPort is implemented by every Stream[T]. It lets a typed stream be
// connected to a stream of another type parameter, with the type check
// deferred to construction time.
type StreamPort interface {
	streamPort() portRef
}

// SidePacketPort is implemented by every SidePacket[T].
type SidePacketPort interface {
	sidePacketPort() portRef
}

// Stream is a typed handle to a stream port. Handles are small values; copy
// them freely. The zero Stream is invalid.
type Stream[T any] struct {
	g   *Graph
	end endpoint
}

func (s Stream[T]) streamPort() portRef {
	return portRef{g: s.g, end: s.end, tag: TypeOf[T]()}
}

// Valid reports whether s refers to a port.
func (s Stream[T]) Valid() bool { return s.g != nil }

// Address returns the port address.
func (s Stream[T]) Address() PortAddress { return s.end.addr }

// Type returns the handle's type tag.
func (s Stream[T]) Type() TypeTag { return TypeOf[T]() }

// Name returns the explicit name of the stream flowing through s, or "" when
// it will be synthesized at config time.
func (s Stream[T]) Name() string {
	if s.g == nil {
		return ""
	}
	return s.g.explicitName(s.end)
}

// SetName names the stream flowing through s. A port may be named once;
// naming a consumer port names the stream that feeds it.
func (s Stream[T]) SetName(name string) (Stream[T], error) {
	if s.g == nil {
		return s, pipegraph.NewNameError("zero stream", name, "", pipegraph.ErrInvalidHandle)
	}
	return s, s.g.setName(s.end, name)
}

// MustSetName is like SetName but panics on error.
func (s Stream[T]) MustSetName(name string) Stream[T] {
	s, err := s.SetName(name)
	if err != nil {
		panic(err)
	}
	return s
}

// ConnectTo records an edge from s to the consumer port dst.
func (s Stream[T]) ConnectTo(dst StreamPort) error {
	if dst == nil {
		return connect(s.streamPort(), portRef{})
	}
	return connect(s.streamPort(), dst.streamPort())
}

// Cast relabels s with type U. The port is unchanged and no runtime
// representation check is performed: the declared type is taken on trust.
func Cast[U, T any](s Stream[T]) Stream[U] {
	return Stream[U]{g: s.g, end: s.end}
}

// Connect records an edge between two streams of the same type.
func Connect[T any](src, dst Stream[T]) error {
	return src.ConnectTo(dst)
}

// SidePacket is a typed handle to a side packet port. The zero SidePacket is
// invalid.
type SidePacket[T any] struct {
	g   *Graph
	end endpoint
}

func (p SidePacket[T]) sidePacketPort() portRef {
	return portRef{g: p.g, end: p.end, tag: TypeOf[T]()}
}

// Valid reports whether p refers to a port.
func (p SidePacket[T]) Valid() bool { return p.g != nil }

// Address returns the port address.
func (p SidePacket[T]) Address() PortAddress { return p.end.addr }

// Type returns the handle's type tag.
func (p SidePacket[T]) Type() TypeTag { return TypeOf[T]() }

// Name returns the explicit side packet name, or "".
func (p SidePacket[T]) Name() string {
	if p.g == nil {
		return ""
	}
	return p.g.explicitName(p.end)
}

// SetName names the side packet flowing through p.
func (p SidePacket[T]) SetName(name string) (SidePacket[T], error) {
	if p.g == nil {
		return p, pipegraph.NewNameError("zero side packet", name, "", pipegraph.ErrInvalidHandle)
	}
	return p, p.g.setName(p.end, name)
}

// MustSetName is like SetName but panics on error.
func (p SidePacket[T]) MustSetName(name string) SidePacket[T] {
	p, err := p.SetName(name)
	if err != nil {
		panic(err)
	}
	return p
}

// ConnectTo records an edge from p to the consumer port dst.
func (p SidePacket[T]) ConnectTo(dst SidePacketPort) error {
	if dst == nil {
		return connect(p.sidePacketPort(), portRef{})
	}
	return connect(p.sidePacketPort(), dst.sidePacketPort())
}

// CastSidePacket relabels p with type U without any runtime check.
func CastSidePacket[U, T any](p SidePacket[T]) SidePacket[U] {
	return SidePacket[U]{g: p.g, end: p.end}
}

// ConnectSidePacket records an edge between two side packets of the same type.
func ConnectSidePacket[T any](src, dst SidePacket[T]) error {
	return src.ConnectTo(dst)
}
