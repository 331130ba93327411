// Package load reads node contract registries.
//
// A registry is a YAML document declaring, for each calculator kind, the
// tags and Go types of its ports and the type of its options payload. The
// generator in compiler/gen turns a registry into typed construction helpers.
package load

import "strings"

// Registry is a set of node contracts sharing one generated package.
type Registry struct {
	// Package is the name of the generated package.
	Package string `yaml:"package" validate:"required,goident"`
	// Contracts lists the node kinds in declaration order.
	Contracts []*Contract `yaml:"contracts" validate:"required,min=1"`

	// Path is the file the registry was loaded from, if any.
	Path string `yaml:"-"`
}

// Contract describes the ports and options of one calculator kind.
type Contract struct {
	Kind        string  `yaml:"kind" validate:"required,goident"`
	Func        string  `yaml:"func,omitempty" validate:"omitempty,goident"`
	Comment     string  `yaml:"comment,omitempty"`
	Inputs      []*Port `yaml:"inputs,omitempty" validate:"dive,required"`
	Outputs     []*Port `yaml:"outputs,omitempty" validate:"dive,required"`
	SideInputs  []*Port `yaml:"side_inputs,omitempty" validate:"dive,required"`
	SideOutputs []*Port `yaml:"side_outputs,omitempty" validate:"dive,required"`
	Options     string  `yaml:"options,omitempty" validate:"omitempty,gotype"`
}

// Port describes a tagged port of a contract.
type Port struct {
	// Tag is the port tag, empty for the default tag.
	Tag string `yaml:"tag,omitempty" validate:"porttag"`
	// Type is the Go type carried by the port. Empty means any.
	Type string `yaml:"type,omitempty" validate:"omitempty,gotype"`
	// Name overrides the generated field name.
	Name string `yaml:"name,omitempty" validate:"omitempty,goident"`
	// Repeated ports take any number of connections under the same tag.
	Repeated bool `yaml:"repeated,omitempty"`
	// Optional input ports may be left unconnected by the caller.
	Optional bool `yaml:"optional,omitempty"`
}

// Category identifies one of the four port lists of a contract.
type Category int

// Port categories.
const (
	Inputs Category = iota
	Outputs
	SideInputs
	SideOutputs
)

// Categories lists every category in declaration order.
var Categories = []Category{Inputs, Outputs, SideInputs, SideOutputs}

func (c Category) String() string {
	switch c {
	case Inputs:
		return "inputs"
	case Outputs:
		return "outputs"
	case SideInputs:
		return "side_inputs"
	case SideOutputs:
		return "side_outputs"
	default:
		return "unknown"
	}
}

// Consumer reports whether ports of the category receive data.
func (c Category) Consumer() bool { return c == Inputs || c == SideInputs }

// SidePacket reports whether ports of the category carry side packets.
func (c Category) SidePacket() bool { return c == SideInputs || c == SideOutputs }

// Ports returns the ports of a category.
func (c *Contract) Ports(cat Category) []*Port {
	switch cat {
	case Inputs:
		return c.Inputs
	case Outputs:
		return c.Outputs
	case SideInputs:
		return c.SideInputs
	case SideOutputs:
		return c.SideOutputs
	default:
		return nil
	}
}

// FuncName returns the name of the generated helper: Func when set,
// otherwise Kind without its "Calculator" suffix.
func (c *Contract) FuncName() string {
	if c.Func != "" {
		return c.Func
	}
	if name := strings.TrimSuffix(c.Kind, "Calculator"); name != "" {
		return name
	}
	return c.Kind
}

// Lookup returns the contract of a kind.
func (r *Registry) Lookup(kind string) (*Contract, bool) {
	for _, c := range r.Contracts {
		if c.Kind == kind {
			return c, true
		}
	}
	return nil, false
}
