package gen

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/imports"

	"github.com/syssam/pipegraph/compiler/load"
)

const (
	graphPkg     = "github.com/syssam/pipegraph/graph"
	registryFile = "registry.go"
)

// Generator renders typed construction helpers for the contracts of a
// registry using Jennifer. Each contract gets its own file:
//
//	out, err := calculators.CropImage(g, calculators.CropImageInputs{
//	    Image: frames,
//	    Options: &media.CropOptions{Width: 64},
//	})
type Generator struct {
	cfg     *Config
	workers int
}

// NewGenerator creates a generator for the given configuration.
func NewGenerator(cfg *Config) *Generator {
	workers := cfg.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Generator{cfg: cfg, workers: workers}
}

// Generate is the convenience function to configure and run a generator.
func Generate(ctx context.Context, opts ...Option) error {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return err
	}
	return NewGenerator(cfg).Generate(ctx)
}

// Generate writes one file per contract, plus the files of enabled
// features, rendering them in parallel.
func (g *Generator) Generate(ctx context.Context) error {
	out := g.cfg.Output()
	if out.Target == "" {
		return NewConfigError("Target", nil, "missing target directory in config")
	}
	if g.cfg.Registry == nil {
		return NewConfigError("Registry", nil, "missing contract registry in config")
	}
	if !isIdent(out.Package) {
		return NewConfigError("Package", out.Package, "package must be a Go identifier")
	}
	if err := g.cfg.Registry.Validate(); err != nil {
		return NewGenerationError("", "", "invalid registry", err)
	}
	files := make(map[string]string, len(g.cfg.Registry.Contracts))
	for _, c := range g.cfg.Registry.Contracts {
		name := fileName(c)
		if other, ok := files[name]; ok || name == registryFile {
			return NewGenerationError(c.Kind, name, fmt.Sprintf("file name collides with %s", cmp.Or(other, "the registry")), nil)
		}
		files[name] = c.Kind
	}
	if err := os.MkdirAll(out.Target, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	log := g.cfg.logger()
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)

	for _, c := range g.cfg.Registry.Contracts {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			f, err := g.contractFile(c)
			if err != nil {
				return err
			}
			return g.writeFile(f, c.Kind, fileName(c))
		})
	}
	if g.enabled(FeatureRegistry) {
		eg.Go(func() error {
			return g.writeFile(g.registry(), "", registryFile)
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for _, f := range AllFeatures {
		if f.cleanup != nil && !g.enabled(f) {
			if err := f.cleanup(g.cfg); err != nil {
				return fmt.Errorf("cleanup feature %s: %w", f.Name, err)
			}
		}
	}
	log.Info("helpers generated", "target", out.Target, "package", out.Package, "contracts", len(g.cfg.Registry.Contracts))
	return nil
}

func (g *Generator) enabled(f Feature) bool {
	ok, _ := g.cfg.FeatureEnabled(f.Name)
	return ok
}

// writeFile renders f, formats it and writes it to the target directory.
func (g *Generator) writeFile(f *jen.File, kind, name string) error {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return NewGenerationError(kind, name, "render", err)
	}
	path := filepath.Join(g.cfg.Target, name)
	formatted, err := imports.Process(path, buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return NewGenerationError(kind, name, "format", err)
	}
	if err := os.WriteFile(path, formatted, 0o644); err != nil {
		return NewGenerationError(kind, name, "write", err)
	}
	g.cfg.logger().Debug("file written", "path", path, "bytes", len(formatted))
	return nil
}

// newFile creates a new Jennifer file with the header comment.
func (g *Generator) newFile() *jen.File {
	out := g.cfg.Output()
	f := jen.NewFile(out.Package)
	f.HeaderComment(out.Header)
	f.ImportName(graphPkg, "graph")
	return f
}

// portSpec is a contract port resolved for rendering.
type portSpec struct {
	cat   load.Category
	port  *load.Port
	field string
	typ   load.TypeRef
}

// handle returns the handle type of the port, a slice for repeated ports.
func (p portSpec) handle() jen.Code {
	name := "Stream"
	if p.cat.SidePacket() {
		name = "SidePacket"
	}
	h := jen.Qual(graphPkg, name).Types(typeCode(p.typ))
	if p.port.Repeated {
		return jen.Index().Add(h)
	}
	return h
}

// alloc returns the Node method allocating ports of the category.
func (p portSpec) alloc() string {
	switch p.cat {
	case load.Inputs:
		return "In"
	case load.Outputs:
		return "Out"
	case load.SideInputs:
		return "SideIn"
	default:
		return "SideOut"
	}
}

// cast returns the expression allocating the output port as a typed handle.
func (p portSpec) cast() jen.Code {
	fn := "Cast"
	if p.cat.SidePacket() {
		fn = "CastSidePacket"
	}
	return jen.Qual(graphPkg, fn).Types(typeCode(p.typ)).Call(
		jen.Id("n").Dot(p.alloc()).Call(jen.Lit(p.port.Tag)),
	)
}

func (p portSpec) countField() string { return p.field + "Count" }

// typeCode renders a parsed type reference.
func typeCode(t load.TypeRef) jen.Code {
	s := &jen.Statement{}
	if t.Slice {
		s = s.Index()
	}
	if t.Pointer {
		s = s.Op("*")
	}
	if t.PkgPath != "" {
		return s.Qual(t.PkgPath, t.Name)
	}
	return s.Id(t.Name)
}

// contractFile renders the helper of one contract: the kind constant, the
// Inputs and Outputs structs and the constructor function.
func (g *Generator) contractFile(c *load.Contract) (*jen.File, error) {
	fn := c.FuncName()
	inT, outT, kind := fn+"Inputs", fn+"Outputs", fn+"Kind"

	var consumers, producers []portSpec
	inFields := map[string]bool{}
	outFields := map[string]bool{"Node": true}
	claim := func(fields map[string]bool, name string) error {
		if fields[name] {
			return NewGenerationError(c.Kind, fileName(c), fmt.Sprintf("field %s declared twice", name), nil)
		}
		fields[name] = true
		return nil
	}
	for _, cat := range load.Categories {
		for _, p := range c.Ports(cat) {
			t, err := load.ParseType(p.Type)
			if err != nil {
				return nil, NewGenerationError(c.Kind, fileName(c), "port type", err)
			}
			spec := portSpec{cat: cat, port: p, field: fieldName(cat, p), typ: t}
			if cat.Consumer() {
				if err := claim(inFields, spec.field); err != nil {
					return nil, err
				}
				consumers = append(consumers, spec)
				continue
			}
			if err := claim(outFields, spec.field); err != nil {
				return nil, err
			}
			if p.Repeated {
				if err := claim(inFields, spec.countField()); err != nil {
					return nil, err
				}
			}
			producers = append(producers, spec)
		}
	}
	var opts load.TypeRef
	if c.Options != "" {
		t, err := load.ParseType(c.Options)
		if err != nil {
			return nil, NewGenerationError(c.Kind, fileName(c), "options type", err)
		}
		if err := claim(inFields, "Options"); err != nil {
			return nil, err
		}
		opts = t
	}

	f := g.newFile()
	f.Commentf("%s is the calculator kind of %s nodes.", kind, fn)
	f.Const().Id(kind).Op("=").Lit(c.Kind)

	// Inputs.
	var fields []jen.Code
	for _, p := range consumers {
		switch {
		case p.port.Optional:
			fields = append(fields, jen.Commentf("%s is optional; leave it unset to skip the %s port.", p.field, portLabel(p)))
		case p.port.Repeated:
			fields = append(fields, jen.Commentf("%s are connected to consecutive %s ports.", p.field, portLabel(p)))
		}
		fields = append(fields, jen.Id(p.field).Add(p.handle()))
	}
	for _, p := range producers {
		if p.port.Repeated {
			fields = append(fields,
				jen.Commentf("%s is the number of %s ports to allocate.", p.countField(), portLabel(p)),
				jen.Id(p.countField()).Int(),
			)
		}
	}
	if c.Options != "" {
		fields = append(fields,
			jen.Comment("Options, when set, is copied into the node options."),
			jen.Id("Options").Op("*").Add(typeCode(opts)),
		)
	}
	f.Commentf("%s holds the handles feeding a %s node.", inT, c.Kind)
	f.Type().Id(inT).Struct(fields...)

	// Outputs.
	fields = []jen.Code{jen.Id("Node").Op("*").Qual(graphPkg, "Node")}
	for _, p := range producers {
		fields = append(fields, jen.Id(p.field).Add(p.handle()))
	}
	f.Commentf("%s holds the node and the handles it produces.", outT)
	f.Type().Id(outT).Struct(fields...)

	// Constructor.
	fail := func() jen.Code {
		return jen.Return(jen.Id(outT).Values(), jen.Qual("fmt", "Errorf").Call(jen.Lit(fn+": %w"), jen.Err()))
	}
	connect := func(src jen.Code, p portSpec) jen.Code {
		return jen.If(
			jen.Err().Op(":=").Add(src).Dot("ConnectTo").Call(jen.Id("n").Dot(p.alloc()).Call(jen.Lit(p.port.Tag))),
			jen.Err().Op("!=").Nil(),
		).Block(fail())
	}
	body := []jen.Code{
		jen.Id("n").Op(":=").Id("g").Dot("AddNode").Call(jen.Id(kind)),
		jen.Id("out").Op(":=").Id(outT).Values(jen.Dict{jen.Id("Node"): jen.Id("n")}),
	}
	for _, p := range consumers {
		field := jen.Id("in").Dot(p.field)
		switch {
		case p.port.Repeated:
			body = append(body, jen.For(jen.List(jen.Id("_"), jen.Id("h")).Op(":=").Range().Add(field)).Block(
				connect(jen.Id("h"), p),
			))
		case p.port.Optional:
			body = append(body, jen.If(jen.Id("in").Dot(p.field).Dot("Valid").Call()).Block(
				connect(jen.Id("in").Dot(p.field), p),
			))
		default:
			body = append(body, connect(field, p))
		}
	}
	if c.Options != "" {
		body = append(body, jen.If(jen.Id("in").Dot("Options").Op("!=").Nil()).Block(
			jen.List(jen.Id("opts"), jen.Err()).Op(":=").Qual(graphPkg, "Options").Types(typeCode(opts)).Call(jen.Id("n")),
			jen.If(jen.Err().Op("!=").Nil()).Block(fail()),
			jen.Op("*").Id("opts").Op("=").Op("*").Id("in").Dot("Options"),
		))
	}
	for _, p := range producers {
		target := jen.Id("out").Dot(p.field)
		if p.port.Repeated {
			body = append(body, jen.For(jen.Range().Id("in").Dot(p.countField())).Block(
				jen.Id("out").Dot(p.field).Op("=").Append(jen.Id("out").Dot(p.field), p.cast()),
			))
			continue
		}
		body = append(body, target.Op("=").Add(p.cast()))
	}
	body = append(body, jen.Return(jen.Id("out"), jen.Nil()))

	f.Comment(funcDoc(c))
	f.Func().Id(fn).Params(
		jen.Id("g").Op("*").Qual(graphPkg, "Graph"),
		jen.Id("in").Id(inT),
	).Params(jen.Id(outT), jen.Error()).Block(body...)

	if g.enabled(FeatureMust) {
		f.Commentf("Must%s is like %s but panics if the node cannot be wired.", fn, fn)
		f.Func().Id("Must"+fn).Params(
			jen.Id("g").Op("*").Qual(graphPkg, "Graph"),
			jen.Id("in").Id(inT),
		).Id(outT).Block(
			jen.List(jen.Id("out"), jen.Err()).Op(":=").Id(fn).Call(jen.Id("g"), jen.Id("in")),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Panic(jen.Err())),
			jen.Return(jen.Id("out")),
		)
	}
	return f, nil
}

// registry renders the Kinds list of the registry feature.
func (g *Generator) registry() *jen.File {
	f := g.newFile()
	kinds := make([]jen.Code, 0, len(g.cfg.Registry.Contracts))
	for _, c := range g.cfg.Registry.Contracts {
		kinds = append(kinds, jen.Id(c.FuncName()+"Kind"))
	}
	f.Comment("Kinds lists the calculator kinds of this package in declaration order.")
	f.Var().Id("Kinds").Op("=").Index().String().Custom(jen.Options{
		Open:      "{",
		Close:     "}",
		Separator: ",",
		Multi:     true,
	}, kinds...)
	return f
}

var portNouns = map[load.Category]string{
	load.Inputs:      "input",
	load.Outputs:     "output",
	load.SideInputs:  "side input",
	load.SideOutputs: "side output",
}

func portLabel(p portSpec) string {
	tag := p.port.Tag
	if tag == "" {
		tag = "default"
	}
	return tag + " " + portNouns[p.cat]
}

func funcDoc(c *load.Contract) string {
	fn := c.FuncName()
	if c.Comment == "" {
		return fmt.Sprintf("%s adds a %s node to g and wires its inputs.", fn, c.Kind)
	}
	doc := fn + " " + c.Comment
	if doc[len(doc)-1] != '.' {
		doc += "."
	}
	return doc
}
