// Package gen generates typed construction helpers from node contracts.
//
// A contract registry (see compiler/load) declares the ports of each
// calculator kind. For every contract the generator writes a file with a
// kind constant, an Inputs struct of typed handles, an Outputs struct and a
// constructor that adds the node and wires it:
//
//	out, err := calculators.CropImage(g, calculators.CropImageInputs{
//	    Image: frames,
//	})
//	cropped := out.Image // graph.Stream[media.Frame]
//
// Ports map to handles as follows:
//
//   - inputs and side inputs become fields of the Inputs struct
//   - outputs and side outputs become fields of the Outputs struct
//   - repeated consumer ports are slices, connected in order
//   - repeated producer ports are slices sized by a Count field on Inputs
//   - optional inputs are skipped when the handle is the zero value
//   - a contract's options type adds an Options pointer to Inputs
//
// # Configuration
//
// Configuration is done via the functional options pattern:
//
//	err := gen.Generate(ctx,
//	    gen.WithRegistry(registry),
//	    gen.WithTarget("./calculators"),
//	    gen.WithFeatures(gen.FeatureRegistry),
//	)
//
// # Error Handling
//
//   - ConfigError: invalid or missing configuration (ErrMissingConfig)
//   - GenerationError: rendering or writing failures (ErrGenerationFailed)
//
// Registry problems surface as a GenerationError wrapping the
// load.ErrInvalidContract errors of the registry.
//
// # Features
//
//   - registry: registry.go with the Kinds list of the package
//   - must: Must<Func> helpers that panic instead of returning errors
package gen
