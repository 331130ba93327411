// Package pipegraph builds declarative pipeline configurations with
// construction-time type safety.
//
// The module is organized as:
//
//   - [graph]: the typed graph builder (nodes, typed handles, connections)
//   - [config]: the emitted configuration and its text, JSON, YAML and
//     MessagePack encodings
//   - [compiler/load]: node contract registries loaded from YAML
//   - [compiler/gen]: generation of typed node helpers from contracts
//
// This package holds the error taxonomy shared by all of them. Every
// construction error matches one sentinel through errors.Is:
//
//	if err := src.ConnectTo(dst); errors.Is(err, pipegraph.ErrTypeMismatch) {
//	    ...
//	}
package pipegraph
