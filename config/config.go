// Package config defines the declarative graph configuration emitted by the
// graph builder and the codecs that serialize it.
//
// The artifact is the only contract with the execution engine. Its field names
// follow the engine's configuration schema:
//
//	input_stream: "in"
//	output_stream: "out"
//	node {
//	  calculator: "ScaleCalculator"
//	  input_stream: "X:in"
//	  output_stream: "Y:out"
//	}
//
// All encoders are deterministic: encoding the same Graph twice yields the
// same bytes, which keeps golden files diffable.
package config

// Graph is the top-level configuration of a pipeline.
type Graph struct {
	Type             string     `json:"type,omitempty" yaml:"type,omitempty" msgpack:"type,omitempty"`
	InputStream      []string   `json:"input_stream,omitempty" yaml:"input_stream,omitempty" msgpack:"input_stream,omitempty"`
	OutputStream     []string   `json:"output_stream,omitempty" yaml:"output_stream,omitempty" msgpack:"output_stream,omitempty"`
	InputSidePacket  []string   `json:"input_side_packet,omitempty" yaml:"input_side_packet,omitempty" msgpack:"input_side_packet,omitempty"`
	OutputSidePacket []string   `json:"output_side_packet,omitempty" yaml:"output_side_packet,omitempty" msgpack:"output_side_packet,omitempty"`
	MaxQueueSize     int        `json:"max_queue_size,omitempty" yaml:"max_queue_size,omitempty" msgpack:"max_queue_size,omitempty"`
	Executor         []Executor `json:"executor,omitempty" yaml:"executor,omitempty" msgpack:"executor,omitempty"`
	Node             []Node     `json:"node,omitempty" yaml:"node,omitempty" msgpack:"node,omitempty"`
}

// Node is the configuration of a single calculator node.
type Node struct {
	Calculator         string            `json:"calculator" yaml:"calculator" msgpack:"calculator"`
	InputStream        []string          `json:"input_stream,omitempty" yaml:"input_stream,omitempty" msgpack:"input_stream,omitempty"`
	OutputStream       []string          `json:"output_stream,omitempty" yaml:"output_stream,omitempty" msgpack:"output_stream,omitempty"`
	InputSidePacket    []string          `json:"input_side_packet,omitempty" yaml:"input_side_packet,omitempty" msgpack:"input_side_packet,omitempty"`
	OutputSidePacket   []string          `json:"output_side_packet,omitempty" yaml:"output_side_packet,omitempty" msgpack:"output_side_packet,omitempty"`
	Executor           string            `json:"executor,omitempty" yaml:"executor,omitempty" msgpack:"executor,omitempty"`
	InputStreamHandler string            `json:"input_stream_handler,omitempty" yaml:"input_stream_handler,omitempty" msgpack:"input_stream_handler,omitempty"`
	InputStreamInfo    []InputStreamInfo `json:"input_stream_info,omitempty" yaml:"input_stream_info,omitempty" msgpack:"input_stream_info,omitempty"`
	NodeOptions        *Options          `json:"node_options,omitempty" yaml:"node_options,omitempty" msgpack:"node_options,omitempty"`
}

// InputStreamInfo carries per-input flags, addressed by "TAG:index".
type InputStreamInfo struct {
	TagIndex string `json:"tag_index" yaml:"tag_index" msgpack:"tag_index"`
	BackEdge bool   `json:"back_edge,omitempty" yaml:"back_edge,omitempty" msgpack:"back_edge,omitempty"`
}

// Executor declares a named executor nodes can be pinned to.
type Executor struct {
	Name       string `json:"name" yaml:"name" msgpack:"name"`
	Type       string `json:"type,omitempty" yaml:"type,omitempty" msgpack:"type,omitempty"`
	NumThreads int    `json:"num_threads,omitempty" yaml:"num_threads,omitempty" msgpack:"num_threads,omitempty"`
}

// Options is an opaque options payload keyed by its type identifier.
// Value is a plain tree of maps, slices, strings, numbers and booleans.
type Options struct {
	Type  string         `json:"type" yaml:"type" msgpack:"type"`
	Value map[string]any `json:"value,omitempty" yaml:"value,omitempty" msgpack:"value,omitempty"`
}
