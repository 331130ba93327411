package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Format names a serialization of the configuration artifact.
type Format string

// Supported formats.
const (
	FormatText    Format = "text"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatMsgpack Format = "msgpack"
)

// Formats lists every supported format in a stable order.
var Formats = []Format{FormatText, FormatJSON, FormatYAML, FormatMsgpack}

// ErrUnsupportedFormat is returned for unknown formats and for decoding the
// text format, which is write-only.
var ErrUnsupportedFormat = errors.New("config: unsupported format")

// namespace scopes configuration fingerprints.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/syssam/pipegraph/config"))

// ParseFormat parses a format name, accepting common aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "txt", "pbtxt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "msgpack", "mp":
		return FormatMsgpack, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// Marshal encodes g in the given format.
func Marshal(g *Graph, f Format) ([]byte, error) {
	if g == nil {
		return nil, errors.New("config: nil graph")
	}
	switch f {
	case FormatText:
		return MarshalText(g)
	case FormatJSON:
		b, err := json.MarshalIndent(g, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("config: encode json: %w", err)
		}
		return append(b, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(g); err != nil {
			return nil, fmt.Errorf("config: encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("config: encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	case FormatMsgpack:
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		enc.SetSortMapKeys(true)
		if err := enc.Encode(g); err != nil {
			return nil, fmt.Errorf("config: encode msgpack: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// Unmarshal decodes a configuration previously encoded with Marshal.
// The text format cannot be decoded.
func Unmarshal(data []byte, f Format) (*Graph, error) {
	g := &Graph{}
	switch f {
	case FormatJSON:
		if err := json.Unmarshal(data, g); err != nil {
			return nil, fmt.Errorf("config: decode json: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(g); err != nil {
			return nil, fmt.Errorf("config: decode yaml: %w", err)
		}
	case FormatMsgpack:
		if err := msgpack.Unmarshal(data, g); err != nil {
			return nil, fmt.Errorf("config: decode msgpack: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: cannot decode %q", ErrUnsupportedFormat, f)
	}
	return g, nil
}

// Fingerprint returns a stable name-based UUID of g's text encoding. Two
// graphs have the same fingerprint iff their text encodings are identical.
func Fingerprint(g *Graph) (uuid.UUID, error) {
	b, err := Marshal(g, FormatText)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.NewSHA1(namespace, b), nil
}
