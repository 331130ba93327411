package config

import (
	"bytes"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// typeURLPrefix prefixes options type identifiers in the text format.
const typeURLPrefix = "type.googleapis.com/"

// textWriter renders the engine's text configuration format. Indentation is
// two spaces per nesting level.
type textWriter struct {
	buf   bytes.Buffer
	depth int
}

func (w *textWriter) line(format string, args ...any) {
	w.buf.WriteString(strings.Repeat("  ", w.depth))
	fmt.Fprintf(&w.buf, format, args...)
	w.buf.WriteByte('\n')
}

func (w *textWriter) open(name string) {
	w.line("%s {", name)
	w.depth++
}

func (w *textWriter) close() {
	w.depth--
	w.line("}")
}

func (w *textWriter) str(key, value string) {
	if value != "" {
		w.line("%s: %s", key, strconv.Quote(value))
	}
}

func (w *textWriter) strs(key string, values []string) {
	for _, v := range values {
		w.line("%s: %s", key, strconv.Quote(v))
	}
}

func (w *textWriter) int(key string, value int) {
	if value != 0 {
		w.line("%s: %d", key, value)
	}
}

// MarshalText renders g in the text configuration format.
func MarshalText(g *Graph) ([]byte, error) {
	w := &textWriter{}
	w.str("type", g.Type)
	w.strs("input_stream", g.InputStream)
	w.strs("output_stream", g.OutputStream)
	w.strs("input_side_packet", g.InputSidePacket)
	w.strs("output_side_packet", g.OutputSidePacket)
	w.int("max_queue_size", g.MaxQueueSize)
	for _, e := range g.Executor {
		w.open("executor")
		w.str("name", e.Name)
		w.str("type", e.Type)
		if e.NumThreads > 0 {
			w.open("options")
			w.open("[" + typeURLPrefix + "mediapipe.ThreadPoolExecutorOptions.ext]")
			w.int("num_threads", e.NumThreads)
			w.close()
			w.close()
		}
		w.close()
	}
	for _, n := range g.Node {
		if err := w.node(n); err != nil {
			return nil, err
		}
	}
	return w.buf.Bytes(), nil
}

func (w *textWriter) node(n Node) error {
	w.open("node")
	defer w.close()
	w.str("calculator", n.Calculator)
	w.strs("input_stream", n.InputStream)
	w.strs("output_stream", n.OutputStream)
	w.strs("input_side_packet", n.InputSidePacket)
	w.strs("output_side_packet", n.OutputSidePacket)
	w.str("executor", n.Executor)
	if n.InputStreamHandler != "" {
		w.open("input_stream_handler")
		w.str("input_stream_handler", n.InputStreamHandler)
		w.close()
	}
	for _, info := range n.InputStreamInfo {
		w.open("input_stream_info")
		w.str("tag_index", info.TagIndex)
		if info.BackEdge {
			w.line("back_edge: true")
		}
		w.close()
	}
	if opts := n.NodeOptions; opts != nil {
		w.open("node_options")
		w.open("[" + typeURLPrefix + opts.Type + "]")
		if err := w.fields(opts.Value); err != nil {
			return fmt.Errorf("node %q options: %w", n.Calculator, err)
		}
		w.close()
		w.close()
	}
	return nil
}

// fields renders a map in sorted key order.
func (w *textWriter) fields(m map[string]any) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if err := w.value(k, m[k]); err != nil {
			return err
		}
	}
	return nil
}

func (w *textWriter) value(key string, v any) error {
	switch v := v.(type) {
	case nil:
		return nil
	case map[string]any:
		w.open(key)
		if err := w.fields(v); err != nil {
			return err
		}
		w.close()
		return nil
	case []any:
		for _, e := range v {
			if _, nested := e.([]any); nested {
				return fmt.Errorf("field %q: nested lists are not representable", key)
			}
			if err := w.value(key, e); err != nil {
				return err
			}
		}
		return nil
	}
	s, err := scalar(v)
	if err != nil {
		return fmt.Errorf("field %q: %w", key, err)
	}
	w.line("%s: %s", key, s)
	return nil
}

func scalar(v any) (string, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return strconv.Quote(rv.String()), nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported value of type %T", v)
	}
}
