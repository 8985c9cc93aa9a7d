package processor

import (
	"bytes"
	"fmt"
	"reflect"
	"unicode"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/rezonia/zugferd/internal/pdfa"
)

// Format represents the detected input format
type Format int

const (
	FormatUnknown Format = iota
	FormatJSON
	FormatYAML
	FormatXML
	FormatPDF
)

// String returns the format name
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatXML:
		return "xml"
	case FormatPDF:
		return "pdf"
	default:
		return "unknown"
	}
}

// DetectFormat detects the format of input data from its first bytes
func DetectFormat(data []byte) Format {
	if pdfa.IsPDF(data) {
		return FormatPDF
	}

	trimmed := bytes.TrimLeftFunc(data, unicode.IsSpace)
	trimmed = bytes.TrimPrefix(trimmed, []byte("\xef\xbb\xbf"))
	if len(trimmed) == 0 {
		return FormatUnknown
	}

	switch trimmed[0] {
	case '<':
		return FormatXML
	case '{', '[':
		return FormatJSON
	}

	if bytes.HasPrefix(trimmed, []byte("---")) || bytes.Contains(firstLine(trimmed), []byte(":")) {
		return FormatYAML
	}
	return FormatUnknown
}

func firstLine(data []byte) []byte {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return data[:i]
	}
	return data
}

// Decode reads invoice input as JSON or YAML depending on its content
func Decode(data []byte) (interface{}, error) {
	switch f := DetectFormat(data); f {
	case FormatJSON:
		return DecodeJSON(data)
	case FormatYAML:
		return DecodeYAML(data)
	default:
		return nil, fmt.Errorf("decode input: unsupported format %s", f)
	}
}

// DecodeJSON decodes a JSON document keeping numbers as json.Number so
// amounts never pass through binary floating point
func DecodeJSON(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode json input: %w", err)
	}
	return v, nil
}

// DecodeYAML decodes a YAML document. Plain numeric scalars keep their
// literal text as json.Number, like DecodeJSON.
func DecodeYAML(data []byte) (interface{}, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode yaml input: %w", err)
	}
	v, err := fromYAML(&doc)
	if err != nil {
		return nil, fmt.Errorf("decode yaml input: %w", err)
	}
	return v, nil
}

func fromYAML(n *yaml.Node) (interface{}, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return fromYAML(n.Content[0])
	case yaml.AliasNode:
		return fromYAML(n.Alias)
	case yaml.SequenceNode:
		out := make([]interface{}, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := fromYAML(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		out := make(map[string]interface{}, len(n.Content)/2)
		if err := mergeYAML(out, n); err != nil {
			return nil, err
		}
		return out, nil
	}

	if tag := n.ShortTag(); tag == "!!int" || tag == "!!float" {
		if _, err := decimal.NewFromString(n.Value); err == nil {
			return json.Number(n.Value), nil
		}
	}
	var v interface{}
	if err := n.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// mergeYAML copies the pairs of mapping into out. Explicit keys win over
// those pulled in with a "<<" merge key.
func mergeYAML(out map[string]interface{}, mapping *yaml.Node) error {
	var merges []*yaml.Node
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key, value := mapping.Content[i], mapping.Content[i+1]
		if key.ShortTag() == "!!merge" {
			merges = append(merges, value)
			continue
		}
		v, err := fromYAML(value)
		if err != nil {
			return err
		}
		out[key.Value] = v
	}

	for _, m := range merges {
		if m.Kind == yaml.AliasNode {
			m = m.Alias
		}
		sources := []*yaml.Node{m}
		if m.Kind == yaml.SequenceNode {
			sources = m.Content
		}
		for _, src := range sources {
			if src.Kind == yaml.AliasNode {
				src = src.Alias
			}
			if src.Kind != yaml.MappingNode {
				return fmt.Errorf("line %d: merge value is not a mapping", src.Line)
			}
			merged := make(map[string]interface{}, len(src.Content)/2)
			if err := mergeYAML(merged, src); err != nil {
				return err
			}
			for k, v := range merged {
				if _, ok := out[k]; !ok {
					out[k] = v
				}
			}
		}
	}
	return nil
}

// Normalize converts structs into the generic object tree the schema
// validator walks. Maps, slices and scalars are returned unchanged.
func Normalize(raw interface{}) (interface{}, error) {
	switch v := raw.(type) {
	case nil, map[string]interface{}:
		return raw, nil
	case []byte:
		return Decode(v)
	case json.RawMessage:
		return DecodeJSON(v)
	}

	rv := reflect.ValueOf(raw)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return raw, nil
	}

	data, err := json.Marshal(rv.Interface())
	if err != nil {
		return nil, fmt.Errorf("normalize %T: %w", raw, err)
	}
	return DecodeJSON(data)
}
