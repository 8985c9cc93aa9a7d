package xmlnode

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
)

// ErrNoRoot is returned when the input holds no root element
var ErrNoRoot = errors.New("xml document has no root element")

// FormatOption configures Format
type FormatOption func(*formatOptions)

type formatOptions struct {
	indent      int
	declaration bool
}

// WithIndent sets the number of spaces per nesting level, negative disables indentation
func WithIndent(spaces int) FormatOption {
	return func(o *formatOptions) {
		o.indent = spaces
	}
}

// WithoutDeclaration omits the <?xml ...?> prolog
func WithoutDeclaration() FormatOption {
	return func(o *formatOptions) {
		o.declaration = false
	}
}

// Parse parses XML text into a tree whose single key is the root element.
// The prolog is ignored.
func Parse(data []byte) (*Node, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrNoRoot
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parse xml: %w", err)
	}
	return fromDocument(doc)
}

// ParseString is Parse for string input
func ParseString(s string) (*Node, error) {
	return Parse([]byte(s))
}

// ParseReader reads and parses XML from r
func ParseReader(r io.Reader) (*Node, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("parse xml: %w", err)
	}
	return fromDocument(doc)
}

func fromDocument(doc *etree.Document) (*Node, error) {
	root := doc.Root()
	if root == nil {
		return nil, ErrNoRoot
	}
	return New().Set(root.FullTag(), fromElement(root)), nil
}

func fromElement(el *etree.Element) interface{} {
	children := el.ChildElements()
	text := el.Text()
	if len(children) > 0 && strings.TrimSpace(text) == "" {
		text = ""
	}

	if len(el.Attr) == 0 && len(children) == 0 {
		if text == "" {
			return New()
		}
		return text
	}

	n := New()
	for _, a := range el.Attr {
		n.Set(AttrPrefix+a.FullKey(), a.Value)
	}
	if text != "" {
		n.Set(TextKey, text)
	}
	for _, c := range children {
		n.Add(c.FullTag(), fromElement(c))
	}
	return n
}

// Format serializes a tree holding exactly one root element into XML text
func Format(n *Node, opts ...FormatOption) ([]byte, error) {
	o := formatOptions{indent: 2, declaration: true}
	for _, opt := range opts {
		opt(&o)
	}

	if n == nil {
		return nil, ErrNoRoot
	}
	keys := n.Keys()
	if len(keys) != 1 || IsAttr(keys[0]) || keys[0] == TextKey {
		return nil, fmt.Errorf("format xml: expected exactly one root element, got %d keys", len(keys))
	}

	doc := etree.NewDocument()
	if o.declaration {
		doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	}

	value, _ := n.Get(keys[0])
	if _, ok := value.([]interface{}); ok {
		return nil, fmt.Errorf("format xml: root element %s cannot repeat", keys[0])
	}
	if err := appendValue(&doc.Element, keys[0], value); err != nil {
		return nil, err
	}

	if o.indent >= 0 {
		doc.Indent(o.indent)
	}
	return doc.WriteToBytes()
}

// FormatString is Format returning a string
func FormatString(n *Node, opts ...FormatOption) (string, error) {
	b, err := Format(n, opts...)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func appendValue(parent *etree.Element, key string, value interface{}) error {
	switch v := value.(type) {
	case string:
		el := parent.CreateElement(key)
		if v != "" {
			el.SetText(v)
		}
	case *Node:
		return appendNode(parent.CreateElement(key), v)
	case []interface{}:
		for _, item := range v {
			if _, nested := item.([]interface{}); nested {
				return fmt.Errorf("format xml: nested sequence under %s", key)
			}
			if err := appendValue(parent, key, item); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("format xml: unsupported value %T under %s", value, key)
	}
	return nil
}

func appendNode(el *etree.Element, n *Node) error {
	var text string
	for _, e := range n.entries {
		switch {
		case IsAttr(e.key):
			s, ok := e.value.(string)
			if !ok {
				return fmt.Errorf("format xml: attribute %s must be a string, got %T", e.key, e.value)
			}
			el.CreateAttr(strings.TrimPrefix(e.key, AttrPrefix), s)
		case e.key == TextKey:
			s, ok := e.value.(string)
			if !ok {
				return fmt.Errorf("format xml: text of %s must be a string, got %T", el.FullTag(), e.value)
			}
			text = s
		}
	}
	if text != "" {
		el.SetText(text)
	}
	for _, e := range n.entries {
		if IsAttr(e.key) || e.key == TextKey {
			continue
		}
		if err := appendValue(el, e.key, e.value); err != nil {
			return err
		}
	}
	return nil
}
