// Package schema describes business documents declaratively and walks raw
// input against such a description, producing a normalized value tree or the
// complete list of failures.
package schema

import (
	"strings"

	"github.com/rezonia/zugferd/internal/coerce"
)

// Requirement decides whether an absent field is an error. It sees the
// normalized siblings of the field and, through Parent, its ancestors.
type Requirement func(s *Scope) bool

// Producer computes a default for an absent optional field. The produced
// value is raw input and goes through the field's coercers.
type Producer func(s *Scope) interface{}

// Field is one node of a document schema. A field is a leaf when Types is
// set and a container when Shape is set, never both.
type Field struct {
	// Name is the input key
	Name string
	// Key is the XML path relative to the parent element
	Key string
	// Types are tried in order, the first accepting coercer wins
	Types []coerce.Coercer
	// Shape lists child fields in XML order
	Shape []*Field
	// Multiple marks a repeating group, input is an array
	Multiple bool
	// MinItems is the minimum length of a present repeating group
	MinItems int
	// Required defaults to true when nil
	Required Requirement
	Default  Producer

	Description string
	XPath       string
}

// IsLeaf reports whether the field is bound to coercers
func (f *Field) IsLeaf() bool {
	return len(f.Types) > 0
}

// IsContainer reports whether the field has a nested shape
func (f *Field) IsContainer() bool {
	return f.Shape != nil
}

// IsRequired evaluates the requirement against s
func (f *Field) IsRequired(s *Scope) bool {
	if f.Required == nil {
		return true
	}
	return f.Required(s)
}

// Child returns the direct child field with the given name
func (f *Field) Child(name string) *Field {
	for _, c := range f.Shape {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Lookup resolves a dotted path of field names
func (f *Field) Lookup(path string) *Field {
	cur := f
	for _, name := range strings.Split(path, ".") {
		if cur = cur.Child(name); cur == nil {
			return nil
		}
	}
	return cur
}

// Object builds a container field
func Object(name, key string, shape ...*Field) *Field {
	if shape == nil {
		shape = []*Field{}
	}
	return &Field{Name: name, Key: key, Shape: shape}
}

// Leaf builds a leaf field
func Leaf(name, key string, types ...coerce.Coercer) *Field {
	return &Field{Name: name, Key: key, Types: types}
}

// Optional makes the field optional
func (f *Field) Optional() *Field {
	f.Required = Never
	return f
}

// RequiredIf replaces the requirement
func (f *Field) RequiredIf(r Requirement) *Field {
	f.Required = r
	return f
}

// Repeated turns the field into a repeating group with at least min items
func (f *Field) Repeated(min int) *Field {
	f.Multiple = true
	f.MinItems = min
	return f
}

// WithDefault sets the default producer
func (f *Field) WithDefault(p Producer) *Field {
	f.Default = p
	return f
}

// Describe documents the field, usually with its business term
func (f *Field) Describe(description string) *Field {
	f.Description = description
	return f
}

// Walk visits f and its descendants depth first in declaration order
func Walk(f *Field, fn func(path []string, f *Field) error) error {
	return walk(f, nil, fn)
}

func walk(f *Field, path []string, fn func([]string, *Field) error) error {
	if err := fn(path, f); err != nil {
		return err
	}
	for _, c := range f.Shape {
		if err := walk(c, extend(path, c.Name), fn); err != nil {
			return err
		}
	}
	return nil
}

// AnnotateXPath fills XPath of every field below root from the keys,
// starting at base. Fields with an XPath already set keep it.
func AnnotateXPath(f *Field, base string) {
	if f.XPath == "" {
		f.XPath = base
	}
	for _, c := range f.Shape {
		child := base
		if c.Key != "" && c.Key != "#" {
			child = base + "/" + c.Key
		}
		AnnotateXPath(c, child)
	}
}
