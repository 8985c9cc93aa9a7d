package schema

import (
	"fmt"
	"strings"
)

// Values is a normalized container. Leaves hold canonical coercer values,
// nested containers hold Values and repeating groups hold []interface{}.
type Values map[string]interface{}

// Scope exposes the normalized values of the container being walked
type Scope struct {
	values Values
	parent *Scope
}

// NewScope wraps values, parent may be nil
func NewScope(values Values, parent *Scope) *Scope {
	return &Scope{values: values, parent: parent}
}

// Parent returns the scope of the enclosing container
func (s *Scope) Parent() *Scope {
	if s == nil {
		return nil
	}
	return s.parent
}

// Get resolves a dotted path within this scope
func (s *Scope) Get(path string) (interface{}, bool) {
	if s == nil {
		return nil, false
	}
	var cur interface{} = s.values
	for _, name := range strings.Split(path, ".") {
		values, ok := cur.(Values)
		if !ok {
			return nil, false
		}
		if cur, ok = values[name]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// Has reports whether a value exists at path
func (s *Scope) Has(path string) bool {
	_, ok := s.Get(path)
	return ok
}

// Inherited looks path up in the enclosing scopes, nearest first
func (s *Scope) Inherited(path string) (interface{}, bool) {
	for p := s.Parent(); p != nil; p = p.parent {
		if v, ok := p.Get(path); ok {
			return v, true
		}
	}
	return nil, false
}

// Always requires the field
func Always(*Scope) bool { return true }

// Never makes the field optional
func Never(*Scope) bool { return false }

// UnlessAny requires the field unless one of the sibling paths is present
func UnlessAny(paths ...string) Requirement {
	return func(s *Scope) bool {
		for _, p := range paths {
			if s.Has(p) {
				return false
			}
		}
		return true
	}
}

// WhenIn requires the field when the sibling at path holds one of values
func WhenIn(path string, values ...string) Requirement {
	return func(s *Scope) bool {
		v, ok := s.Get(path)
		if !ok {
			return false
		}
		text := fmt.Sprint(v)
		for _, want := range values {
			if text == want {
				return true
			}
		}
		return false
	}
}

// NotIn requires the field unless the sibling at path holds one of values.
// An absent sibling requires the field.
func NotIn(path string, values ...string) Requirement {
	in := WhenIn(path, values...)
	return func(s *Scope) bool {
		return !in(s)
	}
}

// AllOf requires the field when every requirement holds
func AllOf(reqs ...Requirement) Requirement {
	return func(s *Scope) bool {
		for _, r := range reqs {
			if !r(s) {
				return false
			}
		}
		return true
	}
}

// Static always produces v
func Static(v interface{}) Producer {
	return func(*Scope) interface{} {
		return v
	}
}

// Inherit produces the value found at path in the nearest enclosing scope
func Inherit(path string) Producer {
	return func(s *Scope) interface{} {
		v, _ := s.Inherited(path)
		return v
	}
}
