// Package coerce holds the primitive converters bound to schema leaves.
//
// A coercer parses raw input into a canonical Go value and serializes that
// value back into the text (or small element tree) written into the XML.
// Parse is idempotent: passing a canonical value back into Parse returns it
// unchanged, which lets callers re-discover the accepting coercer of a union.
package coerce

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	"github.com/rezonia/zugferd/internal/model"
)

// Coercer converts raw input into a canonical value and back to XML text
type Coercer interface {
	// Name identifies the coercer in failure messages
	Name() string
	// Parse validates and normalizes raw input
	Parse(raw interface{}) (interface{}, error)
	// Serialize renders a canonical value as XML text
	Serialize(v interface{}) string
}

// NodeSerializer is implemented by coercers whose XML form is more than text.
// Node returns either a string or an *xmlnode.Node.
type NodeSerializer interface {
	Node(v interface{}) interface{}
}

// Render returns the XML value of v: the structured node when the coercer
// provides one, else the serialized text.
func Render(c Coercer, v interface{}) interface{} {
	if ns, ok := c.(NodeSerializer); ok {
		return ns.Node(v)
	}
	return c.Serialize(v)
}

// Accepting returns the first coercer of cs that accepts v
func Accepting(cs []Coercer, v interface{}) (Coercer, bool) {
	for _, c := range cs {
		if _, err := c.Parse(v); err == nil {
			return c, true
		}
	}
	return nil, false
}

func invalid(c Coercer, code string, raw interface{}, format string, args ...interface{}) error {
	return model.NewCoercionError(c.Name(), code, raw, fmt.Sprintf(format, args...))
}

// integerString renders integer kinds and json.Number as text
func integerString(raw interface{}) (string, bool) {
	if n, ok := raw.(json.Number); ok {
		if _, err := n.Int64(); err != nil {
			return "", false
		}
		return n.String(), true
	}
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true
	}
	return "", false
}
