package coerce

import (
	"strings"

	"github.com/rezonia/zugferd/internal/codelist"
	"github.com/rezonia/zugferd/internal/model"
	"github.com/rezonia/zugferd/internal/xmlnode"
)

// Text accepts any non-blank string
var Text Coercer = textCoercer{}

type textCoercer struct{}

func (textCoercer) Name() string { return "text" }

func (c textCoercer) Parse(raw interface{}) (interface{}, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, invalid(c, model.CodeInvalidType, raw, "expected string, got %T", raw)
	}
	if strings.TrimSpace(s) == "" {
		return nil, invalid(c, model.CodeEmptyValue, nil, "value is empty")
	}
	return s, nil
}

func (textCoercer) Serialize(v interface{}) string {
	s, _ := v.(string)
	return s
}

// ID is a canonical identifier with an optional scheme qualifier
type ID struct {
	Value  string `json:"value"`
	Scheme string `json:"scheme,omitempty"`
}

func (id ID) String() string {
	if id.Scheme == "" {
		return id.Value
	}
	return id.Scheme + ":" + id.Value
}

// Identifier accepts a string or an object {value, scheme}
var Identifier Coercer = identifierCoercer{}

// SchemedIdentifier is Identifier with a fixed scheme. Input carrying a
// different scheme is rejected.
func SchemedIdentifier(scheme string) Coercer {
	return identifierCoercer{scheme: scheme}
}

// IdentifierIn is Identifier whose optional scheme is checked against the
// embedded list with the given id when that list is closed. It panics when
// the list cannot be loaded.
func IdentifierIn(listID string) Coercer {
	return identifierCoercer{schemes: codelist.MustLoad(listID)}
}

type identifierCoercer struct {
	scheme  string
	schemes *codelist.List
}

func (c identifierCoercer) Name() string {
	switch {
	case c.scheme != "":
		return "identifier:" + c.scheme
	case c.schemes != nil:
		return "identifier:" + c.schemes.ID
	}
	return "identifier"
}

func (c identifierCoercer) Parse(raw interface{}) (interface{}, error) {
	var id ID
	switch v := raw.(type) {
	case ID:
		id = v
	case *ID:
		if v == nil {
			return nil, invalid(c, model.CodeInvalidType, nil, "nil identifier")
		}
		id = *v
	case string:
		id = ID{Value: v}
	case map[string]interface{}:
		value, ok := v["value"].(string)
		if !ok {
			return nil, invalid(c, model.CodeInvalidType, raw, "identifier object needs a string value")
		}
		id.Value = value
		for _, key := range []string{"scheme", "schemeId", "schemeID"} {
			if s, ok := v[key].(string); ok {
				id.Scheme = s
				break
			}
		}
	default:
		return nil, invalid(c, model.CodeInvalidType, raw, "expected string or identifier object, got %T", raw)
	}

	if strings.TrimSpace(id.Value) == "" {
		return nil, invalid(c, model.CodeEmptyValue, nil, "identifier is empty")
	}
	if c.scheme != "" {
		if id.Scheme != "" && id.Scheme != c.scheme {
			return nil, invalid(c, model.CodeInvalidType, raw, "scheme %q does not match %q", id.Scheme, c.scheme)
		}
		id.Scheme = c.scheme
	}
	if c.schemes != nil && id.Scheme != "" && !c.schemes.Accepts(id.Scheme) {
		return nil, invalid(c, model.CodeInvalidCode, id.Scheme, "scheme %q is not part of %s", id.Scheme, c.schemes.ID)
	}
	return id, nil
}

func (identifierCoercer) Serialize(v interface{}) string {
	id, _ := v.(ID)
	return id.Value
}

func (c identifierCoercer) Node(v interface{}) interface{} {
	id, _ := v.(ID)
	if id.Scheme == "" {
		return id.Value
	}
	return xmlnode.New().Set("@schemeID", id.Scheme).Set(xmlnode.TextKey, id.Value)
}

// AnyCode accepts any non-blank code without a vocabulary check
var AnyCode Coercer = codeCoercer{}

// Code accepts codes of the embedded code list with the given id. Codes
// outside an open list are accepted as is. It panics when the list cannot
// be loaded.
func Code(listID string) Coercer {
	return codeCoercer{list: codelist.MustLoad(listID)}
}

type codeCoercer struct {
	list *codelist.List
}

func (c codeCoercer) Name() string {
	if c.list != nil {
		return "code:" + c.list.ID
	}
	return "code"
}

func (c codeCoercer) Parse(raw interface{}) (interface{}, error) {
	var code string
	switch v := raw.(type) {
	case string:
		code = strings.TrimSpace(v)
	default:
		s, ok := integerString(raw)
		if !ok {
			return nil, invalid(c, model.CodeInvalidType, raw, "expected code string, got %T", raw)
		}
		code = s
	}
	if code == "" {
		return nil, invalid(c, model.CodeEmptyValue, nil, "code is empty")
	}
	if c.list != nil && !c.list.Accepts(code) {
		return nil, invalid(c, model.CodeInvalidCode, code, "code %q is not part of %s", code, c.list.ID)
	}
	return code, nil
}

func (codeCoercer) Serialize(v interface{}) string {
	s, _ := v.(string)
	return s
}
