package interpolate

import (
	"fmt"

	"github.com/rezonia/zugferd/internal/schema"
	"github.com/rezonia/zugferd/internal/xmlnode"
)

// RootElement is the document element of every invoice
const RootElement = "rsm:CrossIndustryInvoice"

// Top-level blocks, in the order the envelope writes them
const (
	BlockContext     = "rsm:ExchangedDocumentContext"
	BlockDocument    = "rsm:ExchangedDocument"
	BlockTransaction = "rsm:SupplyChainTradeTransaction"
)

var blocks = []string{BlockContext, BlockDocument, BlockTransaction}

// Namespace is a prefix declared on the root element
type Namespace struct {
	Prefix string
	URI    string
}

// Namespaces lists the declarations carried by RootElement
var Namespaces = []Namespace{
	{"rsm", "urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100"},
	{"qdt", "urn:un:unece:uncefact:data:standard:QualifiedDataType:100"},
	{"ram", "urn:un:unece:uncefact:data:standard:ReusableAggregateBusinessInformationEntity:100"},
	{"xs", "http://www.w3.org/2001/XMLSchema"},
	{"udt", "urn:un:unece:uncefact:data:standard:UnqualifiedDataType:100"},
}

// Envelope wraps a projected tree into the root element. The tree must hold
// exactly the three top-level blocks, each once.
func Envelope(projected *xmlnode.Node) (*xmlnode.Node, error) {
	if projected == nil {
		return nil, fmt.Errorf("envelope: nothing to wrap")
	}

	known := make(map[string]bool, len(blocks))
	for _, b := range blocks {
		known[b] = true
	}
	var err error
	projected.Each(func(key string, _ interface{}) {
		if err == nil && !known[key] {
			err = fmt.Errorf("envelope: unexpected top-level element %s", key)
		}
	})
	if err != nil {
		return nil, err
	}

	root := xmlnode.New()
	for _, ns := range Namespaces {
		root.Set(xmlnode.AttrPrefix+"xmlns:"+ns.Prefix, ns.URI)
	}
	for _, b := range blocks {
		v, ok := projected.Get(b)
		if !ok {
			return nil, fmt.Errorf("envelope: missing %s", b)
		}
		if _, ok := v.(*xmlnode.Node); !ok {
			return nil, fmt.Errorf("envelope: %s must occur once", b)
		}
		root.Set(b, v)
	}

	return xmlnode.New().Set(RootElement, root), nil
}

// Interpolate projects values, wraps them in the envelope and formats the
// result as UTF-8 XML text.
func Interpolate(root *schema.Field, values schema.Values, opts ...xmlnode.FormatOption) ([]byte, error) {
	tree, err := Tree(root, values)
	if err != nil {
		return nil, err
	}
	return xmlnode.Format(tree, opts...)
}

// Tree is Interpolate without the final formatting step
func Tree(root *schema.Field, values schema.Values) (*xmlnode.Node, error) {
	projected, err := Project(root, values)
	if err != nil {
		return nil, err
	}
	return Envelope(projected)
}
