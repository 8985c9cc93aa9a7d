// Package xmlnode is the plain tree representation shared by the projector,
// the envelope and the XML codec.
//
// A Node is an ordered mapping from keys to values. A value is one of:
//
//	string          element text
//	*Node           nested element
//	[]interface{}   repeated element, items are string or *Node
//
// Keys starting with AttrPrefix are attributes, the TextKey holds text
// content of an element that also has attributes or children.
package xmlnode

import (
	"fmt"
	"sort"
	"strings"
)

const (
	// AttrPrefix marks attribute keys
	AttrPrefix = "@"
	// TextKey holds element text content
	TextKey = "#"
)

type entry struct {
	key   string
	value interface{}
}

// Node is an ordered key/value tree mirroring XML structure
type Node struct {
	entries []entry
}

// New creates an empty node
func New() *Node {
	return &Node{}
}

// IsAttr reports whether key names an attribute
func IsAttr(key string) bool {
	return strings.HasPrefix(key, AttrPrefix)
}

// Len returns the number of keys
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	return len(n.entries)
}

// IsEmpty returns true when the node has no attributes, children or text
func (n *Node) IsEmpty() bool {
	return n.Len() == 0
}

// Keys returns keys in insertion order
func (n *Node) Keys() []string {
	if n == nil {
		return nil
	}
	keys := make([]string, 0, len(n.entries))
	for _, e := range n.entries {
		keys = append(keys, e.key)
	}
	return keys
}

// Get returns the value stored under key
func (n *Node) Get(key string) (interface{}, bool) {
	if i := n.index(key); i >= 0 {
		return n.entries[i].value, true
	}
	return nil, false
}

// Set stores value under key, replacing any previous value in place
func (n *Node) Set(key string, value interface{}) *Node {
	if i := n.index(key); i >= 0 {
		n.entries[i].value = value
		return n
	}
	n.entries = append(n.entries, entry{key: key, value: value})
	return n
}

// Add appends value under key. A key that is already present turns into a
// sequence so repeated elements keep their order.
func (n *Node) Add(key string, value interface{}) *Node {
	i := n.index(key)
	if i < 0 {
		n.entries = append(n.entries, entry{key: key, value: value})
		return n
	}
	switch existing := n.entries[i].value.(type) {
	case []interface{}:
		n.entries[i].value = append(existing, value)
	default:
		n.entries[i].value = []interface{}{existing, value}
	}
	return n
}

// Delete removes key
func (n *Node) Delete(key string) {
	if i := n.index(key); i >= 0 {
		n.entries = append(n.entries[:i], n.entries[i+1:]...)
	}
}

// Each calls fn for every key in order
func (n *Node) Each(fn func(key string, value interface{})) {
	if n == nil {
		return
	}
	for _, e := range n.entries {
		fn(e.key, e.value)
	}
}

// Child returns the element stored under key. For a sequence the last
// element is returned.
func (n *Node) Child(key string) *Node {
	v, ok := n.Get(key)
	if !ok {
		return nil
	}
	switch c := v.(type) {
	case *Node:
		return c
	case []interface{}:
		if len(c) == 0 {
			return nil
		}
		if last, ok := c[len(c)-1].(*Node); ok {
			return last
		}
	}
	return nil
}

// Text returns the text content of the node
func (n *Node) Text() (string, bool) {
	v, ok := n.Get(TextKey)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Find walks a "/" separated path and returns the value found there.
// Sequences are resolved to their first item.
func (n *Node) Find(path string) (interface{}, bool) {
	var cur interface{} = n
	for _, seg := range strings.Split(path, "/") {
		node, ok := first(cur).(*Node)
		if !ok {
			return nil, false
		}
		if cur, ok = node.Get(seg); !ok {
			return nil, false
		}
	}
	return first(cur), true
}

// FindText is Find for leaves, elements carrying attributes resolve to their text
func (n *Node) FindText(path string) (string, bool) {
	v, ok := n.Find(path)
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case *Node:
		return t.Text()
	}
	return "", false
}

// FindAll walks a "/" separated path expanding sequences at every step and
// returns the text of each leaf reached, in document order
func (n *Node) FindAll(path string) []string {
	cur := []interface{}{n}
	for _, seg := range strings.Split(path, "/") {
		var next []interface{}
		for _, v := range cur {
			node, ok := v.(*Node)
			if !ok {
				continue
			}
			child, ok := node.Get(seg)
			if !ok {
				continue
			}
			if seq, ok := child.([]interface{}); ok {
				next = append(next, seq...)
			} else {
				next = append(next, child)
			}
		}
		cur = next
	}

	out := make([]string, 0, len(cur))
	for _, v := range cur {
		switch t := v.(type) {
		case string:
			out = append(out, t)
		case *Node:
			if s, ok := t.Text(); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

func (n *Node) index(key string) int {
	if n == nil {
		return -1
	}
	for i, e := range n.entries {
		if e.key == key {
			return i
		}
	}
	return -1
}

func first(v interface{}) interface{} {
	if seq, ok := v.([]interface{}); ok {
		if len(seq) == 0 {
			return nil
		}
		return seq[0]
	}
	return v
}

// Equal compares two trees structurally. Element order is significant,
// attribute order is not.
func Equal(a, b interface{}) bool {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case *Node:
		bv, ok := b.(*Node)
		return ok && nodesEqual(av, bv)
	case []interface{}:
		bv, ok := b.([]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	}
	return a == nil && b == nil
}

func nodesEqual(a, b *Node) bool {
	if a.Len() != b.Len() {
		return false
	}
	aAttrs, aRest := a.split()
	bAttrs, bRest := b.split()
	if len(aAttrs) != len(bAttrs) || len(aRest) != len(bRest) {
		return false
	}
	for i := range aAttrs {
		if aAttrs[i].key != bAttrs[i].key || !Equal(aAttrs[i].value, bAttrs[i].value) {
			return false
		}
	}
	for i := range aRest {
		if aRest[i].key != bRest[i].key || !Equal(aRest[i].value, bRest[i].value) {
			return false
		}
	}
	return true
}

// split separates attributes (sorted by key) from elements and text
func (n *Node) split() (attrs, rest []entry) {
	for _, e := range n.entries {
		if IsAttr(e.key) {
			attrs = append(attrs, e)
		} else {
			rest = append(rest, e)
		}
	}
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].key < attrs[j].key })
	return attrs, rest
}

// String renders the tree in a compact debug form
func (n *Node) String() string {
	var b strings.Builder
	writeDebug(&b, n)
	return b.String()
}

func writeDebug(b *strings.Builder, v interface{}) {
	switch t := v.(type) {
	case *Node:
		b.WriteString("{")
		for i, e := range t.entries {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(b, "%q: ", e.key)
			writeDebug(b, e.value)
		}
		b.WriteString("}")
	case []interface{}:
		b.WriteString("[")
		for i, item := range t {
			if i > 0 {
				b.WriteString(", ")
			}
			writeDebug(b, item)
		}
		b.WriteString("]")
	default:
		fmt.Fprintf(b, "%q", t)
	}
}
