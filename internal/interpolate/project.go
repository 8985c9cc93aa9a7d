// Package interpolate turns a normalized invoice tree into Cross Industry
// Invoice XML. Project maps values onto their path keys, Envelope adds the
// fixed outer structure and Interpolate chains both with the codec.
package interpolate

import (
	"fmt"
	"strings"

	"github.com/rezonia/zugferd/internal/coerce"
	"github.com/rezonia/zugferd/internal/schema"
	"github.com/rezonia/zugferd/internal/xmlnode"
)

// Project maps every value of a normalized tree to the XML path declared by
// its field key. Children follow schema declaration order, repeating groups
// keep their input order.
func Project(root *schema.Field, values schema.Values) (*xmlnode.Node, error) {
	if root == nil || !root.IsContainer() {
		return nil, fmt.Errorf("project: root must be a container")
	}
	out := xmlnode.New()
	if err := projectShape(out, root.Shape, values, nil); err != nil {
		return nil, err
	}
	return out, nil
}

func projectShape(n *xmlnode.Node, fields []*schema.Field, values map[string]interface{}, path []string) error {
	for _, f := range fields {
		v, ok := values[f.Name]
		if !ok {
			continue
		}
		fieldPath := append(path[:len(path):len(path)], f.Name)

		if !f.Multiple {
			if err := projectField(n, f, v, fieldPath, false); err != nil {
				return err
			}
			continue
		}

		items, ok := v.([]interface{})
		if !ok {
			return fmt.Errorf("project %s: expected a sequence, got %T", strings.Join(fieldPath, "."), v)
		}
		for i, item := range items {
			itemPath := append(fieldPath[:len(fieldPath):len(fieldPath)], fmt.Sprint(i))
			if err := projectField(n, f, item, itemPath, true); err != nil {
				return err
			}
		}
	}
	return nil
}

func projectField(n *xmlnode.Node, f *schema.Field, v interface{}, path []string, multiple bool) error {
	if f.IsContainer() {
		values, ok := asValues(v)
		if !ok {
			return fmt.Errorf("project %s: expected an object, got %T", strings.Join(path, "."), v)
		}
		if f.Key == "" {
			return projectShape(n, f.Shape, values, path)
		}
		child := xmlnode.New()
		if err := projectShape(child, f.Shape, values, path); err != nil {
			return err
		}
		insert(n, f.Key, child, multiple)
		return nil
	}

	c, ok := coerce.Accepting(f.Types, v)
	if !ok {
		return fmt.Errorf("project %s: no coercer accepts %T", strings.Join(path, "."), v)
	}
	insert(n, f.Key, coerce.Render(c, v), multiple)
	return nil
}

// insert places value under a "/" separated key. Intermediate elements are
// shared with earlier fields unless the final slot is already taken, in which
// case the deepest intermediate is opened again as a sibling.
func insert(n *xmlnode.Node, key string, value interface{}, multiple bool) {
	segs := strings.Split(key, "/")
	last := segs[len(segs)-1]

	parent := n
	for i, seg := range segs[:len(segs)-1] {
		child := parent.Child(seg)
		deepest := i == len(segs)-2
		if child == nil || (deepest && !multiple && occupied(child, last)) {
			child = xmlnode.New()
			parent.Add(seg, child)
		}
		parent = child
	}

	if xmlnode.IsAttr(last) || last == xmlnode.TextKey {
		parent.Set(last, value)
		return
	}
	parent.Add(last, value)
}

func occupied(n *xmlnode.Node, key string) bool {
	_, ok := n.Get(key)
	return ok
}

func asValues(v interface{}) (map[string]interface{}, bool) {
	switch t := v.(type) {
	case schema.Values:
		return t, true
	case map[string]interface{}:
		return t, true
	}
	return nil, false
}
