package schema

import (
	"fmt"
	"strings"

	"github.com/rezonia/zugferd/internal/model"
)

// Check verifies the structural invariants of a schema tree: the root is a
// container, every field is either a leaf or a container, sibling names are
// unique and repeating groups are bound to an element.
func Check(root *Field) error {
	if root == nil {
		return model.NewConfigError("schema", "root is nil", nil)
	}
	if !root.IsContainer() || root.IsLeaf() {
		return model.NewConfigError("schema", "root must be a container", nil)
	}
	return checkShape(root, nil)
}

func checkShape(f *Field, path []string) error {
	seen := make(map[string]bool, len(f.Shape))
	for _, c := range f.Shape {
		if c == nil {
			return invalidField(path, "nil child")
		}
		at := extend(path, c.Name)
		if c.Name == "" {
			return invalidField(at, "child without name")
		}
		if seen[c.Name] {
			return invalidField(at, "duplicate name")
		}
		seen[c.Name] = true

		switch {
		case c.IsLeaf() && c.IsContainer():
			return invalidField(at, "field is both leaf and container")
		case !c.IsLeaf() && !c.IsContainer():
			return invalidField(at, "field is neither leaf nor container")
		case c.IsLeaf() && c.Key == "":
			return invalidField(at, "leaf without key")
		case c.MinItems > 0 && !c.Multiple:
			return invalidField(at, "min items on a single field")
		case c.Multiple && c.Key == "":
			return invalidField(at, "repeating group without key")
		}

		if c.IsContainer() {
			if err := checkShape(c, at); err != nil {
				return err
			}
		}
	}
	return nil
}

func invalidField(path []string, msg string) error {
	return model.NewConfigError("schema", fmt.Sprintf("%s: %s", strings.Join(path, "."), msg), nil)
}
