package schema

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/rezonia/zugferd/internal/model"
)

// Validate walks raw against the container root and returns the normalized
// tree. Every failure found is reported; a nil failure slice means success.
//
// Fields present in the input are normalized first, in declaration order.
// Absent fields are then resolved in declaration order, so requirements and
// defaults see every present sibling plus the defaults applied before them.
// Keys unknown to the schema are ignored.
func Validate(root *Field, raw interface{}) (Values, []model.ValidationFailure) {
	w := &walker{}

	if raw == nil {
		if root.IsRequired(nil) {
			w.fail(nil, model.CodeRequired, "document is required")
			return nil, w.failures
		}
		raw = map[string]interface{}{}
	}

	obj, ok := asObject(raw)
	if !ok {
		w.fail(nil, model.CodeExpectedObject, "expected an object")
		return nil, w.failures
	}

	values := w.object(root.Shape, obj, nil, nil)
	if len(w.failures) > 0 {
		return nil, w.failures
	}
	return values, nil
}

type walker struct {
	failures []model.ValidationFailure
}

func (w *walker) fail(path []string, code, message string) {
	w.failures = append(w.failures, model.ValidationFailure{
		Path:    append([]string(nil), path...),
		Message: message,
		Code:    code,
	})
}

func (w *walker) object(fields []*Field, raw map[string]interface{}, path []string, parent *Scope) Values {
	out := Values{}
	scope := NewScope(out, parent)

	var absent []*Field
	for _, f := range fields {
		v, ok := raw[f.Name]
		if !ok || v == nil {
			absent = append(absent, f)
			continue
		}
		if nv, ok := w.value(f, v, extend(path, f.Name), scope); ok {
			out[f.Name] = nv
		}
	}

	for _, f := range absent {
		w.missing(f, extend(path, f.Name), scope, out)
	}
	return out
}

func (w *walker) missing(f *Field, path []string, scope *Scope, out Values) {
	if f.IsRequired(scope) {
		w.fail(path, model.CodeRequired, "is required")
		return
	}

	if f.Default != nil {
		if d := f.Default(scope); d != nil {
			if v, ok := w.value(f, d, path, scope); ok {
				out[f.Name] = v
			}
			return
		}
	}

	// An optional container is kept only when its own defaults fill it
	// without failures.
	if f.IsContainer() && !f.Multiple {
		trial := &walker{}
		v := trial.object(f.Shape, map[string]interface{}{}, path, scope)
		if len(trial.failures) == 0 && len(v) > 0 {
			out[f.Name] = v
		}
	}
}

func (w *walker) value(f *Field, raw interface{}, path []string, scope *Scope) (interface{}, bool) {
	if f.Multiple {
		return w.sequence(f, raw, path, scope)
	}
	return w.single(f, raw, path, scope)
}

func (w *walker) sequence(f *Field, raw interface{}, path []string, scope *Scope) (interface{}, bool) {
	items, ok := asArray(raw)
	if !ok {
		w.fail(path, model.CodeExpectedArray, "expected an array")
		return nil, false
	}
	if len(items) < f.MinItems {
		w.fail(path, model.CodeTooFewItems, "expected at least "+strconv.Itoa(f.MinItems)+" items, got "+strconv.Itoa(len(items)))
	}

	out := make([]interface{}, 0, len(items))
	for i, item := range items {
		itemPath := extend(path, strconv.Itoa(i))
		if item == nil {
			w.fail(itemPath, model.CodeRequired, "item is null")
			continue
		}
		if v, ok := w.single(f, item, itemPath, scope); ok {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

func (w *walker) single(f *Field, raw interface{}, path []string, scope *Scope) (interface{}, bool) {
	if f.IsContainer() {
		obj, ok := asObject(raw)
		if !ok {
			w.fail(path, model.CodeExpectedObject, "expected an object")
			return nil, false
		}
		return w.object(f.Shape, obj, path, scope), true
	}
	return w.coerce(f, raw, path)
}

func (w *walker) coerce(f *Field, raw interface{}, path []string) (interface{}, bool) {
	errs := make([]error, 0, len(f.Types))
	for _, c := range f.Types {
		v, err := c.Parse(raw)
		if err == nil {
			return v, true
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		w.fail(path, model.CodeInvalidType, "field accepts no type")
		return nil, false
	}

	code, message := describe(errs[0])
	if len(errs) > 1 {
		parts := make([]string, 0, len(errs))
		for i, err := range errs {
			_, m := describe(err)
			parts = append(parts, f.Types[i].Name()+": "+m)
		}
		message = "no alternative accepted the value (" + strings.Join(parts, "; ") + ")"
	}
	w.fail(path, code, message)
	return nil, false
}

func describe(err error) (code, message string) {
	var ce *model.CoercionError
	if errors.As(err, &ce) {
		return ce.Code, ce.Message
	}
	return model.CodeInvalidType, err.Error()
}

func extend(path []string, seg string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, seg)
}

func asObject(raw interface{}) (map[string]interface{}, bool) {
	switch v := raw.(type) {
	case map[string]interface{}:
		return v, true
	case Values:
		return v, true
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]interface{}, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

func asArray(raw interface{}) ([]interface{}, bool) {
	if v, ok := raw.([]interface{}); ok {
		return v, true
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
