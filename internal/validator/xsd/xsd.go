// Package xsd validates built invoices against the Factur-X XML schemas
package xsd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jacoelho/xsd"
	"go.uber.org/zap"

	"github.com/rezonia/zugferd/internal/hooks"
	"github.com/rezonia/zugferd/internal/model"
	"github.com/rezonia/zugferd/internal/profile"
)

// ID identifies the validator in results and errors
const ID = "xsd"

// DefaultCacheSize bounds the number of compiled schemas kept in memory
const DefaultCacheSize = 8

// DefaultFiles maps profile ids to their entry schema below the asset root
var DefaultFiles = map[string]string{
	profile.Minimum:   "MINIMUM/Factur-X_1.07.2_MINIMUM.xsd",
	profile.BasicWL:   "BASIC-WL/Factur-X_1.07.2_BASICWL.xsd",
	profile.Basic:     "BASIC/Factur-X_1.07.2_BASIC.xsd",
	profile.EN16931:   "EN16931/Factur-X_1.07.2_EN16931.xsd",
	profile.Extended:  "EXTENDED/Factur-X_1.07.2_EXTENDED.xsd",
	profile.XRechnung: "EN16931/Factur-X_1.07.2_EN16931.xsd",
}

// Validator checks XML against the schema selected by the profile id
type Validator struct {
	fsys      fs.FS
	files     map[string]string
	cacheSize int
	cache     *lru.Cache[string, *xsd.Engine]
	mu        sync.Mutex
}

// Option configures a Validator
type Option func(*Validator)

// WithFiles replaces the profile to schema mapping
func WithFiles(files map[string]string) Option {
	return func(v *Validator) {
		v.files = files
	}
}

// WithCacheSize sets how many compiled schemas are retained
func WithCacheSize(n int) Option {
	return func(v *Validator) {
		v.cacheSize = n
	}
}

// New creates a validator reading schemas from fsys
func New(fsys fs.FS, opts ...Option) (*Validator, error) {
	v := &Validator{
		fsys:      fsys,
		files:     DefaultFiles,
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(v)
	}

	if fsys == nil {
		return nil, model.NewConfigError(ID, "no schema filesystem configured", nil)
	}
	cache, err := lru.New[string, *xsd.Engine](v.cacheSize)
	if err != nil {
		return nil, model.NewConfigError(ID, fmt.Sprintf("invalid cache size %d", v.cacheSize), err)
	}
	v.cache = cache
	return v, nil
}

// NewDir creates a validator reading schemas from a directory
func NewDir(dir string, opts ...Option) (*Validator, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, model.NewConfigError(ID, "schema directory not accessible", err)
	}
	if !info.IsDir() {
		return nil, model.NewConfigError(ID, dir+" is not a directory", nil)
	}
	return New(os.DirFS(dir), opts...)
}

// ID returns the validator id
func (v *Validator) ID() string {
	return ID
}

// Supports reports whether a schema is mapped for profileID
func (v *Validator) Supports(profileID string) bool {
	_, ok := v.files[profileID]
	return ok
}

// Hooks attaches the validator to xml.build.after
func (v *Validator) Hooks() map[hooks.Stage]hooks.Handler {
	return hooks.AsPlugin(v).Hooks()
}

// Run validates xml. Profiles without a schema are skipped with a warning.
func (v *Validator) Run(ctx context.Context, xml []byte, hc *hooks.Context) (*hooks.Result, error) {
	profileID := ""
	if hc != nil {
		profileID = hc.Profile
	}
	result := hooks.NewResult(ID)

	file, ok := v.files[profileID]
	if !ok {
		hc.Log().Warn("profile not supported by validator",
			zap.String("validator", ID),
			zap.String("profile", profileID),
		)
		return result.Skip("profile " + profileID + " is not supported"), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	schema, err := v.schema(file)
	if err != nil {
		return nil, err
	}

	err = schema.Validate(bytes.NewReader(xml))
	if err == nil {
		return result, nil
	}

	violations := violationsOf(err)
	if len(violations) == 0 {
		return nil, fmt.Errorf("xsd validate: %w", err)
	}
	for _, violation := range violations {
		result.AddError(violation.Error())
	}
	result.Detail = violations
	hc.Log().Debug("schema validation failed",
		zap.String("profile", profileID),
		zap.Int("violations", len(violations)),
	)
	return result, nil
}

func (v *Validator) schema(file string) (*xsd.Engine, error) {
	if s, ok := v.cache.Get(file); ok {
		return s, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if s, ok := v.cache.Get(file); ok {
		return s, nil
	}

	src, err := v.source(file)
	if err != nil {
		return nil, model.NewConfigError(ID, "cannot read schema "+file, err)
	}
	s, err := xsd.Compile(src)
	if err != nil {
		return nil, model.NewConfigError(ID, "cannot load schema "+file, err)
	}
	v.cache.Add(file, s)
	return s, nil
}

// source opens name below the asset root. Includes and imports resolve
// relative to the including schema.
func (v *Validator) source(name string) (xsd.SchemaSource, error) {
	data, err := fs.ReadFile(v.fsys, name)
	if err != nil {
		return xsd.SchemaSource{}, err
	}
	src := xsd.Reader(name, bytes.NewReader(data))
	return src.WithResolver(xsd.ResolverFunc(func(base, location string) (xsd.SchemaSource, error) {
		ref := path.Join(path.Dir(base), location)
		s, err := v.source(ref)
		if errors.Is(err, fs.ErrNotExist) {
			return xsd.SchemaSource{}, xsd.ErrSchemaNotFound
		}
		return s, err
	})), nil
}

// violationsOf flattens the validation errors reported for one document
func violationsOf(err error) []*xsd.Error {
	var list xsd.Errors
	if errors.As(err, &list) {
		out := make([]*xsd.Error, 0, len(list))
		for _, e := range list {
			var xe *xsd.Error
			if errors.As(e, &xe) && xe.Category == xsd.ValidationErrorCategory {
				out = append(out, xe)
			}
		}
		return out
	}
	var xe *xsd.Error
	if errors.As(err, &xe) && xe.Category == xsd.ValidationErrorCategory {
		return []*xsd.Error{xe}
	}
	return nil
}
