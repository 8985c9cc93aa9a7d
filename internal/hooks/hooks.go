// Package hooks runs plugins at named points of the build lifecycle.
//
// Handlers are registered per stage and run sequentially in registration
// order. The first failing handler aborts the stage.
package hooks

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/rezonia/zugferd/internal/logging"
	"github.com/rezonia/zugferd/internal/model"
)

// Stage names a lifecycle point
type Stage string

// Lifecycle stages
const (
	XMLBuildAfter  Stage = "xml.build.after"
	PDFBuildBefore Stage = "pdf.build.before"
	PDFBuildAfter  Stage = "pdf.build.after"
)

// Context is handed to every handler
type Context struct {
	Profile string
	Logger  *zap.Logger
	Options map[string]interface{}
}

// Log returns the context logger, never nil
func (c *Context) Log() *zap.Logger {
	if c == nil {
		return zap.NewNop()
	}
	return logging.OrNop(c.Logger)
}

// Option returns the option stored under key
func (c *Context) Option(key string) (interface{}, bool) {
	if c == nil || c.Options == nil {
		return nil, false
	}
	v, ok := c.Options[key]
	return v, ok
}

// Handler receives the stage payload, the built XML or PDF bytes
type Handler func(ctx context.Context, payload []byte, hc *Context) error

// Plugin contributes handlers for one or more stages
type Plugin interface {
	ID() string
	Hooks() map[Stage]Handler
}

type registration struct {
	plugin  string
	handler Handler
}

// Registry holds handlers per stage
type Registry struct {
	mu      sync.RWMutex
	stages  map[Stage][]registration
	plugins []string
}

// NewRegistry creates an empty registry
func NewRegistry(plugins ...Plugin) *Registry {
	r := &Registry{
		stages: make(map[Stage][]registration),
	}
	for _, p := range plugins {
		r.Use(p)
	}
	return r
}

// On registers h for stage under the given plugin id
func (r *Registry) On(stage Stage, plugin string, h Handler) {
	if h == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages[stage] = append(r.stages[stage], registration{plugin: plugin, handler: h})
	r.remember(plugin)
}

// Use registers every handler of p
func (r *Registry) Use(p Plugin) {
	if p == nil {
		return
	}
	hooks := p.Hooks()
	stages := make([]string, 0, len(hooks))
	for s := range hooks {
		stages = append(stages, string(s))
	}
	sort.Strings(stages)
	for _, s := range stages {
		r.On(Stage(s), p.ID(), hooks[Stage(s)])
	}
}

func (r *Registry) remember(plugin string) {
	for _, id := range r.plugins {
		if id == plugin {
			return
		}
	}
	r.plugins = append(r.plugins, plugin)
}

// Plugins returns registered plugin ids in registration order
func (r *Registry) Plugins() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.plugins...)
}

// Len returns the number of handlers registered for stage
func (r *Registry) Len(stage Stage) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.stages[stage])
}

// Run invokes the handlers of stage in order. A failing handler stops the
// stage; its error is returned as a ZugferdValidationError unless it already
// is one or is a configuration error.
func (r *Registry) Run(ctx context.Context, stage Stage, payload []byte, hc *Context) error {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	regs := append([]registration(nil), r.stages[stage]...)
	r.mu.RUnlock()

	log := hc.Log()
	for _, reg := range regs {
		if err := ctx.Err(); err != nil {
			return err
		}
		log.Debug("running hook",
			zap.String("stage", string(stage)),
			zap.String("plugin", reg.plugin),
		)
		if err := reg.handler(ctx, payload, hc); err != nil {
			return wrap(reg.plugin, hc, err)
		}
	}
	return nil
}

func wrap(plugin string, hc *Context, err error) error {
	var zve *model.ZugferdValidationError
	if errors.As(err, &zve) {
		return err
	}
	var ce *model.ConfigError
	if errors.As(err, &ce) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	profile := ""
	if hc != nil {
		profile = hc.Profile
	}
	return model.NewZugferdValidationError(plugin, profile, err.Error(), nil, err)
}
