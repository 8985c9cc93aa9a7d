package hooks_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rezonia/zugferd/internal/hooks"
	"github.com/rezonia/zugferd/internal/model"
)

type plugin struct {
	id    string
	hooks map[hooks.Stage]hooks.Handler
}

func (p plugin) ID() string                           { return p.id }
func (p plugin) Hooks() map[hooks.Stage]hooks.Handler { return p.hooks }

type runner struct {
	id     string
	result *hooks.Result
	err    error
}

func (r runner) ID() string { return r.id }
func (r runner) Run(context.Context, []byte, *hooks.Context) (*hooks.Result, error) {
	return r.result, r.err
}

func TestRegistry_RunsInRegistrationOrder(t *testing.T) {
	var calls []string
	record := func(name string) hooks.Handler {
		return func(_ context.Context, payload []byte, hc *hooks.Context) error {
			calls = append(calls, name+":"+string(payload)+":"+hc.Profile)
			return nil
		}
	}

	r := hooks.NewRegistry()
	r.On(hooks.XMLBuildAfter, "a", record("a"))
	r.Use(plugin{id: "b", hooks: map[hooks.Stage]hooks.Handler{
		hooks.XMLBuildAfter: record("b"),
		hooks.PDFBuildAfter: record("b-pdf"),
	}})
	r.On(hooks.XMLBuildAfter, "c", record("c"))
	r.On(hooks.XMLBuildAfter, "nil", nil)

	err := r.Run(context.Background(), hooks.XMLBuildAfter, []byte("<x/>"), &hooks.Context{Profile: "en16931"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a:<x/>:en16931", "b:<x/>:en16931", "c:<x/>:en16931"}, calls)
	assert.Equal(t, []string{"a", "b", "c"}, r.Plugins())
	assert.Equal(t, 3, r.Len(hooks.XMLBuildAfter))
	assert.Equal(t, 1, r.Len(hooks.PDFBuildAfter))
	assert.Equal(t, 0, r.Len(hooks.PDFBuildBefore))
}

func TestRegistry_FailureAbortsStage(t *testing.T) {
	ran := false
	r := hooks.NewRegistry()
	r.On(hooks.XMLBuildAfter, "xsd", func(context.Context, []byte, *hooks.Context) error {
		return errors.New("element not expected")
	})
	r.On(hooks.XMLBuildAfter, "later", func(context.Context, []byte, *hooks.Context) error {
		ran = true
		return nil
	})

	err := r.Run(context.Background(), hooks.XMLBuildAfter, nil, &hooks.Context{Profile: "basic"})
	require.Error(t, err)
	assert.False(t, ran)

	var zve *model.ZugferdValidationError
	require.True(t, errors.As(err, &zve))
	assert.Equal(t, "xsd", zve.Validator)
	assert.Equal(t, "basic", zve.Profile)
	assert.Equal(t, "element not expected", zve.Message)
}

func TestRegistry_PassesTypedErrorsThrough(t *testing.T) {
	detail := map[string]string{"line": "12"}
	typed := model.NewZugferdValidationError("kosit", "xrechnung", "rejected", detail, nil)
	cfg := model.NewConfigError("xsd", "schema missing", nil)

	for _, want := range []error{typed, cfg, context.Canceled} {
		r := hooks.NewRegistry()
		r.On(hooks.XMLBuildAfter, "p", func(context.Context, []byte, *hooks.Context) error { return want })
		err := r.Run(context.Background(), hooks.XMLBuildAfter, nil, nil)
		assert.Same(t, want, err)
	}
}

func TestRegistry_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := hooks.NewRegistry()
	r.On(hooks.XMLBuildAfter, "p", func(context.Context, []byte, *hooks.Context) error {
		t.Fatal("handler must not run")
		return nil
	})
	assert.ErrorIs(t, r.Run(ctx, hooks.XMLBuildAfter, nil, nil), context.Canceled)
}

func TestRegistry_NilIsEmpty(t *testing.T) {
	var r *hooks.Registry
	assert.NoError(t, r.Run(context.Background(), hooks.XMLBuildAfter, nil, nil))
}

func TestContext(t *testing.T) {
	var nilCtx *hooks.Context
	assert.NotNil(t, nilCtx.Log())
	_, ok := nilCtx.Option("x")
	assert.False(t, ok)

	core, logs := observer.New(zap.WarnLevel)
	hc := &hooks.Context{Logger: zap.New(core), Options: map[string]interface{}{"strict": true}}
	hc.Log().Warn("skipped")
	assert.Equal(t, 1, logs.Len())

	v, ok := hc.Option("strict")
	require.True(t, ok)
	assert.Equal(t, true, v)
}

func TestAggregate(t *testing.T) {
	failing := hooks.NewResult("xsd")
	failing.AddError("cvc-complex-type.2.4.a")

	runners := []hooks.Runner{
		runner{id: "ok", result: hooks.NewResult("ok")},
		runner{id: "xsd", result: failing},
		runner{id: "kosit", err: errors.New("java not found")},
		runner{id: "silent"},
	}

	results, err := hooks.Aggregate(context.Background(), runners, []byte("<x/>"), nil)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.True(t, results[0].Valid)
	assert.False(t, results[1].Valid)
	assert.Equal(t, hooks.CodeInvalid, results[1].Code)
	assert.False(t, results[2].Valid)
	assert.Equal(t, hooks.CodeError, results[2].Code)
	assert.Equal(t, []string{"java not found"}, results[2].Messages)
	assert.True(t, results[3].Valid)
	assert.Equal(t, "silent", results[3].Validator)
	assert.False(t, hooks.AllValid(results))
	assert.True(t, hooks.AllValid(results[:1]))
}

func TestAggregate_ConfigErrorAborts(t *testing.T) {
	runners := []hooks.Runner{
		runner{id: "ok", result: hooks.NewResult("ok")},
		runner{id: "xsd", err: model.NewConfigError("xsd", "asset missing", nil)},
		runner{id: "never", result: hooks.NewResult("never")},
	}

	results, err := hooks.Aggregate(context.Background(), runners, nil, nil)
	require.Error(t, err)
	assert.Len(t, results, 1)
}

func TestResult_Skip(t *testing.T) {
	r := hooks.NewResult("xsd").Skip("profile not supported")
	assert.True(t, r.Valid)
	assert.True(t, r.Skipped)
	assert.Equal(t, hooks.CodeSkipped, r.Code)
}

func TestAsPlugin(t *testing.T) {
	failing := hooks.NewResult("xsd")
	failing.AddError("bad")
	failing.Detail = []string{"line 3"}

	tests := []struct {
		name    string
		runner  runner
		wantErr bool
	}{
		{"valid", runner{id: "xsd", result: hooks.NewResult("xsd")}, false},
		{"skipped", runner{id: "xsd", result: hooks.NewResult("xsd").Skip("unsupported")}, false},
		{"nil result", runner{id: "xsd"}, false},
		{"invalid", runner{id: "xsd", result: failing}, true},
		{"error", runner{id: "xsd", err: errors.New("boom")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := hooks.NewRegistry(hooks.AsPlugin(tt.runner))
			assert.Equal(t, []string{"xsd"}, r.Plugins())

			err := r.Run(context.Background(), hooks.XMLBuildAfter, []byte("<x/>"), &hooks.Context{Profile: "en16931"})
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var zve *model.ZugferdValidationError
			require.True(t, errors.As(err, &zve))
			assert.Equal(t, "xsd", zve.Validator)
			assert.Equal(t, "en16931", zve.Profile)
		})
	}

	r := hooks.NewRegistry(hooks.AsPlugin(runner{id: "xsd", result: failing}))
	err := r.Run(context.Background(), hooks.XMLBuildAfter, nil, &hooks.Context{Profile: "basic"})
	var zve *model.ZugferdValidationError
	require.True(t, errors.As(err, &zve))
	assert.Equal(t, []string{"line 3"}, zve.Detail)
	assert.Equal(t, "bad", zve.Message)
}
