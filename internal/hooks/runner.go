package hooks

import (
	"context"
	"errors"
	"strings"

	"github.com/rezonia/zugferd/internal/model"
)

// Result is the outcome of an aggregating validator run
type Result struct {
	Validator string      `json:"validator"`
	Valid     bool        `json:"valid"`
	Skipped   bool        `json:"skipped,omitempty"`
	Code      string      `json:"code,omitempty"`
	Messages  []string    `json:"messages,omitempty"`
	Detail    interface{} `json:"-"`
}

// Result codes
const (
	CodeInvalid = "invalid"
	CodeError   = "error"
	CodeSkipped = "skipped"
)

// NewResult creates a passing result for validator
func NewResult(validator string) *Result {
	return &Result{Validator: validator, Valid: true}
}

// Skip marks the result as skipped, a skipped result stays valid
func (r *Result) Skip(reason string) *Result {
	r.Skipped = true
	r.Code = CodeSkipped
	r.Messages = append(r.Messages, reason)
	return r
}

// AddError records a message and invalidates the result
func (r *Result) AddError(msg string) {
	r.Messages = append(r.Messages, msg)
	r.Valid = false
	if r.Code == "" {
		r.Code = CodeInvalid
	}
}

// Runner validates XML and reports a result instead of failing
type Runner interface {
	ID() string
	Run(ctx context.Context, xml []byte, hc *Context) (*Result, error)
}

// Aggregate runs every runner and collects the results. Runner errors become
// failing results; configuration errors and cancellation abort the run.
func Aggregate(ctx context.Context, runners []Runner, xml []byte, hc *Context) ([]*Result, error) {
	results := make([]*Result, 0, len(runners))
	for _, r := range runners {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := r.Run(ctx, xml, hc)
		if err != nil {
			var ce *model.ConfigError
			if errors.As(err, &ce) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return results, err
			}
			res = NewResult(r.ID())
			res.Code = CodeError
			res.AddError(err.Error())
		}
		if res == nil {
			res = NewResult(r.ID())
		}
		results = append(results, res)
	}
	return results, nil
}

// AllValid reports whether every result passed
func AllValid(results []*Result) bool {
	for _, r := range results {
		if !r.Valid {
			return false
		}
	}
	return true
}

// AsPlugin attaches a runner to the xml.build.after stage. A failing result
// is raised as a ZugferdValidationError carrying the result.
func AsPlugin(r Runner) Plugin {
	return runnerPlugin{r}
}

type runnerPlugin struct {
	runner Runner
}

func (p runnerPlugin) ID() string {
	return p.runner.ID()
}

func (p runnerPlugin) Hooks() map[Stage]Handler {
	return map[Stage]Handler{
		XMLBuildAfter: func(ctx context.Context, xml []byte, hc *Context) error {
			res, err := p.runner.Run(ctx, xml, hc)
			if err != nil {
				return err
			}
			if res == nil || res.Valid {
				return nil
			}
			profile := ""
			if hc != nil {
				profile = hc.Profile
			}
			detail := res.Detail
			if detail == nil {
				detail = res
			}
			return model.NewZugferdValidationError(p.runner.ID(), profile, strings.Join(res.Messages, "; "), detail, nil)
		},
	}
}
