// Package zugferd builds ZUGFeRD / Factur-X invoices.
//
// A Builder validates application data against a profile, renders the
// Cross Industry Invoice XML, runs the configured validators and can
// attach the XML to a PDF.
package zugferd

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/rezonia/zugferd/internal/hooks"
	"github.com/rezonia/zugferd/internal/model"
	"github.com/rezonia/zugferd/internal/pdfa"
	"github.com/rezonia/zugferd/internal/processor"
	"github.com/rezonia/zugferd/internal/profile"
)

// Profile identifiers
const (
	ProfileMinimum   = profile.Minimum
	ProfileBasicWL   = profile.BasicWL
	ProfileBasic     = profile.Basic
	ProfileEN16931   = profile.EN16931
	ProfileExtended  = profile.Extended
	ProfileXRechnung = profile.XRechnung
)

// Re-exported types
type (
	Document               = processor.Document
	Result                 = hooks.Result
	Plugin                 = hooks.Plugin
	Runner                 = hooks.Runner
	PDFOptions             = pdfa.Options
	ValidationFailure      = model.ValidationFailure
	SchemaValidationError  = model.SchemaValidationError
	ZugferdValidationError = model.ZugferdValidationError
	ConfigError            = model.ConfigError
)

// Builder creates invoices for one profile
type Builder struct {
	pipeline *processor.Pipeline
	runners  []hooks.Runner
	logger   *zap.Logger
}

// New creates a builder for profileID. Validators configured through the
// options run after every XML build and are available to Validate.
func New(profileID string, opts ...Option) (*Builder, error) {
	s := defaultSettings()
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	runners, err := s.validators()
	if err != nil {
		return nil, err
	}

	pipelineOpts := []processor.Option{
		processor.WithLogger(s.logger),
		processor.WithPlugins(s.plugins...),
		processor.WithHookOptions(s.hookOptions),
	}
	if s.indent != nil {
		pipelineOpts = append(pipelineOpts, processor.WithIndent(*s.indent))
	}
	if s.validateOnBuild {
		for _, r := range runners {
			pipelineOpts = append(pipelineOpts, processor.WithPlugins(hooks.AsPlugin(r)))
		}
	}

	p, err := processor.NewPipeline(profileID, pipelineOpts...)
	if err != nil {
		return nil, err
	}

	return &Builder{
		pipeline: p,
		runners:  runners,
		logger:   s.logger,
	}, nil
}

// Profile returns the id of the builder's profile
func (b *Builder) Profile() string {
	return b.pipeline.Profile().ID
}

// Validators returns the ids of the configured validators in run order
func (b *Builder) Validators() []string {
	ids := make([]string, 0, len(b.runners))
	for _, r := range b.runners {
		ids = append(ids, r.ID())
	}
	return ids
}

// Create validates raw and returns the normalized document
func (b *Builder) Create(raw interface{}) (*Document, error) {
	return b.pipeline.Create(raw)
}

// BuildXML validates raw and renders the invoice XML
func (b *Builder) BuildXML(ctx context.Context, raw interface{}) ([]byte, error) {
	doc, err := b.pipeline.Create(raw)
	if err != nil {
		return nil, err
	}
	return doc.ToXML(ctx)
}

// BuildPDFA validates raw, renders the XML and attaches it to pdf. The
// attachment alone does not make the output a conformant Factur-X or
// PDF/A-3 file: no AFRelationship entry and no XMP metadata are written.
func (b *Builder) BuildPDFA(ctx context.Context, raw interface{}, pdf io.ReadSeeker, w io.Writer, opts PDFOptions) error {
	doc, err := b.pipeline.Create(raw)
	if err != nil {
		return err
	}
	return doc.ToPDFA(ctx, pdf, w, opts)
}

// Validate runs every configured validator against xml and collects the
// results without failing on the first rejection
func (b *Builder) Validate(ctx context.Context, xml []byte) ([]*Result, error) {
	if len(xml) == 0 {
		return nil, fmt.Errorf("validate: empty xml")
	}
	return hooks.Aggregate(ctx, b.runners, xml, b.pipeline.HookContext())
}

// AllValid reports whether no result failed
func AllValid(results []*Result) bool {
	return hooks.AllValid(results)
}

// Profiles returns the ids of every supported profile
func Profiles() []string {
	return profile.IDs()
}
