// Package processor orchestrates invoice builds: raw input is validated
// against a profile, projected onto the Cross Industry Invoice tree,
// serialized and handed to the registered hooks.
package processor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/rezonia/zugferd/internal/hooks"
	"github.com/rezonia/zugferd/internal/interpolate"
	"github.com/rezonia/zugferd/internal/logging"
	"github.com/rezonia/zugferd/internal/model"
	"github.com/rezonia/zugferd/internal/pdfa"
	"github.com/rezonia/zugferd/internal/profile"
	"github.com/rezonia/zugferd/internal/schema"
	"github.com/rezonia/zugferd/internal/xmlnode"
)

// Pipeline builds documents for one profile
type Pipeline struct {
	profile  *profile.Profile
	registry *hooks.Registry
	logger   *zap.Logger
	options  map[string]interface{}
	format   []xmlnode.FormatOption
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLogger sets the logger handed to every stage
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logging.OrNop(l)
	}
}

// WithPlugins registers plugins on the pipeline's registry
func WithPlugins(plugins ...hooks.Plugin) Option {
	return func(p *Pipeline) {
		for _, pl := range plugins {
			p.registry.Use(pl)
		}
	}
}

// WithRegistry replaces the hook registry
func WithRegistry(r *hooks.Registry) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.registry = r
		}
	}
}

// WithHookOptions sets the options map every hook context carries
func WithHookOptions(opts map[string]interface{}) Option {
	return func(p *Pipeline) {
		p.options = opts
	}
}

// WithIndent pretty-prints the generated XML
func WithIndent(spaces int) Option {
	return func(p *Pipeline) {
		p.format = append(p.format, xmlnode.WithIndent(spaces))
	}
}

// NewPipeline creates a pipeline for the profile named profileID
func NewPipeline(profileID string, opts ...Option) (*Pipeline, error) {
	prof, err := profile.Lookup(profileID)
	if err != nil {
		return nil, model.NewConfigError("processor", "cannot create pipeline", err)
	}

	p := &Pipeline{
		profile:  prof,
		registry: hooks.NewRegistry(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Profile returns the profile documents are validated against
func (p *Pipeline) Profile() *profile.Profile {
	return p.profile
}

// Registry returns the hook registry
func (p *Pipeline) Registry() *hooks.Registry {
	return p.registry
}

// HookContext returns the context handed to hooks of this pipeline
func (p *Pipeline) HookContext() *hooks.Context {
	return &hooks.Context{
		Profile: p.profile.ID,
		Logger:  p.logger,
		Options: p.options,
	}
}

// Create validates raw and returns a document ready for serialization.
// raw may be a decoded JSON object, a map or any value that marshals to a
// JSON object. Invalid input yields a *model.SchemaValidationError listing
// every failure.
func (p *Pipeline) Create(raw interface{}) (*Document, error) {
	start := time.Now()

	input, err := Normalize(raw)
	if err != nil {
		return nil, err
	}

	values, failures := schema.Validate(p.profile.Schema, input)
	if len(failures) > 0 {
		p.logger.Debug("validate",
			zap.String("profile", p.profile.ID),
			zap.Int("failures", len(failures)),
			zap.Duration("elapsed", time.Since(start)),
		)
		return nil, model.NewSchemaValidationError(p.profile.ID, failures)
	}

	p.logger.Debug("validate",
		zap.String("profile", p.profile.ID),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &Document{pipeline: p, values: values}, nil
}

// CreateJSON decodes a JSON object and calls Create
func (p *Pipeline) CreateJSON(data []byte) (*Document, error) {
	raw, err := DecodeJSON(data)
	if err != nil {
		return nil, err
	}
	return p.Create(raw)
}

// CreateYAML decodes a YAML mapping and calls Create
func (p *Pipeline) CreateYAML(data []byte) (*Document, error) {
	raw, err := DecodeYAML(data)
	if err != nil {
		return nil, err
	}
	return p.Create(raw)
}

// Validate runs only the schema validation and returns the failures
func (p *Pipeline) Validate(raw interface{}) ([]model.ValidationFailure, error) {
	input, err := Normalize(raw)
	if err != nil {
		return nil, err
	}
	_, failures := schema.Validate(p.profile.Schema, input)
	return failures, nil
}

// Document is a validated invoice bound to the pipeline that created it
type Document struct {
	pipeline *Pipeline
	values   schema.Values
}

// Profile returns the id of the profile the document was validated for
func (d *Document) Profile() string {
	return d.pipeline.profile.ID
}

// Values returns the normalized value tree. It must not be modified.
func (d *Document) Values() schema.Values {
	return d.values
}

// Tree projects the document onto the enveloped XML tree
func (d *Document) Tree() (*xmlnode.Node, error) {
	return interpolate.Tree(d.pipeline.profile.Schema, d.values)
}

// ToXML serializes the document and runs the xml.build.after hooks.
// No XML is returned when a hook fails.
func (d *Document) ToXML(ctx context.Context) ([]byte, error) {
	p := d.pipeline
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	tree, err := d.Tree()
	if err != nil {
		return nil, fmt.Errorf("project %s document: %w", p.profile.ID, err)
	}
	p.logger.Debug("project", zap.String("profile", p.profile.ID), zap.Duration("elapsed", time.Since(start)))

	start = time.Now()
	xml, err := xmlnode.Format(tree, p.format...)
	if err != nil {
		return nil, fmt.Errorf("serialize %s document: %w", p.profile.ID, err)
	}
	p.logger.Debug("serialize",
		zap.String("profile", p.profile.ID),
		zap.Int("bytes", len(xml)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if err := p.runStage(ctx, hooks.XMLBuildAfter, xml); err != nil {
		return nil, err
	}
	return xml, nil
}

// ToPDFA builds the XML, attaches it to the PDF read from pdf and writes
// the result to w. Nothing is written when a hook or the embedding fails.
// See pdfa.Embed for what the output does not contain.
func (d *Document) ToPDFA(ctx context.Context, pdf io.ReadSeeker, w io.Writer, opts pdfa.Options) error {
	p := d.pipeline

	xml, err := d.ToXML(ctx)
	if err != nil {
		return err
	}

	if err := p.runStage(ctx, hooks.PDFBuildBefore, xml); err != nil {
		return err
	}

	if opts.AttachmentName == "" {
		opts.AttachmentName = pdfa.AttachmentName(p.profile.ID)
	}

	start := time.Now()
	var out bytes.Buffer
	if err := pdfa.Embed(ctx, pdf, &out, xml, opts); err != nil {
		return err
	}
	p.logger.Debug("embed",
		zap.String("profile", p.profile.ID),
		zap.String("attachment", opts.AttachmentName),
		zap.Int("bytes", out.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)

	if err := p.runStage(ctx, hooks.PDFBuildAfter, out.Bytes()); err != nil {
		return err
	}

	_, err = w.Write(out.Bytes())
	return err
}

func (p *Pipeline) runStage(ctx context.Context, stage hooks.Stage, payload []byte) error {
	if p.registry.Len(stage) == 0 {
		return nil
	}
	start := time.Now()
	err := p.registry.Run(ctx, stage, payload, p.HookContext())
	p.logger.Debug(string(stage),
		zap.String("profile", p.profile.ID),
		zap.Int("handlers", p.registry.Len(stage)),
		zap.Bool("ok", err == nil),
		zap.Duration("elapsed", time.Since(start)),
	)
	return err
}
