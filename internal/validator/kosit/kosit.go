// Package kosit runs the KoSIT business rule validator as a Java subprocess
package kosit

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rezonia/zugferd/internal/hooks"
	"github.com/rezonia/zugferd/internal/model"
	"github.com/rezonia/zugferd/internal/profile"
)

// ID identifies the validator in results and errors
const ID = "kosit"

// DefaultTimeout bounds a single validator run
const DefaultTimeout = 2 * time.Minute

const (
	inputName  = "invoice.xml"
	reportName = "invoice-report.xml"
)

// DefaultProfiles are the profiles covered by the bundled scenarios
var DefaultProfiles = []string{profile.EN16931, profile.Extended, profile.XRechnung}

// Validator invokes the standalone validator jar per document
type Validator struct {
	java       string
	available  bool
	jar        string
	scenarios  string
	repository string
	timeout    time.Duration
	profiles   map[string]bool
}

// Option configures a Validator
type Option func(*Validator)

// WithJava sets the java executable, by default it is searched on PATH
func WithJava(path string) Option {
	return func(v *Validator) {
		v.java = path
	}
}

// WithRepository sets the directory the scenarios resolve their artifacts from
func WithRepository(dir string) Option {
	return func(v *Validator) {
		v.repository = dir
	}
}

// WithTimeout bounds each run, zero disables the limit
func WithTimeout(d time.Duration) Option {
	return func(v *Validator) {
		v.timeout = d
	}
}

// WithProfiles replaces the supported profiles
func WithProfiles(ids ...string) Option {
	return func(v *Validator) {
		v.profiles = toSet(ids)
	}
}

// New creates a validator for the given jar and scenario configuration
func New(jar, scenarios string, opts ...Option) (*Validator, error) {
	if jar == "" || scenarios == "" {
		return nil, model.NewConfigError(ID, "validator jar and scenarios are required", nil)
	}
	v := &Validator{
		jar:       jar,
		scenarios: scenarios,
		timeout:   DefaultTimeout,
		profiles:  toSet(DefaultProfiles),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.java, v.available = detectJava(v.java)
	return v, nil
}

// ID returns the validator id
func (v *Validator) ID() string {
	return ID
}

// Available reports whether a java executable was found
func (v *Validator) Available() bool {
	return v.available
}

// Supports reports whether profileID is covered by the scenarios
func (v *Validator) Supports(profileID string) bool {
	return v.profiles[profileID]
}

// Hooks attaches the validator to xml.build.after
func (v *Validator) Hooks() map[hooks.Stage]hooks.Handler {
	return hooks.AsPlugin(v).Hooks()
}

// Run validates xml in a scratch directory that is removed before returning
func (v *Validator) Run(ctx context.Context, xml []byte, hc *hooks.Context) (*hooks.Result, error) {
	profileID := ""
	if hc != nil {
		profileID = hc.Profile
	}
	result := hooks.NewResult(ID)

	if !v.Supports(profileID) {
		hc.Log().Warn("profile not supported by validator",
			zap.String("validator", ID),
			zap.String("profile", profileID),
		)
		return result.Skip("profile " + profileID + " is not supported"), nil
	}
	if !v.available {
		return nil, model.NewConfigError(ID, "java executable not available", nil)
	}

	dir, err := os.MkdirTemp("", "kosit-*")
	if err != nil {
		return nil, fmt.Errorf("kosit: create work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, inputName)
	if err := os.WriteFile(input, xml, 0o600); err != nil {
		return nil, fmt.Errorf("kosit: write input: %w", err)
	}
	out := filepath.Join(dir, "out")
	if err := os.Mkdir(out, 0o700); err != nil {
		return nil, fmt.Errorf("kosit: create output dir: %w", err)
	}

	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}

	args := []string{"-jar", v.jar, "-s", v.scenarios, "-o", out}
	if v.repository != "" {
		args = append(args, "-r", v.repository)
	}
	args = append(args, input)

	cmd := exec.CommandContext(ctx, v.java, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	started := time.Now()
	runErr := cmd.Run()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hc.Log().Debug("validator finished",
		zap.String("validator", ID),
		zap.Duration("elapsed", time.Since(started)),
		zap.Bool("exit_ok", runErr == nil),
	)

	// A rejected document exits non-zero but still writes its report
	data, err := os.ReadFile(filepath.Join(out, reportName))
	if err != nil {
		if runErr != nil {
			return nil, fmt.Errorf("kosit: %w: %s", runErr, strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("kosit: no report written: %w", err)
	}

	report, err := ParseReport(data)
	if err != nil {
		return nil, fmt.Errorf("kosit: %w", err)
	}
	result.Detail = report
	if report.Accepted {
		return result, nil
	}

	for _, m := range report.Errors() {
		result.AddError(m.String())
	}
	if result.Valid {
		result.AddError("document rejected")
	}
	return result, nil
}

// detectJava resolves the java executable, explicit paths take precedence
func detectJava(explicit string) (string, bool) {
	candidates := []string{}
	if explicit != "" {
		candidates = append(candidates, explicit)
	} else {
		if home := os.Getenv("JAVA_HOME"); home != "" {
			candidates = append(candidates, filepath.Join(home, "bin", "java"))
		}
		candidates = append(candidates, "java", "/usr/bin/java", "/opt/homebrew/opt/openjdk/bin/java")
	}

	for _, c := range candidates {
		if path, err := exec.LookPath(c); err == nil {
			return path, true
		}
	}
	return explicit, false
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
