package zugferd

import (
	"io/fs"
	"time"

	"go.uber.org/zap"

	"github.com/rezonia/zugferd/internal/config"
	"github.com/rezonia/zugferd/internal/hooks"
	"github.com/rezonia/zugferd/internal/logging"
	"github.com/rezonia/zugferd/internal/validator/kosit"
	"github.com/rezonia/zugferd/internal/validator/totals"
	"github.com/rezonia/zugferd/internal/validator/xsd"
)

// Option configures a Builder
type Option func(*settings) error

type xsdSettings struct {
	dir       string
	fsys      fs.FS
	files     map[string]string
	cacheSize int
}

type kositSettings struct {
	jar        string
	scenarios  string
	java       string
	repository string
	timeout    time.Duration
}

type settings struct {
	logger          *zap.Logger
	plugins         []hooks.Plugin
	runners         []hooks.Runner
	hookOptions     map[string]interface{}
	indent          *int
	validateOnBuild bool
	xsd             *xsdSettings
	kosit           *kositSettings
	totals          bool
}

func defaultSettings() *settings {
	return &settings{
		logger:          zap.NewNop(),
		validateOnBuild: true,
	}
}

// WithLogger sets the logger used by the pipeline and every validator
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) error {
		s.logger = logging.OrNop(l)
		return nil
	}
}

// WithPlugins registers additional hook plugins
func WithPlugins(plugins ...Plugin) Option {
	return func(s *settings) error {
		s.plugins = append(s.plugins, plugins...)
		return nil
	}
}

// WithValidator adds a validator run after every build and by Validate
func WithValidator(r Runner) Option {
	return func(s *settings) error {
		s.runners = append(s.runners, r)
		return nil
	}
}

// WithHookOptions sets the options handed to every hook
func WithHookOptions(opts map[string]interface{}) Option {
	return func(s *settings) error {
		s.hookOptions = opts
		return nil
	}
}

// WithIndent sets the indentation of the generated XML, a negative
// value produces compact output
func WithIndent(spaces int) Option {
	return func(s *settings) error {
		s.indent = &spaces
		return nil
	}
}

// WithBuildValidation controls whether validators run on every build.
// Validate always runs them.
func WithBuildValidation(enabled bool) Option {
	return func(s *settings) error {
		s.validateOnBuild = enabled
		return nil
	}
}

// WithXSDDir validates against the Factur-X schemas below dir
func WithXSDDir(dir string) Option {
	return func(s *settings) error {
		s.xsd = &xsdSettings{dir: dir, cacheSize: xsd.DefaultCacheSize}
		return nil
	}
}

// WithXSDFS validates against schemas read from fsys. A nil files map
// uses the default Factur-X layout.
func WithXSDFS(fsys fs.FS, files map[string]string) Option {
	return func(s *settings) error {
		s.xsd = &xsdSettings{fsys: fsys, files: files, cacheSize: xsd.DefaultCacheSize}
		return nil
	}
}

// WithKoSIT runs the KoSIT validator jar with the given scenarios
func WithKoSIT(jar, scenarios string) Option {
	return func(s *settings) error {
		s.kosit = &kositSettings{jar: jar, scenarios: scenarios, timeout: kosit.DefaultTimeout}
		return nil
	}
}

// WithTotalsCheck recomputes the document totals from the lines and the
// other header amounts and fails on any mismatch
func WithTotalsCheck() Option {
	return func(s *settings) error {
		s.totals = true
		return nil
	}
}

// WithConfig applies the validator settings of cfg
func WithConfig(cfg *config.Config) Option {
	return func(s *settings) error {
		if cfg == nil {
			return nil
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if cfg.XSD.Enabled() {
			s.xsd = &xsdSettings{dir: cfg.XSD.Dir, cacheSize: cfg.XSD.CacheSize}
		}
		if cfg.Kosit.Enabled() {
			s.kosit = &kositSettings{
				jar:        cfg.Kosit.Jar,
				scenarios:  cfg.Kosit.Scenarios,
				java:       cfg.Kosit.Java,
				repository: cfg.Kosit.Repository,
				timeout:    cfg.Kosit.Timeout,
			}
		}
		if cfg.Totals {
			s.totals = true
		}
		return nil
	}
}

// validators builds the configured validators, schema checks first and
// custom runners last
func (s *settings) validators() ([]hooks.Runner, error) {
	var runners []hooks.Runner

	if x := s.xsd; x != nil {
		opts := []xsd.Option{xsd.WithCacheSize(x.cacheSize)}
		if x.files != nil {
			opts = append(opts, xsd.WithFiles(x.files))
		}

		var (
			v   *xsd.Validator
			err error
		)
		if x.fsys != nil {
			v, err = xsd.New(x.fsys, opts...)
		} else {
			v, err = xsd.NewDir(x.dir, opts...)
		}
		if err != nil {
			return nil, err
		}
		runners = append(runners, v)
	}

	if k := s.kosit; k != nil {
		opts := []kosit.Option{kosit.WithTimeout(k.timeout)}
		if k.java != "" {
			opts = append(opts, kosit.WithJava(k.java))
		}
		if k.repository != "" {
			opts = append(opts, kosit.WithRepository(k.repository))
		}
		v, err := kosit.New(k.jar, k.scenarios, opts...)
		if err != nil {
			return nil, err
		}
		runners = append(runners, v)
	}

	if s.totals {
		runners = append(runners, totals.New())
	}

	return append(runners, s.runners...), nil
}
