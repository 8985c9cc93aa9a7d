package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rezonia/zugferd/internal/config"
	"github.com/rezonia/zugferd/internal/logging"
	"github.com/rezonia/zugferd/pkg/zugferd"
)

var (
	version = "1.0.0"

	// Global flags
	cfgFile        string
	verbose        bool
	outputFormat   string
	profileID      string
	logLevel       string
	xsdDir         string
	kositJar       string
	kositScenarios string
	checkTotals    bool

	cfg     *config.Config
	logger  = zap.NewNop()
	initErr error
)

var rootCmd = &cobra.Command{
	Use:   "zugferd",
	Short: "Build and validate ZUGFeRD / Factur-X invoices",
	Long: `zugferd builds Cross Industry Invoice XML from JSON or YAML invoice data,
embeds it into PDF documents and validates existing invoices.

Supported profiles: minimum, basic-wl, basic, en16931, extended, xrechnung

Examples:
  # Print an example invoice for a profile
  zugferd example en16931 > invoice.json

  # Build the XML
  zugferd build invoice.json -p en16931 -o invoice.xml

  # Attach it to a PDF
  zugferd embed invoice.json invoice.pdf -o invoice-facturx.pdf

  # Validate with the official schemas
  zugferd validate invoice.xml --xsd-dir ./schemas`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return initErr },
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default: zugferd.yaml if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "table", "Output format (json, table)")
	rootCmd.PersistentFlags().StringVarP(&profileID, "profile", "p", "", "Invoice profile (env: ZUGFERD_PROFILE)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (env: ZUGFERD_LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&xsdDir, "xsd-dir", "", "Directory holding the Factur-X schemas (env: ZUGFERD_XSD_DIR)")
	rootCmd.PersistentFlags().StringVar(&kositJar, "kosit-jar", "", "KoSIT validator jar (env: ZUGFERD_KOSIT_JAR)")
	rootCmd.PersistentFlags().StringVar(&kositScenarios, "kosit-scenarios", "", "KoSIT scenario configuration (env: ZUGFERD_KOSIT_SCENARIOS)")
	rootCmd.PersistentFlags().BoolVar(&checkTotals, "check-totals", false, "Recompute the document totals (env: ZUGFERD_CHECK_TOTALS)")

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	path := cfgFile
	if path == "" {
		path = "zugferd.yaml"
	}

	loaded, err := config.Load(path)
	if err != nil {
		initErr = err
		return
	}

	// Flags override file and environment
	if profileID != "" {
		loaded.Profile = profileID
	}
	if logLevel != "" {
		loaded.LogLevel = logLevel
	}
	if verbose {
		loaded.LogLevel = logging.Debug
	}
	if xsdDir != "" {
		loaded.XSD.Dir = xsdDir
	}
	if kositJar != "" {
		loaded.Kosit.Jar = kositJar
	}
	if kositScenarios != "" {
		loaded.Kosit.Scenarios = kositScenarios
	}
	if checkTotals {
		loaded.Totals = true
	}
	if err := loaded.Validate(); err != nil {
		initErr = err
		return
	}
	cfg = loaded

	l, err := logging.New(cfg.LogLevel)
	if err != nil {
		initErr = fmt.Errorf("create logger: %w", err)
		return
	}
	logger = l
}

// newBuilder creates a builder for id, falling back to the configured profile
func newBuilder(id string, opts ...zugferd.Option) (*zugferd.Builder, error) {
	if id == "" {
		id = cfg.Profile
	}
	all := append([]zugferd.Option{
		zugferd.WithConfig(cfg),
		zugferd.WithLogger(logger),
	}, opts...)
	return zugferd.New(id, all...)
}

// readInput reads a file, "-" reads standard input
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
