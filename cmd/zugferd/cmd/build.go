package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/zugferd/internal/model"
	"github.com/rezonia/zugferd/internal/processor"
	"github.com/rezonia/zugferd/pkg/zugferd"
)

var (
	outputPath string
	timeout    time.Duration
	indent     int
	noValidate bool
	workers    int
)

var buildCmd = &cobra.Command{
	Use:   "build [files...]",
	Short: "Build invoice XML from JSON or YAML data",
	Long: `Validate invoice data against a profile and render the Cross Industry
Invoice XML. Configured validators run after every build unless
--no-validate is given.

With a single input the XML is written to --output or stdout ("-" reads
stdin). With several inputs --output names a directory and every input
produces <name>.xml in it. Inputs sharing a base name are rejected.

Examples:
  zugferd build invoice.json -p en16931
  zugferd build invoice.yaml -p xrechnung -o invoice.xml
  zugferd build invoices/*.json -p basic -o out/`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file or directory (default: stdout)")
	buildCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Build timeout")
	buildCmd.Flags().IntVar(&indent, "indent", 2, "Indentation of the XML, negative for compact output")
	buildCmd.Flags().BoolVar(&noValidate, "no-validate", false, "Skip the configured validators")
	buildCmd.Flags().IntVar(&workers, "workers", 0, "Concurrent builds for several inputs (default: GOMAXPROCS)")
}

func runBuild(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args, dataExtensions)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no input files found")
	}

	b, err := newBuilder(profileID,
		zugferd.WithIndent(indent),
		zugferd.WithBuildValidation(!noValidate),
	)
	if err != nil {
		return err
	}
	printVerbose("Building %d invoice(s) with profile %s\n", len(files), b.Profile())

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	inputs := make([]interface{}, 0, len(files))
	for _, file := range files {
		raw, err := decodeFile(file)
		if err != nil {
			return err
		}
		inputs = append(inputs, raw)
	}

	if len(inputs) == 1 {
		xml, err := b.BuildXML(ctx, inputs[0])
		if err != nil {
			return explain(files[0], err)
		}
		return writeOutput(outputPath, xml)
	}

	if outputPath == "" {
		return fmt.Errorf("--output must name a directory when building several files")
	}
	names, err := outputNames(files)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outputPath, 0o755); err != nil {
		return err
	}

	results, err := b.BuildBatch(ctx, inputs, workers)
	if err != nil {
		return err
	}
	for i, xml := range results {
		if err := os.WriteFile(filepath.Join(outputPath, names[i]), xml, 0o644); err != nil {
			return err
		}
		printVerbose("✓ %s -> %s\n", files[i], names[i])
	}
	return nil
}

func decodeFile(path string) (interface{}, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	raw, err := processor.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return raw, nil
}

func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// explain lists every schema failure of err on stderr
func explain(file string, err error) error {
	var sve *model.SchemaValidationError
	if errors.As(err, &sve) {
		fmt.Fprintf(os.Stderr, "✗ %s: %d problem(s) for profile %s\n", file, len(sve.Failures), sve.Profile)
		for _, f := range sve.Failures {
			fmt.Fprintf(os.Stderr, "  - %s: %s\n", f.PathString(), f.Message)
		}
		return fmt.Errorf("invoice data is not valid for profile %s", sve.Profile)
	}
	return fmt.Errorf("%s: %w", file, err)
}
