package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/rezonia/zugferd/internal/hooks"
	"github.com/rezonia/zugferd/internal/processor"
	"github.com/rezonia/zugferd/pkg/zugferd"
)

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate invoice XML or ZUGFeRD PDF files",
	Long: `Run every configured validator against existing invoices and report all
results. PDF files are searched for a factur-x.xml or xrechnung.xml
attachment.

The profile is read from the guideline identifier of each document unless
--profile is given.

Validators:
  - xsd:   Factur-X schemas below --xsd-dir
  - kosit: KoSIT validator, --kosit-jar and --kosit-scenarios, needs java

Examples:
  zugferd validate invoice.xml --xsd-dir ./schemas
  zugferd validate invoices/ -f json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Validation timeout per file")
}

// ValidationResult holds the result of validating a single file
type ValidationResult struct {
	File     string          `json:"file"`
	Profile  string          `json:"profile,omitempty"`
	Valid    bool            `json:"valid"`
	Results  []*hooks.Result `json:"results,omitempty"`
	Errors   []string        `json:"errors,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args, invoiceExtensions)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found to validate")
	}

	builders := map[string]*zugferd.Builder{}
	results := make([]*ValidationResult, 0, len(files))
	allValid := true

	for _, file := range files {
		result := validateFile(cmd.Context(), builders, file)
		results = append(results, result)
		if !result.Valid {
			allValid = false
		}
	}

	if outputFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(results); err != nil {
			return err
		}
	} else {
		printValidation(results)
	}

	if !allValid {
		return fmt.Errorf("validation failed for some files")
	}
	return nil
}

func validateFile(ctx context.Context, builders map[string]*zugferd.Builder, path string) *ValidationResult {
	result := &ValidationResult{File: path, Valid: true}
	fail := func(format string, args ...interface{}) *ValidationResult {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf(format, args...))
		return result
	}

	data, err := readInput(path)
	if err != nil {
		return fail("failed to read file: %v", err)
	}

	switch processor.DetectFormat(data) {
	case processor.FormatPDF:
		xml, name, err := processor.ExtractInvoice(data)
		if err != nil {
			return fail("%v", err)
		}
		printVerbose("%s: using attachment %s\n", path, name)
		data = xml
	case processor.FormatXML:
	default:
		return fail("not an XML or PDF file")
	}

	id := profileID
	if id == "" {
		p, err := processor.DetectProfile(data)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%v, assuming %s", err, cfg.Profile))
			id = cfg.Profile
		} else {
			id = p.ID
		}
	}

	b, ok := builders[id]
	if !ok {
		b, err = newBuilder(id)
		if err != nil {
			return fail("%v", err)
		}
		builders[id] = b
	}
	result.Profile = b.Profile()

	if len(b.Validators()) == 0 {
		result.Warnings = append(result.Warnings, "no validators configured, only well-formedness was checked")
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := b.Validate(ctx, data)
	if err != nil {
		return fail("%v", err)
	}
	result.Results = res
	result.Valid = zugferd.AllValid(res)
	return result
}

func printValidation(results []*ValidationResult) {
	for _, r := range results {
		if r.Valid {
			fmt.Printf("✓ %s: VALID (%s)\n", r.File, r.Profile)
		} else {
			fmt.Printf("✗ %s: INVALID\n", r.File)
		}
		for _, e := range r.Errors {
			fmt.Printf("  - %s\n", e)
		}
		for _, res := range r.Results {
			switch {
			case res.Skipped:
				fmt.Printf("  ~ %s: skipped\n", res.Validator)
			case !res.Valid:
				for _, m := range res.Messages {
					fmt.Printf("  - %s: %s\n", res.Validator, m)
				}
			}
		}
		for _, w := range r.Warnings {
			fmt.Printf("  ⚠ %s\n", w)
		}
	}
}
