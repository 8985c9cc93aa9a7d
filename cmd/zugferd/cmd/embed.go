package cmd

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/zugferd/internal/pdfa"
	"github.com/rezonia/zugferd/pkg/zugferd"
)

var (
	attachmentName string
	properties     map[string]string
)

var embedCmd = &cobra.Command{
	Use:   "embed <invoice-data> <input.pdf>",
	Short: "Attach invoice XML to a PDF",
	Long: `Build the invoice XML from JSON or YAML data and attach it to an existing
PDF. The attachment is named factur-x.xml, or xrechnung.xml for the
xrechnung profile. The PDF is expected to be PDF/A-3 already; conversion
is left to the producing application. No AFRelationship entry or Factur-X
XMP metadata is written, add them separately for a conformant file.

Examples:
  zugferd embed invoice.json invoice.pdf -o invoice-facturx.pdf
  zugferd embed invoice.yaml invoice.pdf -p xrechnung --property Title=RE-4711`,
	Args: cobra.ExactArgs(2),
	RunE: runEmbed,
}

func init() {
	rootCmd.AddCommand(embedCmd)

	embedCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output PDF (default: stdout)")
	embedCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Build timeout")
	embedCmd.Flags().StringVar(&attachmentName, "attachment", "", "Attachment name (default: derived from the profile)")
	embedCmd.Flags().StringToStringVar(&properties, "property", nil, "Document property key=value, repeatable")
	embedCmd.Flags().BoolVar(&noValidate, "no-validate", false, "Skip the configured validators")
}

func runEmbed(cmd *cobra.Command, args []string) error {
	raw, err := decodeFile(args[0])
	if err != nil {
		return err
	}

	pdf, err := readInput(args[1])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[1], err)
	}
	if !pdfa.IsPDF(pdf) {
		return fmt.Errorf("%s is not a PDF", args[1])
	}

	b, err := newBuilder(profileID, zugferd.WithBuildValidation(!noValidate))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	var out bytes.Buffer
	opts := zugferd.PDFOptions{AttachmentName: attachmentName, Properties: properties}
	if err := b.BuildPDFA(ctx, raw, bytes.NewReader(pdf), &out, opts); err != nil {
		return explain(args[0], err)
	}

	printVerbose("Embedded %s invoice into %s (%d bytes)\n", b.Profile(), args[1], out.Len())
	return writeOutput(outputPath, out.Bytes())
}
