package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rezonia/zugferd/internal/profile"
	"github.com/rezonia/zugferd/internal/schema"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields [profile]",
	Short: "List the input fields of a profile",
	Long: `List every input field of a profile with the XML path it is written to.
Repeating groups are marked with [].

Examples:
  zugferd fields minimum
  zugferd fields xrechnung -f json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFields,
}

func init() {
	rootCmd.AddCommand(fieldsCmd)
}

// FieldInfo describes one input field of a profile
type FieldInfo struct {
	Path        string `json:"path"`
	XPath       string `json:"xpath"`
	Repeated    bool   `json:"repeated,omitempty"`
	Description string `json:"description,omitempty"`
}

func runFields(cmd *cobra.Command, args []string) error {
	id := cfg.Profile
	if len(args) == 1 {
		id = args[0]
	}
	p, err := profile.Lookup(id)
	if err != nil {
		return err
	}

	var fields []FieldInfo
	err = schema.Walk(p.Schema, func(path []string, f *schema.Field) error {
		if len(path) == 0 {
			return nil
		}
		fields = append(fields, FieldInfo{
			Path:        strings.Join(path, "."),
			XPath:       f.XPath,
			Repeated:    f.Multiple,
			Description: f.Description,
		})
		return nil
	})
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		return encodeJSON(fields)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tXPATH\tDESCRIPTION")
	for _, f := range fields {
		name := f.Path
		if f.Repeated {
			name += "[]"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, f.XPath, f.Description)
	}
	return tw.Flush()
}
