package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rezonia/zugferd/internal/profile"
	"github.com/rezonia/zugferd/internal/sample"
)

var exampleYAML bool

var exampleCmd = &cobra.Command{
	Use:   "example [profile]",
	Short: "Print example invoice data for a profile",
	Long: `Print invoice data that is valid for the given profile. The output is a
starting point for the build and embed commands.

Examples:
  zugferd example minimum
  zugferd example xrechnung --yaml > invoice.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExample,
}

func init() {
	rootCmd.AddCommand(exampleCmd)

	exampleCmd.Flags().BoolVar(&exampleYAML, "yaml", false, "Print YAML instead of JSON")
}

func runExample(cmd *cobra.Command, args []string) error {
	id := cfg.Profile
	if len(args) == 1 {
		id = args[0]
	}
	p, err := profile.Lookup(id)
	if err != nil {
		return err
	}

	doc, ok := sample.For(p.ID)
	if !ok {
		return fmt.Errorf("no example for profile %s", p.ID)
	}

	if exampleYAML {
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(doc)
	}
	return encodeJSON(doc)
}
