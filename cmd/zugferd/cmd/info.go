package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/rezonia/zugferd/internal/codelist"
	"github.com/rezonia/zugferd/internal/profile"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the supported invoice profiles",
	Args:  cobra.NoArgs,
	RunE:  runProfiles,
}

var codelistsCmd = &cobra.Command{
	Use:   "codelists [list]",
	Short: "List the embedded code lists or the codes of one list",
	Long: `Without arguments every embedded code list is listed. With a list id the
codes of that list are printed.

Examples:
  zugferd codelists
  zugferd codelists untdid-5305`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCodelists,
}

func init() {
	rootCmd.AddCommand(profilesCmd)
	rootCmd.AddCommand(codelistsCmd)
}

func runProfiles(cmd *cobra.Command, args []string) error {
	all := profile.All()

	if outputFormat == "json" {
		type entry struct {
			ID        string `json:"id"`
			Name      string `json:"name"`
			Guideline string `json:"guideline"`
		}
		out := make([]entry, 0, len(all))
		for _, p := range all {
			out = append(out, entry{p.ID, p.Name, p.Guideline})
		}
		return encodeJSON(out)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tGUIDELINE")
	for _, p := range all {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Name, p.Guideline)
	}
	return tw.Flush()
}

func runCodelists(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return listCodelists()
	}

	list, err := codelist.Load(args[0])
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		return encodeJSON(list.Entries)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tNAME")
	for _, e := range list.Entries {
		fmt.Fprintf(tw, "%s\t%s\n", e.Code, truncate(e.Name, 80))
	}
	return tw.Flush()
}

func listCodelists() error {
	ids := codelist.IDs()
	sort.Strings(ids)

	lists := make([]*codelist.List, 0, len(ids))
	for _, id := range ids {
		l, err := codelist.Load(id)
		if err != nil {
			return err
		}
		lists = append(lists, l)
	}

	if outputFormat == "json" {
		type entry struct {
			ID      string `json:"id"`
			Title   string `json:"title"`
			Version string `json:"version"`
			Codes   int    `json:"codes"`
		}
		out := make([]entry, 0, len(lists))
		for _, l := range lists {
			out = append(out, entry{l.ID, l.Title, l.Version, l.Len()})
		}
		return encodeJSON(out)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tVERSION\tCODES")
	for _, l := range lists {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", l.ID, l.Title, l.Version, l.Len())
	}
	return tw.Flush()
}

func encodeJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
