package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roeezolantz/errdex/internal/errordb"
	"github.com/roeezolantz/errdex/pkg/client"
)

func createSourcesCmd() *cobra.Command {
	var dbFile string
	var remote string

	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Summarize a database by source file",
		Long: `Show how many errors each Solidity source contributes to a database.

EXAMPLES:
  # Summarize the local errors.json
  errdex sources

  # Summarize a published database
  errdex sources --database protocol-errors@latest
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var summary []errordb.SourceCount

			if remote != "" {
				name, version := splitNameVersion(remote)
				c := client.New(getServer(), getAPIKey())
				counts, err := c.Sources(cmd.Context(), name, version)
				if err != nil {
					return err
				}
				for _, sc := range counts {
					summary = append(summary, errordb.SourceCount{Source: sc.Source, Count: sc.Count})
				}
			} else {
				records, err := errordb.Load(dbFile)
				if err != nil {
					return err
				}
				summary = errordb.SummarizeBySource(records)
			}

			if len(summary) == 0 {
				fmt.Println("No errors in database")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "  SOURCE\tERRORS\n")
			total := 0
			for _, sc := range summary {
				fmt.Fprintf(w, "  %s\t%d\n", sc.Source, sc.Count)
				total += sc.Count
			}
			w.Flush()
			fmt.Printf("\n%d error(s) across %d source(s)\n", total, len(summary))

			return nil
		},
	}

	cmd.Flags().StringVar(&dbFile, "db", "errors.json", "local database file")
	cmd.Flags().StringVar(&remote, "database", "", "published database as name or name@version")

	return cmd
}
