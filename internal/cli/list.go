package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roeezolantz/errdex/pkg/client"
)

func createListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [name]",
		Short: "List databases on the registry",
		Long: `List the databases published to the registry, or the versions of one
database.

EXAMPLES:
  # List all databases
  errdex list

  # List the versions of one database
  errdex list protocol-errors
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(getServer(), getAPIKey())

			if len(args) == 1 {
				resp, err := c.GetVersions(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Printf("%s (latest: %s)\n", resp.Name, resp.Latest)
				for _, v := range resp.Versions {
					fmt.Printf("  %s\n", v)
				}
				return nil
			}

			resp, err := c.List(cmd.Context())
			if err != nil {
				return err
			}

			if len(resp.Data) == 0 {
				fmt.Println("No databases published")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "  NAME\tVERSIONS\tERRORS\n")
			for _, db := range resp.Data {
				fmt.Fprintf(w, "  %s\t%s\t%d\n", db.Name, strings.Join(db.Versions, ", "), db.RecordCount)
			}
			w.Flush()

			if resp.Pagination.HasMore {
				fmt.Println("\n(more results available)")
			}

			return nil
		},
	}

	return cmd
}
