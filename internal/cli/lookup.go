package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roeezolantz/errdex/internal/errordb"
	"github.com/roeezolantz/errdex/internal/selector"
	"github.com/roeezolantz/errdex/pkg/client"
)

func createLookupCmd() *cobra.Command {
	var dbFile string
	var remote string
	var byName string

	cmd := &cobra.Command{
		Use:   "lookup [selector]",
		Short: "Resolve a 4-byte selector to its error",
		Long: `Resolve a revert selector to the custom error that produced it.

The selector is 4 bytes of hex, with or without the 0x prefix, in any
case. Lookup runs against a local database file by default, or against a
published database on the registry with --database. With --name, search
by error name substring instead of selector.

EXAMPLES:
  # Look up in the local errors.json
  errdex lookup 0x8e4a23d6

  # Look up in another local file
  errdex lookup 8E4A23D6 --db build/errors.json

  # Look up in a published database
  errdex lookup 0x8e4a23d6 --database protocol-errors@1.2.0
  errdex lookup 0x8e4a23d6 --database protocol-errors

  # Search by error name
  errdex lookup --name Unauthorized
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if byName != "" {
				if remote != "" {
					return runRemoteNameSearch(cmd, remote, byName)
				}
				return runLocalNameSearch(dbFile, byName)
			}
			if len(args) != 1 {
				return fmt.Errorf("a selector argument is required unless --name is given")
			}
			if remote != "" {
				return runRemoteLookup(cmd, remote, args[0])
			}
			return runLocalLookup(dbFile, args[0])
		},
	}

	cmd.Flags().StringVar(&dbFile, "db", "errors.json", "local database file")
	cmd.Flags().StringVar(&remote, "database", "", "published database as name or name@version")
	cmd.Flags().StringVar(&byName, "name", "", "search by error name substring instead of selector")

	return cmd
}

func runLocalNameSearch(dbFile, query string) error {
	records, err := errordb.Load(dbFile)
	if err != nil {
		return err
	}

	matches := errordb.SearchByName(records, query)
	if len(matches) == 0 {
		return fmt.Errorf("no error name contains %q in %s", query, dbFile)
	}

	for _, r := range matches {
		printRecord(r)
	}
	return nil
}

func runRemoteNameSearch(cmd *cobra.Command, remote, query string) error {
	name, version := splitNameVersion(remote)

	c := client.New(getServer(), getAPIKey())
	results, err := c.Search(cmd.Context(), name, version, query)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("no error name contains %q in %s@%s", query, name, version)
	}

	for _, r := range results {
		printRecord(errordb.Record{
			Name:       r.Name,
			Signature:  r.Signature,
			Inputs:     r.Inputs,
			InputTypes: r.InputTypes,
			Source:     r.Source,
			Selector:   r.Selector,
		})
	}
	return nil
}

func runLocalLookup(dbFile, raw string) error {
	sel, err := selector.Normalize(raw)
	if err != nil {
		return fmt.Errorf("invalid selector %q: expected 4 bytes of hex with optional 0x prefix", raw)
	}

	records, err := errordb.Load(dbFile)
	if err != nil {
		return err
	}

	record, err := errordb.FindBySelector(records, sel)
	if err != nil {
		return fmt.Errorf("no error matches %s in %s", sel, dbFile)
	}

	printRecord(record)
	return nil
}

func runRemoteLookup(cmd *cobra.Command, remote, raw string) error {
	name, version := splitNameVersion(remote)

	c := client.New(getServer(), getAPIKey())
	record, err := c.LookupSelector(cmd.Context(), name, version, raw)
	if err != nil {
		return err
	}

	printRecord(errordb.Record{
		Name:       record.Name,
		Signature:  record.Signature,
		Inputs:     record.Inputs,
		InputTypes: record.InputTypes,
		Source:     record.Source,
		Selector:   record.Selector,
	})
	return nil
}

func printRecord(r errordb.Record) {
	fmt.Printf("%s  %s\n", r.Selector, r.Signature)
	fmt.Printf("  source: %s\n", r.Source)
	for i, name := range r.Inputs {
		label := name
		if label == "" {
			label = fmt.Sprintf("arg%d", i)
		}
		fmt.Printf("  %s %s\n", r.InputTypes[i], label)
	}
}

// splitNameVersion splits "name@version" into its parts, defaulting the
// version to "latest".
func splitNameVersion(s string) (name, version string) {
	if i := strings.LastIndex(s, "@"); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, "latest"
}
