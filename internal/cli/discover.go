package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roeezolantz/errdex/internal/abi"
	"github.com/roeezolantz/errdex/internal/builders"
	"github.com/roeezolantz/errdex/internal/discovery"
)

func createDiscoverCmd() *cobra.Command {
	var artifactDirs []string
	var showErrors bool

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Discover artifacts and the errors they declare",
		Long: `List the artifact files errdex would read, without building a database.

With --errors, also extract and show the custom errors each artifact
declares.

EXAMPLES:
  # Show artifact files from the detected toolchain
  errdex discover

  # Show extracted errors too
  errdex discover --errors

  # Scan specific directories
  errdex discover --artifacts out
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiscover(artifactDirs, showErrors)
		},
	}

	cmd.Flags().StringSliceVar(&artifactDirs, "artifacts", nil, "artifact directories to scan (skips toolchain detection)")
	cmd.Flags().BoolVar(&showErrors, "errors", false, "extract and show errors per artifact")

	return cmd
}

func runDiscover(artifactDirs []string, showErrors bool) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dirs := artifactDirs
	if len(dirs) == 0 {
		builder, err := builders.DefaultRegistry().Detect(cwd)
		if err != nil {
			return err
		}
		fmt.Printf("Detected %s project\n", builder.DisplayName())
		dirs = builder.ArtifactDirs(cwd)
	}

	paths, err := discovery.Discover(dirs)
	if err != nil {
		return fmt.Errorf("discovering artifacts: %w", err)
	}

	if len(paths) == 0 {
		fmt.Printf("No artifacts found in %v\n", dirs)
		fmt.Println("\nCompile the project first, e.g. 'forge build' or 'npx hardhat compile'.")
		return nil
	}

	fmt.Printf("Artifacts (%d):\n\n", len(paths))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, path := range paths {
		if !showErrors {
			fmt.Fprintf(w, "  %s\n", path)
			continue
		}

		extracted, err := abi.ExtractFile(path)
		if err != nil {
			fmt.Fprintf(w, "  %s\t(unreadable: %v)\n", path, err)
			continue
		}
		fmt.Fprintf(w, "  %s\t%d error(s)\n", path, len(extracted))
		for _, e := range extracted {
			fmt.Fprintf(w, "    %s\t%s\n", e.Name, e.Signature)
		}
	}
	w.Flush()

	return nil
}
