package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roeezolantz/errdex/internal/abi"
	"github.com/roeezolantz/errdex/internal/builders"
	"github.com/roeezolantz/errdex/internal/discovery"
	"github.com/roeezolantz/errdex/internal/errordb"
)

func createBuildCmd() *cobra.Command {
	var output string
	var builderName string
	var artifactDirs []string
	var noCompile bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build an error database from the current project",
		Long: `Compile the current project and build a selector database from its
artifacts. The project toolchain is auto-detected (foundry, hardhat, or
loose .sol files via solc), each artifact's custom errors are extracted,
deduplicated by signature, and written as JSON sorted by selector.

EXAMPLES:
  # Compile and build errors.json
  errdex build

  # Skip compilation, use existing artifacts
  errdex build --no-compile

  # Use specific artifact directories instead of toolchain detection
  errdex build --artifacts out --artifacts artifacts/contracts

  # Force a specific toolchain
  errdex build --builder hardhat
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := buildDatabase(cmd, builderName, artifactDirs, noCompile)
			if err != nil {
				return err
			}

			if err := errordb.Save(output, records); err != nil {
				return err
			}

			fmt.Printf("Wrote %d error(s) to %s\n", len(records), output)
			for _, sc := range errordb.SummarizeBySource(records) {
				fmt.Printf("  %s: %d\n", sc.Source, sc.Count)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "errors.json", "output database file")
	cmd.Flags().StringVar(&builderName, "builder", "", "toolchain to use (foundry, hardhat, solc); default auto-detect")
	cmd.Flags().StringSliceVar(&artifactDirs, "artifacts", nil, "artifact directories to scan (skips toolchain detection)")
	cmd.Flags().BoolVar(&noCompile, "no-compile", false, "use existing artifacts without compiling")

	return cmd
}

// buildDatabase runs the full pipeline: resolve artifact directories,
// discover artifact files, extract and deduplicate errors, attach
// selectors.
func buildDatabase(cmd *cobra.Command, builderName string, artifactDirs []string, noCompile bool) ([]errordb.Record, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting current directory: %w", err)
	}

	dirs := artifactDirs
	if len(dirs) == 0 {
		dirs, err = resolveArtifactDirs(cmd, cwd, builderName, noCompile)
		if err != nil {
			return nil, err
		}
	}

	paths, err := discovery.Discover(dirs)
	if err != nil {
		return nil, fmt.Errorf("discovering artifacts: %w", err)
	}
	if len(paths) == 0 {
		// A batch with no input files still yields a valid, empty database.
		fmt.Fprintf(os.Stderr, "Warning: no artifacts found in %v - the database will be empty\n", dirs)
		return []errordb.Record{}, nil
	}

	extracted, err := abi.ExtractBatch(paths)
	if err != nil {
		return nil, fmt.Errorf("extracting errors: %w", err)
	}

	return errordb.Build(extracted), nil
}

// resolveArtifactDirs picks a toolchain and returns its artifact
// directories, compiling first unless told not to.
func resolveArtifactDirs(cmd *cobra.Command, cwd, builderName string, noCompile bool) ([]string, error) {
	registry := builders.DefaultRegistry()

	var builder builders.Builder
	if builderName != "" {
		b, ok := registry.Get(builderName)
		if !ok {
			return nil, fmt.Errorf("unknown builder %q (expected foundry, hardhat, or solc)", builderName)
		}
		builder = b
	} else {
		b, err := registry.Detect(cwd)
		if err != nil {
			return nil, err
		}
		builder = b
	}

	fmt.Printf("Detected %s project in %s\n", builder.DisplayName(), cwd)

	if noCompile {
		return builder.ArtifactDirs(cwd), nil
	}

	result, err := builder.Compile(cmd.Context(), cwd)
	if err != nil {
		return nil, fmt.Errorf("compiling with %s: %w", builder.DisplayName(), err)
	}
	if !result.Success {
		return nil, fmt.Errorf("%s build failed:\n%s", builder.DisplayName(), result.Output)
	}

	return result.ArtifactDirs, nil
}
