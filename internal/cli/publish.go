package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roeezolantz/errdex/internal/errordb"
	"github.com/roeezolantz/errdex/pkg/client"
)

func createPublishCmd() *cobra.Command {
	var name string
	var version string
	var description string
	var input string
	var builderName string
	var artifactDirs []string
	var noCompile bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish an error database to the registry",
		Long: `Build an error database from the current project and publish it.

The database name comes from --name or errdex.toml. Without an explicit
--version the server bumps the latest published patch version, starting
at 0.1.0 for a new name. Published versions are immutable.

EXAMPLES:
  # Build from the current project and publish the next patch version
  errdex publish --name protocol-errors

  # Publish an explicit version
  errdex publish --name protocol-errors --version 2.0.0

  # Publish a database file built earlier
  errdex publish --name protocol-errors --input errors.json

  # Show what would be published
  errdex publish --name protocol-errors --dry-run
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(cmd, name, version, description, input, builderName, artifactDirs, noCompile, dryRun)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "database name (default from errdex.toml)")
	cmd.Flags().StringVarP(&version, "version", "v", "", "version to publish (default: server bumps latest patch)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "database description")
	cmd.Flags().StringVarP(&input, "input", "i", "", "publish an existing database file instead of building")
	cmd.Flags().StringVar(&builderName, "builder", "", "toolchain to use (foundry, hardhat, solc); default auto-detect")
	cmd.Flags().StringSliceVar(&artifactDirs, "artifacts", nil, "artifact directories to scan (skips toolchain detection)")
	cmd.Flags().BoolVar(&noCompile, "no-compile", false, "use existing artifacts without compiling")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be published without publishing")

	return cmd
}

func runPublish(cmd *cobra.Command, name, version, description, input, builderName string, artifactDirs []string, noCompile, dryRun bool) error {
	projectConfig := loadProjectConfigSilent()

	// Resolve name: CLI flag > config
	if name == "" && projectConfig != nil {
		name = projectConfig.Name
	}
	if name == "" {
		return fmt.Errorf("database name required (use --name or set name in errdex.toml)")
	}

	if description == "" && projectConfig != nil {
		description = projectConfig.Description
	}
	if builderName == "" && projectConfig != nil {
		builderName = projectConfig.Builder
	}
	if len(artifactDirs) == 0 && projectConfig != nil {
		artifactDirs = projectConfig.ArtifactDirs
	}

	var records []errordb.Record
	var err error
	if input != "" {
		records, err = errordb.Load(input)
	} else {
		records, err = buildDatabase(cmd, builderName, artifactDirs, noCompile)
	}
	if err != nil {
		return err
	}

	if len(records) == 0 {
		return fmt.Errorf("no custom errors found - nothing to publish")
	}

	versionLabel := version
	if versionLabel == "" {
		versionLabel = "(next patch)"
	}

	fmt.Printf("Database %s %s: %d error(s)\n", name, versionLabel, len(records))
	for _, sc := range errordb.SummarizeBySource(records) {
		fmt.Printf("  %s: %d\n", sc.Source, sc.Count)
	}

	serverURL := getServer()
	if dryRun {
		fmt.Printf("\nDRY RUN - would publish to %s\n", serverURL)
		return nil
	}

	req := client.PublishRequest{
		Version:     version,
		Description: description,
		Records:     make([]client.Record, len(records)),
	}
	for i, r := range records {
		req.Records[i] = client.Record{
			Name:       r.Name,
			Signature:  r.Signature,
			Inputs:     r.Inputs,
			InputTypes: r.InputTypes,
			Source:     r.Source,
			Selector:   r.Selector,
		}
	}

	fmt.Printf("\nPublishing to %s...\n", serverURL)

	c := client.New(serverURL, getAPIKey())
	result, err := c.Publish(cmd.Context(), name, req)
	if err != nil {
		return fmt.Errorf("publishing %s: %w", name, err)
	}

	fmt.Printf("Published %s@%s (%d record(s))\n", result.Name, result.Version, result.RecordCount)
	fmt.Printf("\n   Example: errdex lookup %s --database %s@%s\n", records[0].Selector, result.Name, result.Version)

	return nil
}
