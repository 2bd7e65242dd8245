package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

// projectConfigFiles is the search order for project config files
var projectConfigFiles = []string{"errdex.toml"}

// ProjectConfig is the project-level TOML configuration
type ProjectConfig struct {
	Server       string   `toml:"server"`
	Name         string   `toml:"name,omitempty"`
	Description  string   `toml:"description,omitempty"`
	Builder      string   `toml:"builder,omitempty"`
	ArtifactDirs []string `toml:"artifact_dirs,omitempty"`
}

func createConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration commands",
	}

	cmd.AddCommand(createConfigInitCmd())
	cmd.AddCommand(createConfigShowCmd())

	return cmd
}

func createConfigInitCmd() *cobra.Command {
	var serverURL string
	var name string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create config file",
		Long: `Create an errdex.toml configuration file in the current directory.

This file stores project-specific settings like the server URL, the
database name to publish under, and which toolchain to use.

EXAMPLES:
  # Create config with default server
  errdex config init

  # Create config for a specific server
  errdex config init --server https://errdex.example.com

  # Overwrite existing config
  errdex config init --force
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(serverURL, name, force)
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "server URL")
	cmd.Flags().StringVar(&name, "name", "", "database name (defaults to directory name)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing config")

	return cmd
}

func createConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current config",
		Long: `Display the current configuration.

Shows the local project config (errdex.toml) and the stored credentials.

EXAMPLES:
  errdex config show
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow()
		},
	}

	return cmd
}

func runConfigInit(serverURL, name string, force bool) error {
	configPath := "errdex.toml"

	// Check if any config file already exists
	for _, cfgFile := range projectConfigFiles {
		if _, err := os.Stat(cfgFile); err == nil && !force {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite)", cfgFile)
		}
	}

	// Default database name to current directory
	if name == "" {
		cwd, err := os.Getwd()
		if err == nil {
			name = filepath.Base(cwd)
		}
	}

	// Generate TOML config
	content := fmt.Sprintf(`# Errdex project configuration

server = "%s"
name = "%s"

# Toolchain to compile with (foundry, hardhat, solc). Empty = auto-detect.
# builder = "foundry"

# Artifact directories to scan instead of toolchain detection
# artifact_dirs = ["out", "artifacts/contracts"]

# Shown on the registry next to the database
# description = "Custom errors for the protocol contracts"
`, serverURL, name)

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Created %s\n", configPath)
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Printf("  Server: %s\n", serverURL)
	fmt.Printf("  Name:   %s\n", name)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Printf("  1. Edit %s to customize settings\n", configPath)
	fmt.Println("  2. Run 'errdex auth login' to authenticate")
	fmt.Println("  3. Run 'errdex publish' to publish")

	return nil
}

func runConfigShow() error {
	fmt.Println("Configuration sources (in order of precedence):")
	fmt.Println()

	// 1. Command line flags
	fmt.Println("1. Command line flags")
	fmt.Println("   --server, --api-key, --config")
	fmt.Println()

	// 2. Environment variables
	fmt.Println("2. Environment variables")
	serverEnv := os.Getenv("ERRDEX_SERVER")
	keyEnv := os.Getenv("ERRDEX_API_KEY")
	if serverEnv != "" {
		fmt.Printf("   ERRDEX_SERVER=%s\n", serverEnv)
	} else {
		fmt.Println("   ERRDEX_SERVER=(not set)")
	}
	if keyEnv != "" {
		fmt.Printf("   ERRDEX_API_KEY=%s\n", maskAPIKey(keyEnv))
	} else {
		fmt.Println("   ERRDEX_API_KEY=(not set)")
	}
	fmt.Println()

	// 3. Local project config
	fmt.Println("3. Local project config (errdex.toml)")
	projectConfig, configPath, err := loadProjectConfig()
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("   (not found)")
		} else {
			fmt.Printf("   Error: %v\n", err)
		}
	} else {
		fmt.Printf("   Loaded from: %s\n", configPath)
		if projectConfig.Server != "" {
			fmt.Printf("   server: %s\n", projectConfig.Server)
		}
		if projectConfig.Name != "" {
			fmt.Printf("   name: %s\n", projectConfig.Name)
		}
		if projectConfig.Builder != "" {
			fmt.Printf("   builder: %s\n", projectConfig.Builder)
		}
		if len(projectConfig.ArtifactDirs) > 0 {
			fmt.Printf("   artifact_dirs: %v\n", projectConfig.ArtifactDirs)
		}
		if projectConfig.Description != "" {
			fmt.Printf("   description: %s\n", projectConfig.Description)
		}
	}
	fmt.Println()

	// 4. Credentials
	fmt.Println("4. Credentials (~/.errdex/credentials)")
	creds, err := loadCredentials()
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("   (not found)")
		} else {
			fmt.Printf("   Error: %v\n", err)
		}
	} else {
		if len(creds.Servers) == 0 {
			fmt.Println("   (no credentials stored)")
		} else {
			for server, cred := range creds.Servers {
				fmt.Printf("   %s: %s\n", server, maskAPIKey(cred.APIKey))
			}
		}
	}
	fmt.Println()

	// Effective config
	fmt.Println("Effective configuration:")
	fmt.Printf("   Server:  %s\n", getServer())
	if key := getAPIKey(); key != "" {
		fmt.Printf("   API Key: %s\n", maskAPIKey(key))
	} else {
		fmt.Println("   API Key: (not set)")
	}

	return nil
}

// loadProjectConfig loads the project config from the first matching config file.
// Returns the config, the path it was loaded from, and an error.
func loadProjectConfig() (*ProjectConfig, string, error) {
	// If --config flag was provided, use that directly
	if cfgFile != "" {
		config, err := loadProjectConfigFromPath(cfgFile)
		if err != nil {
			return nil, cfgFile, err
		}
		return config, cfgFile, nil
	}

	// Search for config files in order
	for _, name := range projectConfigFiles {
		if _, err := os.Stat(name); err == nil {
			config, err := loadProjectConfigFromPath(name)
			if err != nil {
				return nil, name, err
			}
			return config, name, nil
		}
	}
	return nil, "", os.ErrNotExist
}

// loadProjectConfigFromPath loads a project config from a specific path
func loadProjectConfigFromPath(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config ProjectConfig
	if _, err := toml.Decode(string(data), &config); err != nil {
		return nil, fmt.Errorf("parsing TOML: %w", err)
	}

	return &config, nil
}

// loadProjectConfigSilent loads the project config without returning errors for missing files.
// Returns nil if the file doesn't exist, but returns errors for parse failures.
func loadProjectConfigSilent() *ProjectConfig {
	config, _, err := loadProjectConfig()
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		// Show actionable errors (parse failures)
		fmt.Fprintf(os.Stderr, "Warning: failed to load project config: %v\n", err)
		return nil
	}
	return config
}
