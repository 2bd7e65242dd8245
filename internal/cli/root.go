package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	server  string
	apiKey  string
)

// Execute runs the CLI
func Execute(version string) error {
	rootCmd := &cobra.Command{
		Use:     "errdex",
		Short:   "Solidity custom error database CLI",
		Long:    `Errdex extracts custom error definitions from compiled Solidity artifacts, builds selector databases, and publishes them to a registry.`,
		Version: version,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: errdex.toml)")
	rootCmd.PersistentFlags().StringVar(&server, "server", "", "server URL (default from config)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key for authentication")

	// Add subcommands
	rootCmd.AddCommand(createBuildCmd())
	rootCmd.AddCommand(createDiscoverCmd())
	rootCmd.AddCommand(createLookupCmd())
	rootCmd.AddCommand(createSourcesCmd())
	rootCmd.AddCommand(createPublishCmd())
	rootCmd.AddCommand(createListCmd())
	rootCmd.AddCommand(createAuthCmd())
	rootCmd.AddCommand(createConfigCmd())

	return rootCmd.Execute()
}

// getServer returns the server URL from flag, env, config file, or default
func getServer() string {
	// 1. Command line flag
	if server != "" {
		return server
	}

	// 2. Environment variable
	if env := os.Getenv("ERRDEX_SERVER"); env != "" {
		return env
	}

	// 3. Project config file (TOML)
	if config := loadProjectConfigSilent(); config != nil && config.Server != "" {
		return config.Server
	}

	// 4. Default
	return "http://localhost:8080"
}

// getAPIKey returns the API key from flag, env, or credentials file
func getAPIKey() string {
	// 1. Command line flag
	if apiKey != "" {
		return apiKey
	}

	// 2. Environment variable
	if env := os.Getenv("ERRDEX_API_KEY"); env != "" {
		return env
	}

	// 3. Credentials file (keyed by server URL)
	serverURL := getServer()
	if cred := getCredential(serverURL); cred != "" {
		return cred
	}

	return ""
}
