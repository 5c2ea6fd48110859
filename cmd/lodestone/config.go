package lodestone

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lodestone-ai/lodestone/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Resolve the configuration from defaults, the config file, environment
variables, and flags, and print the result as YAML. Secrets are redacted.`,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	redactConfig(cfg)

	encoder := yaml.NewEncoder(os.Stdout)
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(cfg)
}

func redactConfig(cfg *config.Config) {
	if cfg.Embedding.APIKey != "" {
		cfg.Embedding.APIKey = "[redacted]"
	}
	if cfg.Reranker.APIKey != "" {
		cfg.Reranker.APIKey = "[redacted]"
	}
	for i := range cfg.Stores {
		if cfg.Stores[i].Password != "" {
			cfg.Stores[i].Password = "[redacted]"
		}
	}
}
