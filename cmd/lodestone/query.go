package lodestone

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	lode "github.com/lodestone-ai/lodestone"
	"github.com/lodestone-ai/lodestone/pkg/config"
	"github.com/lodestone-ai/lodestone/pkg/types"
)

var queryCmd = &cobra.Command{
	Use:   "query [query text]",
	Short: "Run a one-shot retrieval against a configured tool",
	Long: `Run a single retrieval through a tool defined in the configuration and
print the projected context as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

var (
	queryTool   string
	queryTopK   int
	queryFilter string
)

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringVar(&queryTool, "tool", "", "Tool name (defaults to the only configured tool)")
	queryCmd.Flags().IntVar(&queryTopK, "top-k", 5, "Maximum number of context chunks")
	queryCmd.Flags().StringVar(&queryFilter, "filter", "", "Metadata filter (JSON text or store-specific string)")
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		return err
	}

	client, err := buildClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer client.Close()

	tool, err := pickTool(client, queryTool)
	if err != nil {
		return err
	}

	ctx := context.WithValue(cmd.Context(), types.ContextKeyRequestSource, "cli")
	out, err := tool.Invoke(ctx, lode.Input{
		QueryText: args[0],
		TopK:      queryTopK,
		Filter:    queryFilter,
	})
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func pickTool(client *lode.Client, name string) (*lode.Tool, error) {
	if name != "" {
		tool, ok := client.Tool(name)
		if !ok {
			return nil, fmt.Errorf("tool %q is not configured", name)
		}
		return tool, nil
	}

	tools := client.Tools()
	switch len(tools) {
	case 0:
		return nil, fmt.Errorf("no tools configured; add a tools entry to the config file")
	case 1:
		return tools[0], nil
	default:
		return nil, fmt.Errorf("multiple tools configured; pick one with --tool")
	}
}
