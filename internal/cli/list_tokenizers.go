/*
PURPOSE:
  Defines the 'list-tokenizers' subcommand.
  Helps debug backend availability before a full run.

REQUIREMENTS:
  User-specified:
  - List known tokenizer backends and whether each is usable.

  Implementation-discovered:
  - Useful validation step before runs that need credentials.

ARCHITECTURE INTEGRATION:
  - Calls: internal/tokenizer.NewRegistry

ERROR HANDLING:
  - Availability problems are informational here, not errors.

IMPLEMENTATION RULES:
  - Simple output to stdout.

USAGE:
  tokenmeter list-tokenizers

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/tokenizer/tokenizer.go

MAINTENANCE:
  - None.
*/

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aicac-project/tokenmeter/internal/config"
	"github.com/aicac-project/tokenmeter/internal/tokenizer"
)

var listTokenizersCmd = &cobra.Command{
	Use:   "list-tokenizers",
	Short: "List known tokenizer backends and their availability",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		registry := tokenizer.NewRegistry(cfg)
		for _, info := range registry.Known() {
			if info.Available {
				fmt.Printf("- %-10s available\n", info.Name)
			} else {
				fmt.Printf("- %-10s unavailable (%s)\n", info.Name, info.Reason)
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(listTokenizersCmd)
}
