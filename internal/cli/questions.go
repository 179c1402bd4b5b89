/*
PURPOSE:
  Defines the 'questions' subcommand group.
  Exports the embedded question set and example config for editing.

REQUIREMENTS:
  User-specified:
  - Give users an editable starting point for custom question sets.

  Implementation-discovered:
  - Embedded assets keep the binary self-contained; export copies them
    out verbatim.

ARCHITECTURE INTEGRATION:
  - Uses: internal/assets, internal/output

ERROR HANDLING:
  - Fails on unwritable target directory; per-file failures abort the
    export (a half-exported set would be confusing).

IMPLEMENTATION RULES:
  - Never overwrite silently; refuse if the target file exists.

USAGE:
  tokenmeter questions export --dir ./measurement

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/assets/assets.go

MAINTENANCE:
  - Update when new assets are embedded.
*/

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aicac-project/tokenmeter/internal/assets"
	"github.com/aicac-project/tokenmeter/internal/output"
)

var exportDir string

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Manage the benchmark question set",
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the embedded question set and example config to a directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.MkdirAll(exportDir, 0755); err != nil {
			return fmt.Errorf("failed to create target directory %s: %w", exportDir, err)
		}

		for _, asset := range []string{assets.QuestionsPath, assets.ExampleConfigPath} {
			content, err := assets.Data.ReadFile(asset)
			if err != nil {
				return fmt.Errorf("failed to read embedded asset %s: %w", asset, err)
			}

			targetPath := filepath.Join(exportDir, filepath.Base(asset))
			if _, err := os.Stat(targetPath); err == nil {
				return fmt.Errorf("refusing to overwrite existing file %s", targetPath)
			}
			if err := os.WriteFile(targetPath, content, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", targetPath, err)
			}

			output.Logger.Info("Exported asset", "path", targetPath)
		}

		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportDir, "dir", ".", "Target directory for exported files")
	questionsCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(questionsCmd)
}
