/*
PURPOSE:
  Defines the 'run' subcommand.
  Executes the full token measurement suite.

REQUIREMENTS:
  User-specified:
  - Run the measurements.
  - Specific flags for overrides.

  Implementation-discovered:
  - Need to load config first.
  - Apply flag overrides to config.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.Run()
  - Uses: internal/config

ERROR HANDLING:
  - Returns error if config load fails or engine run fails; main turns
    that into a non-zero exit code.

IMPLEMENTATION RULES:
  - Setup flags in init().
  - Logic: Load Config -> Override -> Engine.Run.

USAGE:
  tokenmeter run --repo-path ../myrepo --format all --trials 5

SELF-HEALING INSTRUCTIONS:
  - Check flag names match Config struct fields generally.

RELATED FILES:
  - internal/cli/root.go

MAINTENANCE:
  - Update when adding new CLI overrides.
*/

package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/aicac-project/tokenmeter/internal/config"
	"github.com/aicac-project/tokenmeter/internal/engine"
	"github.com/aicac-project/tokenmeter/internal/model"
)

var (
	repoPathOverride   string
	formatOverride     string
	includeSelective   bool
	tokenizersOverride []string
	categoryOverride   []string
	trialsOverride     int
	outputDirOverride  string
	questionsOverride  string
	baselineOverride   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the token measurement suite",
	Long: `Measures token consumption for each selected documentation format across
the question set, repeated for the configured number of trials.

The process:
1. Preflight: verifies every file a format needs exists (a missing file
   aborts that format before any measurement is taken).
2. Measurement: formats x questions x tokenizers x trials, one record each.
3. Reporting: streams records to CSV/JSONL, writes the JSON report with
   summary statistics, and prints a console summary.

Percentage polarity: positive = fewer tokens than the baseline format.`,
	Example: `  # Measure the default formats of the current repo
  tokenmeter run

  # All formats including the selective-loading variant, 5 trials
  tokenmeter run --format all --include-selective --trials 5

  # A specific repository and tokenizer set
  tokenmeter run --repo-path ../myrepo --tokenizers heuristic,gpt4

  # Only information-retrieval questions
  tokenmeter run --category information_retrieval`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Load Config
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		// 2. Overrides
		if repoPathOverride != "" {
			cfg.RepoPath = repoPathOverride
		}
		if formatOverride != "" {
			if strings.EqualFold(formatOverride, "all") {
				cfg.Formats = []string{
					string(model.FormatReadmeOnly),
					string(model.FormatAgentsOnly),
					string(model.FormatAICaC),
				}
			} else {
				cfg.Formats = []string{formatOverride}
			}
		}
		if includeSelective {
			cfg.Formats = appendUnique(cfg.Formats, string(model.FormatAICaCSelective))
		}
		if len(tokenizersOverride) > 0 {
			cfg.Tokenizers = tokenizersOverride
		}
		if len(categoryOverride) > 0 {
			cfg.Categories = categoryOverride
		}
		if cmd.Flags().Changed("trials") {
			cfg.Trials = trialsOverride
		}
		if outputDirOverride != "" {
			cfg.OutputDir = outputDirOverride
		}
		if questionsOverride != "" {
			cfg.QuestionsFile = questionsOverride
		}
		if baselineOverride != "" {
			cfg.Baseline = baselineOverride
		}

		// 3. Execution
		return engine.Run(cmd.Context(), cfg)
	},
}

func appendUnique(items []string, item string) []string {
	for _, x := range items {
		if strings.EqualFold(x, item) {
			return items
		}
	}
	return append(items, item)
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&repoPathOverride, "repo-path", "", "Repository whose documentation is measured")
	runCmd.Flags().StringVarP(&formatOverride, "format", "f", "", "Single format to measure, or 'all'")
	runCmd.Flags().BoolVar(&includeSelective, "include-selective", false, "Also measure AICAC_SELECTIVE (guided selective loading)")
	runCmd.Flags().StringSliceVar(&tokenizersOverride, "tokenizers", nil, "Comma-separated tokenizer backends (heuristic, gpt4, claude)")
	runCmd.Flags().StringSliceVar(&categoryOverride, "category", nil, "Comma-separated question categories to include")
	runCmd.Flags().IntVar(&trialsOverride, "trials", 1, "Repeat count per combination (determinism check)")
	runCmd.Flags().StringVarP(&outputDirOverride, "output-dir", "o", "", "Output directory for results (CSV/JSONL/JSON)")
	runCmd.Flags().StringVar(&questionsOverride, "questions", "", "Path to a YAML question file (overrides embedded set)")
	runCmd.Flags().StringVar(&baselineOverride, "baseline", "", "Baseline format for percentage reductions")
}
