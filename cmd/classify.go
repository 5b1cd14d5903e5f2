package cmd

import (
	"fmt"

	"github.com/huangsam/repostats/core"
	"github.com/huangsam/repostats/internal/contract"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// classifySetup loads the output settings without resolving repositories or opening stores.
func classifySetup(_ *cobra.Command, _ []string) error {
	if err := readConfigFile(); err != nil {
		return err
	}
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	return contract.ProcessClassifyConfig(cfg, input)
}

// classifyCmd prints the category of each filename.
var classifyCmd = &cobra.Command{
	Use:   "classify [path...]",
	Short: "Classify files as programming, markup, prose, data or unknown.",
	Long: `Assign each filename the content category used to split change statistics.

Categories come from the filename extension or the exact filename. When a
name matches several categories, prose wins over data, data over markup and
markup over programming. Names that match nothing are unknown.

Without arguments, every file tracked in the current repository is classified.

Examples:
  # Classify the current repository
  repostats classify

  # Classify specific names
  repostats classify main.go README.md config.yaml

  # Export the classification as CSV
  repostats classify --output csv --output-file categories.csv`,
	PreRunE: classifySetup,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteClassify(rootCtx, cfg, args); err != nil {
			contract.LogFatal("Cannot classify files", err)
		}
	},
}
