package cmd

import (
	"github.com/huangsam/tsfeat/core"
	"github.com/huangsam/tsfeat/internal/contract"
	"github.com/spf13/cobra"
)

// featuresCmd lists the features of a catalog.
var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "List the features computed by a catalog",
	Long: `Show every feature of the selected catalog with a short description.

Each feature is computed once per numeric column. In grouped output a feature
appears as "{column}__{feature}".

Examples:
  # Minimal catalog (default)
  tsfeat features

  # Extended catalog as JSON
  tsfeat features --catalog extended --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteFeatures(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot list features", err)
		}
	},
}
