package cmd

import (
	"github.com/huangsam/tsfeat/core"
	"github.com/huangsam/tsfeat/internal/contract"
	"github.com/spf13/cobra"
)

// extractCmd runs the grouped extraction on a long-format table.
var extractCmd = &cobra.Command{
	Use:   "extract <input>",
	Short: "Extract one row of features per time series id.",
	Long: `Read a long-format table (CSV or Parquet) holding many time series and compute
a fixed set of statistical features for every numeric column of every series.

Each distinct value of the id column is one series. Rows within a series are
ordered by the sort column before features are computed. The output has one
row per id and one column per "{column}__{feature}" pair.

Series that cannot be processed (for example a non-numeric feature column or
an unorderable sort column) are reported and left out of the result.

Examples:
  # Minimal feature set with default columns id and time
  tsfeat extract readings.csv

  # Custom id and sort columns, extended catalog
  tsfeat extract readings.parquet --id sensor --sort ts --catalog extended

  # Export to CSV or Parquet for downstream modeling
  tsfeat extract readings.csv --output csv --output-file features.csv
  tsfeat extract readings.csv --output parquet --output-file features.parquet`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteExtract(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run feature extraction", err)
		}
	},
}
