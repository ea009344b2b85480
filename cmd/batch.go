package cmd

import (
	"github.com/huangsam/tsfeat/core"
	"github.com/huangsam/tsfeat/internal/contract"
	"github.com/spf13/cobra"
)

// batchCmd runs the flat extraction on independent records.
var batchCmd = &cobra.Command{
	Use:   "batch <records.json>",
	Short: "Extract features from independent records of already-ordered series.",
	Long: `Read a JSON array of records, each mapping column names to numeric series,
and compute the catalog features for every column of every record.

Records are independent: there is no grouping or sorting. The output keeps
the input order. JSON output mirrors the input shape as
[{column: {feature: value}}]; text, CSV and Parquet use a long form with one
line per record, column and feature.

Examples:
  # Features for two records
  echo '[{"x": [1, 2, 3]}, {"x": [4, 5], "y": [0.5]}]' > records.json
  tsfeat batch records.json --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteBatch(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run batch extraction", err)
		}
	},
}
