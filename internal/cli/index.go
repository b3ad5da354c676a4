// internal/cli/index.go
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jclermont/advisor/internal/indexer"
)

// indexCmd builds the vector index snapshot from the course dataset.
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the course vector index",
	Long:  `The 'index' command loads the course dataset, embeds every record, and persists the vector index snapshot used at query time.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return indexer.BuildIndex(context.Background(), getConfig())
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
