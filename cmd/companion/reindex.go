package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cooking-companion/server/internal/app"
)

func newReindexCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild index.json from the recipe files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.Open(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(); err != nil {
					c.logger.Warn("Error closing search index", zap.Error(err))
				}
			}()

			entries, err := a.Kitchen.RebuildIndex(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Indexed %d recipes in %s\n", len(entries), a.Store.Dir())
			return nil
		},
	}
}
