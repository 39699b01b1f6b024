package main

import (
	"authcore/internal/metrics"

	"github.com/spf13/cobra"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete expired refresh tokens once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		n, err := a.tokens.PruneExpired(cmd.Context())
		if err != nil {
			return err
		}
		metrics.AddPruned(n)
		a.log.Info().Int64("deleted", n).Msg("expired refresh tokens pruned")
		return nil
	},
}
