package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/repository"
)

func newHealthCmd(a *app) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check database connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			db, err := repository.Open(ctx, repository.ConfigFrom(a.cfg.Database), a.logger)
			if err != nil {
				_, _ = fmt.Fprintf(out, "DB health: FAIL (%v)\n", err)
				return err
			}
			defer db.Close(a.logger)

			if err := db.HealthCheck(ctx, timeout, a.logger); err != nil {
				_, _ = fmt.Fprintf(out, "DB health: FAIL (%v)\n", err)
				return err
			}
			_, _ = fmt.Fprintf(out, "DB health: OK (%s)\n", db.Dialect)

			repo := repository.NewDocumentRepository(db, a.logger)
			if err := repo.EnsureSchema(ctx); err != nil {
				return err
			}
			counts, err := repo.CountByStatus(ctx)
			if err != nil {
				return err
			}
			for _, st := range constants.Statuses() {
				_, _ = fmt.Fprintf(out, "- %s: %d\n", st, counts[st])
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", time.Second, "ping timeout")
	return cmd
}
