package cli

import (
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/mailib/mailib-server/internal/service"
)

func (a *app) newReconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Re-import authors, genres and cycles of partially imported books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withContainer(func(i do.Injector) error {
				svc, err := do.Invoke[*service.ReconcileService](i)
				if err != nil {
					return err
				}
				report, err := svc.Run(cmd.Context())
				if err != nil {
					return err
				}
				if a.settings.Output != outputText {
					return render(cmd.OutOrStdout(), a.settings.Output, report)
				}

				w := cmd.OutOrStdout()
				ok(w, "scanned %d, repaired %d", report.Scanned, report.Repaired)
				if report.Failed > 0 {
					warn(w, "%d books could not be repaired, rerun with --log-level warn for details", report.Failed)
				}
				return nil
			})
		},
	}
}

func (a *app) newReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the search index from the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withContainer(func(i do.Injector) error {
				svc, err := do.Invoke[*service.ReconcileService](i)
				if err != nil {
					return err
				}
				n, err := svc.Reindex(cmd.Context())
				if err != nil {
					return err
				}
				if a.settings.Output != outputText {
					return render(cmd.OutOrStdout(), a.settings.Output, map[string]int{"indexed": n})
				}
				ok(cmd.OutOrStdout(), "indexed %d books", n)
				return nil
			})
		},
	}
}
