package cli

import (
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/mailib/mailib-server/internal/service"
)

func (a *app) newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the Fantlab detail cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Drop every cached work and edition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withContainer(func(i do.Injector) error {
				svc, err := do.Invoke[*service.MetadataService](i)
				if err != nil {
					return err
				}
				if err := svc.PurgeCache(); err != nil {
					return err
				}
				if a.settings.Output != outputText {
					return render(cmd.OutOrStdout(), a.settings.Output, map[string]bool{"purged": true})
				}
				ok(cmd.OutOrStdout(), "cache purged")
				return nil
			})
		},
	})
	return cmd
}
