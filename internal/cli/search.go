package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/mailib/mailib-server/internal/domain"
	"github.com/mailib/mailib-server/internal/service"
)

func (a *app) newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search Fantlab works, editions and the local catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := strings.Join(args, " ")

			return a.withContainer(func(i do.Injector) error {
				svc, err := do.Invoke[*service.SearchService](i)
				if err != nil {
					return err
				}
				res, err := svc.Search(cmd.Context(), q)
				if err != nil {
					return err
				}
				if a.settings.Output != outputText {
					return render(cmd.OutOrStdout(), a.settings.Output, res)
				}

				w := cmd.OutOrStdout()
				printHits(w, "Works", res.Books)
				printHits(w, "Editions", res.Editions)
				printHits(w, "Catalog", res.Inner)
				return nil
			})
		},
	}
}

func printHits(w io.Writer, title string, books []domain.Book) {
	header(w, "%s (%d)", title, len(books))
	for _, b := range books {
		id := b.ExternalID
		if id == "" {
			id = b.ID
		}
		line := fmt.Sprintf("  %-12s %s", color.YellowString(id), b.Name)
		if authors := joinNames(b.Authors, func(x domain.Author) string { return x.Name }); authors != "" {
			line += color.HiBlackString(" / " + authors)
		}
		fmt.Fprintln(w, line)
		if d := shortDescription(b.Description); d != "" {
			fmt.Fprintln(w, "               "+color.HiBlackString(d))
		}
	}
}
