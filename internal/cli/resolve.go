package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/mailib/mailib-server/internal/domain"
	"github.com/mailib/mailib-server/internal/errors"
	"github.com/mailib/mailib-server/internal/service"
)

func (a *app) newResolveCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "resolve <type> <id>",
		Short: "Resolve a book reference, importing it from Fantlab if needed",
		Long: `Resolve a book by (type, id). Type is fantlab_work, fantlab_edition or
inner_db_work; an internal uuid is accepted with any type.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := domain.ParseBookRef(args[0], args[1])
			if err != nil {
				return err
			}

			return a.withContainer(func(i do.Injector) error {
				books, err := do.Invoke[*service.BookService](i)
				if err != nil {
					return err
				}
				res, err := books.Resolve(cmd.Context(), ref, userID)
				if err != nil {
					return err
				}
				if res.Book == nil {
					return errors.NotFoundf("book %s/%s not found", args[0], args[1])
				}
				if a.settings.Output != outputText {
					return render(cmd.OutOrStdout(), a.settings.Output, res)
				}
				printBook(cmd.OutOrStdout(), res)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "Fill ownership and read flags for this user")
	return cmd
}

func printBook(w io.Writer, res *domain.ResolveResult) {
	b := res.Book
	header(w, "%s", b.Name)
	printField(w, "id", b.ID)
	printField(w, "type", string(b.Type))
	printField(w, "fantlab_id", b.ExternalID)
	printField(w, "authors", joinNames(b.Authors, func(x domain.Author) string { return x.Name }))
	printField(w, "genres", joinNames(b.Genres, func(x domain.Genre) string { return x.Name }))
	printField(w, "cycles", joinNames(b.Cycles, func(x domain.Cycle) string { return x.Name }))
	printField(w, "isbn", b.ISBNList)
	printField(w, "description", b.Description)
	if res.Imported {
		printField(w, "imported", color.GreenString("yes"))
	}
	for _, iw := range res.ImportWarnings {
		warn(w, "%s: %s", iw.Kind, iw.Message)
	}
}

func joinNames[T any](items []T, name func(T) string) string {
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, name(it))
	}
	return strings.Join(names, ", ")
}

func shortDescription(s string) string {
	const limit = 60
	r := []rune(strings.Join(strings.Fields(s), " "))
	if len(r) <= limit {
		return string(r)
	}
	return fmt.Sprintf("%s…", string(r[:limit]))
}
