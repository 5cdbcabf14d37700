package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/JonMunkholm/hostledger/internal/core"
	"github.com/JonMunkholm/hostledger/internal/store/sqlite"
	"github.com/spf13/cobra"
)

func validateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <earnings|expenses> <file.csv>",
		Short: "Validate a CSV without storing anything",
		Long: `Validate every row of a CSV and list the rejected rows with their errors.

Expense categories are read from the ledger when it exists, otherwise the
default category set is used.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := core.ColumnSpecFor(core.ImportType(args[0]))
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}

			var categories []core.Category
			if spec.ImportType == core.ImportExpenses {
				if categories, err = loadCategories(cmd, opts); err != nil {
					return err
				}
			}

			validator := core.NewTabularValidator(core.TabularConfig{Split: opts.splitMode()})
			res, err := validator.Validate(core.SanitizeText(data), spec, categories)
			if err != nil {
				return fmt.Errorf("%s: %w", args[1], err)
			}

			printValidation(cmd.OutOrStdout(), args[1], res.Total, len(res.Accepted), res.Rejected)
			if len(res.Rejected) > 0 {
				return fmt.Errorf("%d of %d rows rejected", len(res.Rejected), res.Total)
			}
			return nil
		},
	}
}

// loadCategories reads the ledger's categories, or the defaults when no
// ledger file exists yet.
func loadCategories(cmd *cobra.Command, opts *options) ([]core.Category, error) {
	if _, err := os.Stat(opts.dbPath); os.IsNotExist(err) {
		cats := make([]core.Category, len(sqlite.DefaultCategories))
		for i, name := range sqlite.DefaultCategories {
			cats[i] = core.Category{ID: name, Name: name}
		}
		return cats, nil
	}

	store, err := opts.openStore(cmd.Context())
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.Categories(cmd.Context())
}

func printValidation(w io.Writer, name string, total, valid int, rejected []core.RejectedRow) {
	fmt.Fprintf(w, "%s: %d rows, %d valid, %d rejected\n", name, total, valid, len(rejected))
	if len(rejected) == 0 {
		return
	}

	t := newTable(w, "Row", "Data", "Errors")
	for _, r := range rejected {
		t.AppendRow([]any{r.Row, truncate(r.Data, 50), strings.Join(r.Errors, "\n")})
	}
	t.Render()
}
