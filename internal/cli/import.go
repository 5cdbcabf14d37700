package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/hostledger/internal/core"
	"github.com/spf13/cobra"
)

func importCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import <earnings|expenses> <file.csv>",
		Short: "Validate a CSV and store its valid rows in the ledger",
		Long: `Validate a CSV and store the accepted rows in one batch.

Rejected rows are listed and recorded in the import log; they do not stop
the valid rows from being stored.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			importType := core.ImportType(args[0])
			if _, err := core.ColumnSpecFor(importType); err != nil {
				return err
			}
			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}

			store, err := opts.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			svc, err := opts.newService(store)
			if err != nil {
				return err
			}

			res, err := svc.Import(cmd.Context(), importType, filepath.Base(args[1]), data)
			if err != nil {
				return userError(err)
			}

			printValidation(cmd.OutOrStdout(), res.FileName, res.TotalRows, res.ValidRows, res.ErrorRecords)
			fmt.Fprintf(cmd.OutOrStdout(), "stored %d %s records\n", res.ValidRows, importType)
			return nil
		},
	}
}
