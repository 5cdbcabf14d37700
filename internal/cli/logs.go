package cli

import (
	"fmt"
	"time"

	"github.com/JonMunkholm/hostledger/internal/core"
	"github.com/spf13/cobra"
)

func logsCmd(opts *options) *cobra.Command {
	var (
		importType string
		limit      int
		purgeDays  int
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent import attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			audit := core.NewAuditService(store, nil)
			if purgeDays > 0 {
				n, err := audit.Purge(ctx, time.Duration(purgeDays)*24*time.Hour)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "purged %d entries older than %d days\n", n, purgeDays)
				return nil
			}

			entries, err := audit.List(ctx, core.AuditFilter{ImportType: core.ImportType(importType), Limit: limit})
			if err != nil {
				return err
			}

			t := newTable(cmd.OutOrStdout(), "When", "Type", "File", "Total", "OK", "Failed", "First error")
			for _, e := range entries {
				var first string
				if len(e.Errors) > 0 {
					first = truncate(e.Errors[0].Message, 50)
				}
				t.AppendRow([]any{
					e.CreatedAt.Local().Format(time.DateTime),
					e.ImportType,
					truncate(e.FileName, 30),
					e.TotalRecords,
					e.SuccessfulRecords,
					e.FailedRecords,
					first,
				})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&importType, "type", "", "only show earnings, expenses, or email attempts")
	cmd.Flags().IntVar(&limit, "limit", core.DefaultAuditListLimit, "maximum entries to show")
	cmd.Flags().IntVar(&purgeDays, "purge", 0, "delete entries older than this many days instead of listing")
	return cmd
}
