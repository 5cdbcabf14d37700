package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func rulesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List classification rules in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table, err := opts.loadRules()
			if err != nil {
				return err
			}

			t := newTable(cmd.OutOrStdout(), "#", "Rule", "Collection", "Min", "Fields")
			for i, r := range table {
				names := make([]string, len(r.Fields))
				for j, f := range r.Fields {
					names[j] = f.Name
				}
				t.AppendRow([]any{i + 1, r.Name, r.Collection, r.MinMatches, strings.Join(names, ", ")})
			}
			t.Render()
			return nil
		},
	}
}
