package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func categoriesCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage expense categories",
	}
	cmd.AddCommand(categoriesListCmd(opts), categoriesAddCmd(opts))
	return cmd
}

func categoriesListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List expense categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := opts.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			cats, err := store.Categories(cmd.Context())
			if err != nil {
				return err
			}
			t := newTable(cmd.OutOrStdout(), "Name", "ID")
			for _, c := range cats {
				t.AppendRow([]any{c.Name, c.ID})
			}
			t.Render()
			return nil
		},
	}
}

func categoriesAddCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Add an expense category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			c, err := store.AddCategory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", c.Name, c.ID)
			return nil
		},
	}
}
