package cli

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/JonMunkholm/hostledger/internal/core"
	"github.com/spf13/cobra"
)

func classifyCmd(opts *options) *cobra.Command {
	var store bool

	cmd := &cobra.Command{
		Use:   "classify <file.eml>...",
		Short: "Classify email files against the rule table",
		Long: `Classify one or more .eml files and print the matched rule and extracted fields.

With --store, matched messages are normalized and written to the ledger the
same way the webhook does.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if store {
				return classifyAndStore(cmd, opts, args)
			}

			table, err := opts.loadRules()
			if err != nil {
				return err
			}
			classifier := core.NewClassifier(table)

			for _, path := range args {
				msg, err := readEML(path)
				if err != nil {
					return err
				}
				c, ok := classifier.Classify(msg)
				printClassification(cmd.OutOrStdout(), path, msg, c, ok)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&store, "store", false, "store matched messages in the ledger")
	return cmd
}

func classifyAndStore(cmd *cobra.Command, opts *options, paths []string) error {
	ctx := cmd.Context()
	store, err := opts.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	svc, err := opts.newService(store)
	if err != nil {
		return err
	}

	t := newTable(cmd.OutOrStdout(), "File", "Rule", "Collection", "Result")
	var failed int
	for _, path := range paths {
		msg, err := readEML(path)
		if err != nil {
			return err
		}
		out, err := svc.IngestEmail(ctx, msg)
		result := "stored"
		switch {
		case err != nil:
			failed++
			result = userError(err).Error()
		case !out.Success:
			result = out.Message
		}
		t.AppendRow([]any{path, out.RuleName, out.Collection, result})
	}
	t.Render()

	if failed > 0 {
		return fmt.Errorf("%d of %d messages could not be stored", failed, len(paths))
	}
	return nil
}

func readEML(path string) (core.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.RawMessage{}, err
	}
	defer f.Close()

	msg, err := ParseEML(f)
	if err != nil {
		return core.RawMessage{}, fmt.Errorf("%s: %w", path, err)
	}
	return msg, nil
}

func printClassification(w io.Writer, path string, msg core.RawMessage, c core.Classification, ok bool) {
	fmt.Fprintf(w, "%s\n  from:    %s\n  subject: %s\n", path, msg.From, msg.Subject)
	if !ok {
		fmt.Fprintf(w, "  result:  %s\n\n", core.NoMatchMessage)
		return
	}
	fmt.Fprintf(w, "  rule:    %s -> %s\n", c.RuleName, c.Collection)

	names := make([]string, 0, len(c.Fields))
	for name := range c.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	t := newTable(w, "Field", "Value")
	for _, name := range names {
		t.AppendRow([]any{name, truncate(c.Fields[name], 60)})
	}
	t.Render()
	fmt.Fprintln(w)
}
