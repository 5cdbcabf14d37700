// Package cli implements the hostledger command line: offline email
// classification and CSV validation, plus imports into a local SQLite ledger.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/JonMunkholm/hostledger/internal/core"
	_ "github.com/JonMunkholm/hostledger/internal/core/collections"
	"github.com/JonMunkholm/hostledger/internal/core/rules"
	"github.com/JonMunkholm/hostledger/internal/logging"
	"github.com/JonMunkholm/hostledger/internal/store/sqlite"
	"github.com/spf13/cobra"
)

// options holds the persistent flags shared by every command.
type options struct {
	dbPath     string
	rulesFile  string
	logLevel   string
	logFormat  string
	naiveSplit bool
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "hostledger",
		Short: "Classify booking emails and import CSV ledgers",
		Long: `hostledger turns rental-platform emails and CSV exports into ledger records.

Emails are classified against an ordered rule table; CSV files are validated
row by row before the accepted rows are stored.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), opts.logLevel, opts.logFormat))
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.dbPath, "db", envOr("HOSTLEDGER_DB", "hostledger.db"), "SQLite ledger file")
	flags.StringVar(&opts.rulesFile, "rules", os.Getenv("INGEST_RULES_FILE"), "YAML rule table (default: built-in rules)")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flags.StringVar(&opts.logFormat, "log-format", "text", "log format (text, json)")
	flags.BoolVar(&opts.naiveSplit, "naive-split", false, "split CSV lines on every comma, ignoring quotes")

	cmd.AddCommand(
		classifyCmd(opts),
		validateCmd(opts),
		importCmd(opts),
		rulesCmd(opts),
		logsCmd(opts),
		categoriesCmd(opts),
	)
	return cmd
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (o *options) loadRules() ([]core.ClassificationRule, error) {
	if o.rulesFile == "" {
		return rules.Default()
	}
	return rules.Load(o.rulesFile)
}

func (o *options) splitMode() core.SplitMode {
	if o.naiveSplit {
		return core.SplitNaive
	}
	return core.SplitQuoted
}

// openStore opens the ledger; the caller closes it.
func (o *options) openStore(ctx context.Context) (*sqlite.Store, error) {
	store, err := sqlite.Open(ctx, o.dbPath)
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", o.dbPath, err)
	}
	return store, nil
}

// newService wires the pipeline over store.
func (o *options) newService(store *sqlite.Store) (*core.Service, error) {
	table, err := o.loadRules()
	if err != nil {
		return nil, err
	}
	return core.NewService(store, store, table, core.ServiceConfig{Split: o.splitMode()}), nil
}
