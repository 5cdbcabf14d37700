package cli

import (
	"errors"
	"io"

	"github.com/JonMunkholm/hostledger/internal/core"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// newTable returns a table writer rendering to w in the CLI's house style.
func newTable(w io.Writer, header ...any) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	t.AppendHeader(table.Row(header))
	return t
}

// truncate shortens s to max display columns with an ellipsis.
func truncate(s string, max int) string {
	if text.RuneWidthWithoutEscSequences(s) <= max {
		return s
	}
	return text.Trim(s, max-1) + "…"
}

// userError replaces err with its support message when one is known, so the
// terminal shows the code and suggested action. Unknown errors pass through
// untouched to keep their detail.
func userError(err error) error {
	if !core.IsUserFacing(err) {
		return err
	}
	return errors.New(core.FormatUserError(err))
}
