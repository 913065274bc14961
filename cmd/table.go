package cmd

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// newTable returns a borderless table writing to out.
func newTable(out io.Writer, header ...interface{}) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.SetStyle(table.StyleLight)
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateColumns = false
	tw.AppendHeader(table.Row(header))
	return tw
}
