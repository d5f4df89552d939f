package report

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

var header = table.Row{"Name", "Perf. feat", "Perf. secure", "Reh. feat", "Reh. secure", "Total"}

// Render prints the rows as a table.
func Render(w io.Writer, title string, rows []Row) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.AppendHeader(header)
	for _, r := range rows {
		t.AppendRow(table.Row{r.Name, r.Counts[0], r.Counts[1], r.Counts[2], r.Counts[3], r.Total()})
	}
	t.Render()
}
