package commands

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/parqbench/parqbench/internal/data"
	"github.com/parqbench/parqbench/internal/format"
	"github.com/parqbench/parqbench/internal/metadata"
)

// RenderOptions control plain-text dataset rendering.
type RenderOptions struct {
	Policy  format.Policy
	MaxRows int
}

// renderDataset writes ds as a table followed by a row/column count.
func renderDataset(w io.Writer, ds *data.Dataset, opts RenderOptions) {
	names := ds.ColumnNames()
	cols := opts.Policy.Columns(ds.Schema())

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(plainStyle())

	headerRow := make(table.Row, len(names))
	configs := make([]table.ColumnConfig, len(names))
	for j, name := range names {
		headerRow[j] = data.SortFor(ds.Filters.Sort, name).Label()
		configs[j] = table.ColumnConfig{Number: j + 1, Align: textAlign(cols[j].Align)}
	}
	t.AppendHeader(headerRow)
	t.SetColumnConfigs(configs)

	n := ds.NumRows()
	if opts.MaxRows > 0 && n > int64(opts.MaxRows) {
		n = int64(opts.MaxRows)
	}
	for i := 0; i < int(n); i++ {
		cells := format.Row(ds.Record, cols, i)
		row := make(table.Row, len(cells))
		for j, c := range cells {
			row[j] = c
		}
		t.AppendRow(row)
	}

	t.Render()

	footer := fmt.Sprintf("(%s rows × %d cols", format.Count(ds.NumRows()), ds.NumCols())
	if n < ds.NumRows() {
		footer += fmt.Sprintf(", showing first %s", format.Count(n))
	}
	_, _ = fmt.Fprintln(w, footer+")")
}

// plainStyle is StyleLight without upper-cased headers, so column names print as stored.
func plainStyle() table.Style {
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	return style
}

func textAlign(a format.Alignment) text.Align {
	switch a {
	case format.AlignRight:
		return text.AlignRight
	case format.AlignCenter:
		return text.AlignCenter
	default:
		return text.AlignLeft
	}
}

// renderSchema writes one line per column with its Arrow type.
func renderSchema(w io.Writer, ds *data.Dataset) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(plainStyle())
	t.AppendHeader(table.Row{"column", "type", "nullable"})
	for _, f := range ds.Schema().Fields() {
		t.AppendRow(table.Row{f.Name, f.Type.String(), f.Nullable})
	}
	t.Render()
}

// renderMetadata writes the parquet footer summary, or a note when there is none.
func renderMetadata(w io.Writer, md *metadata.FileMetadata) {
	if md == nil {
		_, _ = fmt.Fprintln(w, "(no file metadata)")
		return
	}
	for _, line := range md.Lines() {
		_, _ = fmt.Fprintln(w, line)
	}
	_, _ = fmt.Fprintln(w)
	for _, line := range md.SchemaLines() {
		_, _ = fmt.Fprintln(w, line)
	}
}
