// Package report renders view frames as text tables and writes them to files.
package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pivolan/marathon_analyzer/domain/models"
)

// Table renders df as a boxed text table. Floats get three decimals.
func Table(df dataframe.DataFrame) string {
	t := newWriter(df)
	t.SetStyle(table.StyleDefault)
	return t.Render()
}

// Markdown renders df as a markdown table.
func Markdown(df dataframe.DataFrame) string {
	return newWriter(df).RenderMarkdown()
}

// TitledTable is Table with a caption line, used for console output.
func TitledTable(title string, df dataframe.DataFrame) string {
	t := newWriter(df)
	t.SetTitle(title)
	t.SetStyle(table.StyleDefault)
	return t.Render()
}

// ExclusionTable lists why records were dropped or left out of views.
func ExclusionTable(loaded, kept int, counts []models.ExclusionCount) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"reason", "count"})
	for _, c := range counts {
		t.AppendRow(table.Row{string(c.Reason), c.Count})
	}
	t.AppendFooter(table.Row{fmt.Sprintf("kept %d of", kept), loaded})
	t.SetStyle(table.StyleDefault)
	return t.Render()
}

func newWriter(df dataframe.DataFrame) table.Writer {
	t := table.NewWriter()
	names := df.Names()

	header := make(table.Row, len(names))
	for i, name := range names {
		header[i] = name
	}
	t.AppendHeader(header)

	cols := make([]series.Series, len(names))
	for i, name := range names {
		cols[i] = df.Col(name)
	}
	for row := 0; row < df.Nrow(); row++ {
		r := make(table.Row, len(cols))
		for i, col := range cols {
			r[i] = cell(col, row)
		}
		t.AppendRow(r)
	}
	return t
}

func cell(col series.Series, row int) string {
	e := col.Elem(row)
	if e.IsNA() {
		return ""
	}
	if col.Type() == series.Float {
		v := e.Float()
		if math.IsInf(v, 0) {
			return ""
		}
		return strconv.FormatFloat(v, 'f', 3, 64)
	}
	return strings.TrimSpace(e.String())
}
