// Package format renders Arrow cell values as display strings.
package format

import (
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultHighPrecisionMarker marks float columns that need extra decimals.
const DefaultHighPrecisionMarker = "Alíquota"

// Alignment is the horizontal placement of a cell.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

// Policy decides how each column is formatted.
type Policy struct {
	// HighPrecisionMarker selects float columns rendered with 4 decimals.
	// Empty disables high precision.
	HighPrecisionMarker string
}

// DefaultPolicy returns the policy with the default marker.
func DefaultPolicy() Policy {
	return Policy{HighPrecisionMarker: DefaultHighPrecisionMarker}
}

// Column is the resolved formatting for one column.
type Column struct {
	Decimals int
	Align    Alignment
}

// Column resolves the formatting for a field.
func (p Policy) Column(field arrow.Field) Column {
	switch {
	case arrow.IsFloating(field.Type.ID()):
		if p.highPrecision(field.Name) {
			return Column{Decimals: 4, Align: AlignCenter}
		}
		return Column{Decimals: 2, Align: AlignRight}
	case arrow.IsInteger(field.Type.ID()):
		return Column{Align: AlignCenter}
	default:
		return Column{Align: AlignLeft}
	}
}

// Columns resolves every field of schema.
func (p Policy) Columns(schema *arrow.Schema) []Column {
	fields := schema.Fields()
	cols := make([]Column, len(fields))
	for i, f := range fields {
		cols[i] = p.Column(f)
	}
	return cols
}

func (p Policy) highPrecision(name string) bool {
	return p.HighPrecisionMarker != "" && strings.Contains(name, p.HighPrecisionMarker)
}

// Value renders row i of arr. Nulls render as an empty string.
func (c Column) Value(arr arrow.Array, i int) string {
	if arr.IsNull(i) {
		return ""
	}
	switch a := arr.(type) {
	case *array.Float64:
		return strconv.FormatFloat(a.Value(i), 'f', c.Decimals, 64)
	case *array.Float32:
		return strconv.FormatFloat(float64(a.Value(i)), 'f', c.Decimals, 32)
	case *array.Float16:
		return strconv.FormatFloat(float64(a.Value(i).Float32()), 'f', c.Decimals, 32)
	default:
		return arr.ValueStr(i)
	}
}

// Row renders row i of rec using cols.
func Row(rec arrow.Record, cols []Column, i int) []string {
	out := make([]string, len(cols))
	for j, c := range cols {
		out[j] = c.Value(rec.Column(j), i)
	}
	return out
}

var printer = message.NewPrinter(language.English)

// Count renders n with thousands separators.
func Count(n int64) string {
	return printer.Sprintf("%d", n)
}
