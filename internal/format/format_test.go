package format

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicy_Column(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name  string
		field arrow.Field
		want  Column
	}{
		{name: "float", field: arrow.Field{Name: "price", Type: arrow.PrimitiveTypes.Float64}, want: Column{Decimals: 2, Align: AlignRight}},
		{name: "float32", field: arrow.Field{Name: "ratio", Type: arrow.PrimitiveTypes.Float32}, want: Column{Decimals: 2, Align: AlignRight}},
		{name: "high precision", field: arrow.Field{Name: "Alíquota ICMS", Type: arrow.PrimitiveTypes.Float64}, want: Column{Decimals: 4, Align: AlignCenter}},
		{name: "integer", field: arrow.Field{Name: "id", Type: arrow.PrimitiveTypes.Int64}, want: Column{Align: AlignCenter}},
		{name: "unsigned", field: arrow.Field{Name: "n", Type: arrow.PrimitiveTypes.Uint8}, want: Column{Align: AlignCenter}},
		{name: "string", field: arrow.Field{Name: "Alíquota", Type: arrow.BinaryTypes.String}, want: Column{Align: AlignLeft}},
		{name: "bool", field: arrow.Field{Name: "ok", Type: arrow.FixedWidthTypes.Boolean}, want: Column{Align: AlignLeft}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Column(tt.field))
		})
	}
}

func TestPolicy_NoMarker(t *testing.T) {
	p := Policy{}
	got := p.Column(arrow.Field{Name: "Alíquota", Type: arrow.PrimitiveTypes.Float64})
	assert.Equal(t, Column{Decimals: 2, Align: AlignRight}, got)
}

func TestRow(t *testing.T) {
	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "price", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: "Alíquota", Type: arrow.PrimitiveTypes.Float64},
		{Name: "name", Type: arrow.BinaryTypes.String},
	}, nil)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	b.Field(0).(*array.Int64Builder).AppendValues([]int64{1, 2}, nil)
	b.Field(1).(*array.Float64Builder).AppendValues([]float64{3.14159, 0}, []bool{true, false})
	b.Field(2).(*array.Float64Builder).AppendValues([]float64{0.123456, 1}, nil)
	b.Field(3).(*array.StringBuilder).AppendValues([]string{"a", "b"}, nil)
	rec := b.NewRecord()
	defer rec.Release()

	cols := DefaultPolicy().Columns(schema)
	require.Len(t, cols, 4)

	assert.Equal(t, []string{"1", "3.14", "0.1235", "a"}, Row(rec, cols, 0))
	assert.Equal(t, []string{"2", "", "1.0000", "b"}, Row(rec, cols, 1))
}

func TestCount(t *testing.T) {
	assert.Equal(t, "0", Count(0))
	assert.Equal(t, "999", Count(999))
	assert.Equal(t, "1,234,567", Count(1234567))
}
