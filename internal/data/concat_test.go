package data

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Record(t *testing.T, mem memory.Allocator, name string, values ...int64) arrow.Record {
	t.Helper()
	schema := arrow.NewSchema([]arrow.Field{{Name: name, Type: arrow.PrimitiveTypes.Int64}}, nil)
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	b.Field(0).(*array.Int64Builder).AppendValues(values, nil)
	return b.NewRecord()
}

func TestConcat_Empty(t *testing.T) {
	_, err := Concat(memory.NewGoAllocator(), nil)
	require.ErrorIs(t, err, ErrNoBatches)
}

func TestConcat(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	a := int64Record(t, mem, "x", 1, 2, 3)
	b := int64Record(t, mem, "x", 4, 5)
	defer a.Release()
	defer b.Release()

	rec, err := Concat(mem, []arrow.Record{a, b})
	require.NoError(t, err)
	defer rec.Release()

	assert.Equal(t, int64(5), rec.NumRows())
	assert.True(t, rec.Schema().Equal(a.Schema()))
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, rec.Column(0).(*array.Int64).Int64Values())
}

func TestConcat_Single(t *testing.T) {
	mem := memory.NewGoAllocator()
	a := int64Record(t, mem, "x", 7, 8)
	defer a.Release()

	rec, err := Concat(mem, []arrow.Record{a})
	require.NoError(t, err)
	defer rec.Release()

	assert.Equal(t, int64(2), rec.NumRows())
}

func TestConcat_SchemaMismatch(t *testing.T) {
	mem := memory.NewGoAllocator()
	a := int64Record(t, mem, "x", 1)
	b := int64Record(t, mem, "y", 2)
	defer a.Release()
	defer b.Release()

	_, err := Concat(mem, []arrow.Record{a, b})
	require.ErrorIs(t, err, ErrSchemaMismatch)
}
