package data

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Concat merges records into a single record with the first record's schema.
// The inputs are left untouched; the caller still owns them and the result.
func Concat(mem memory.Allocator, records []arrow.Record) (arrow.Record, error) {
	if len(records) == 0 {
		return nil, ErrNoBatches
	}
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	schema := records[0].Schema()
	var rows int64
	for i, rec := range records {
		if !rec.Schema().Equal(schema) {
			return nil, fmt.Errorf("%w: batch %d", ErrSchemaMismatch, i)
		}
		rows += rec.NumRows()
	}

	cols := make([]arrow.Array, len(schema.Fields()))
	defer func() {
		for _, c := range cols {
			if c != nil {
				c.Release()
			}
		}
	}()

	chunks := make([]arrow.Array, len(records))
	for i := range cols {
		for j, rec := range records {
			chunks[j] = rec.Column(i)
		}
		col, err := array.Concatenate(chunks, mem)
		if err != nil {
			return nil, fmt.Errorf("failed to concatenate column %s: %w", schema.Field(i).Name, err)
		}
		cols[i] = col
	}

	return array.NewRecord(schema, cols, rows), nil
}
