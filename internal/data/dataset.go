package data

import (
	"sync/atomic"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/parqbench/parqbench/internal/engine"
	"github.com/parqbench/parqbench/internal/metadata"
)

// Dataset is a materialized view of a file: one Arrow record plus the filters that
// produced it. Datasets are immutable; sorting yields a new Dataset.
//
// A Dataset holds a reference to its record and to the engine session it was
// queried from. Every Dataset returned by the pipeline is owned by the caller,
// who must Release it.
type Dataset struct {
	Path     string
	Record   arrow.Record
	Filters  Filters
	Metadata *metadata.FileMetadata

	session *engine.Session
	plan    string
	refs    atomic.Int32
}

func newDataset(path string, rec arrow.Record, filters Filters, session *engine.Session, plan string) *Dataset {
	ds := &Dataset{
		Path:    path,
		Record:  rec,
		Filters: filters,
		session: session,
		plan:    plan,
	}
	ds.refs.Store(1)
	return ds
}

// Retain adds a reference.
func (d *Dataset) Retain() {
	d.refs.Add(1)
}

// Release drops a reference, freeing the record and session when none remain.
func (d *Dataset) Release() {
	if d.refs.Add(-1) != 0 {
		return
	}
	if d.Record != nil {
		d.Record.Release()
	}
	if d.session != nil {
		d.session.Release()
	}
}

// NumRows returns the row count.
func (d *Dataset) NumRows() int64 {
	return d.Record.NumRows()
}

// NumCols returns the column count.
func (d *Dataset) NumCols() int {
	return int(d.Record.NumCols())
}

// Schema returns the record schema.
func (d *Dataset) Schema() *arrow.Schema {
	return d.Record.Schema()
}

// ColumnNames returns the column names in schema order.
func (d *Dataset) ColumnNames() []string {
	fields := d.Record.Schema().Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// HasColumn reports whether the schema contains name.
func (d *Dataset) HasColumn(name string) bool {
	return len(d.Record.Schema().FieldIndices(name)) > 0
}

// Plan returns the SQL that produced the record.
func (d *Dataset) Plan() string {
	return d.plan
}
