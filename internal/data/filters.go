// Package data loads Parquet and CSV files into in-memory Arrow datasets.
//
// The Pipeline functions are the only producers of Datasets: Load scans a whole file,
// LoadWithQuery registers the file as a table and runs SQL against it, and Sort
// re-orders an existing dataset by one column. All of them run synchronously; callers
// that need them off the UI goroutine go through the scheduler package.
package data

import "fmt"

// DefaultTableName is the table a file is registered under when Filters.TableName is empty.
const DefaultTableName = "main"

// SortOrder is the direction of a column sort.
type SortOrder int

const (
	// NotSorted leaves the dataset in scan order.
	NotSorted SortOrder = iota
	// Ascending sorts smallest first.
	Ascending
	// Descending sorts largest first.
	Descending
)

// String returns the order name.
func (o SortOrder) String() string {
	switch o {
	case NotSorted:
		return "not sorted"
	case Ascending:
		return "ascending"
	case Descending:
		return "descending"
	default:
		return fmt.Sprintf("SortOrder(%d)", int(o))
	}
}

// SortState is a column together with its sort order.
type SortState struct {
	Column string
	Order  SortOrder
}

// Filters describe how a dataset was derived from its source file.
type Filters struct {
	TableName string
	Query     string
	Sort      *SortState
}

// TableNameOrDefault returns the table name, falling back to DefaultTableName.
func (f Filters) TableNameOrDefault() string {
	if f.TableName == "" {
		return DefaultTableName
	}
	return f.TableName
}

// HasQuery reports whether a SQL query is set.
func (f Filters) HasQuery() bool {
	return f.Query != ""
}

// WithSort returns a copy of f with sort replaced.
func (f Filters) WithSort(sort *SortState) Filters {
	if sort != nil {
		s := *sort
		sort = &s
	}
	f.Sort = sort
	return f
}
