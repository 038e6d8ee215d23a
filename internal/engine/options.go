package engine

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnknownFormat is returned when a path has no extension the engine can read.
var ErrUnknownFormat = errors.New("unrecognized file extension")

// Format identifies how a file is scanned.
type Format int

const (
	// FormatParquet scans with read_parquet.
	FormatParquet Format = iota
	// FormatCSV scans with read_csv.
	FormatCSV
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatParquet:
		return "parquet"
	case FormatCSV:
		return "csv"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// ReadOptions describe how a file is scanned into a table.
type ReadOptions struct {
	Format    Format
	Delimiter rune
}

// DefaultDelimiter is the CSV field separator used when none is configured.
const DefaultDelimiter = ';'

// DetectReadOptions picks read options from the file extension.
// delim is used for CSV files; zero selects DefaultDelimiter.
func DetectReadOptions(path string, delim rune) (ReadOptions, error) {
	if delim == 0 {
		delim = DefaultDelimiter
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet", ".parq", ".pq":
		return ReadOptions{Format: FormatParquet}, nil
	case ".csv", ".txt":
		return ReadOptions{Format: FormatCSV, Delimiter: delim}, nil
	case ".tsv":
		return ReadOptions{Format: FormatCSV, Delimiter: '\t'}, nil
	default:
		return ReadOptions{}, fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
}

// ScanSQL returns a SELECT that scans path with these options.
func (o ReadOptions) ScanSQL(path string) string {
	switch o.Format {
	case FormatCSV:
		delim := o.Delimiter
		if delim == 0 {
			delim = DefaultDelimiter
		}
		return fmt.Sprintf("SELECT * FROM read_csv(%s, delim = %s, header = true)",
			QuoteLiteral(path), QuoteLiteral(string(delim)))
	default:
		return fmt.Sprintf("SELECT * FROM read_parquet(%s)", QuoteLiteral(path))
	}
}

// QuoteIdent quotes an identifier for DuckDB.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteLiteral quotes a string literal for DuckDB.
func QuoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
