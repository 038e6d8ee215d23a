// Package testutil provides test loggers and data file fixtures.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"
)

// SampleRow is the row layout of the sample parquet fixture.
type SampleRow struct {
	X    int64   `parquet:"x"`
	Y    float64 `parquet:"y"`
	Name string  `parquet:"name"`
}

// SampleRows returns n rows with x = 0..n-1, y = x/2 and name = "row-<x>".
func SampleRows(n int) []SampleRow {
	rows := make([]SampleRow, n)
	for i := range rows {
		rows[i] = SampleRow{
			X:    int64(i),
			Y:    float64(i) / 2,
			Name: fmt.Sprintf("row-%d", i),
		}
	}
	return rows
}

// WriteSampleParquet writes n sample rows to a parquet file under t.TempDir()
// and returns its path.
func WriteSampleParquet(t testing.TB, name string, n int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := parquet.WriteFile(path, SampleRows(n)); err != nil {
		t.Fatalf("failed to write parquet fixture: %v", err)
	}
	return path
}

// WriteCSV writes header and rows joined by delim to a file under t.TempDir()
// and returns its path.
func WriteCSV(t testing.TB, name string, delim string, header []string, rows [][]string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString(strings.Join(header, delim))
	b.WriteByte('\n')
	for _, row := range rows {
		b.WriteString(strings.Join(row, delim))
		b.WriteByte('\n')
	}

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		t.Fatalf("failed to write csv fixture: %v", err)
	}
	return path
}
