// Package metadata summarizes the footer of a Parquet file.
package metadata

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// ErrNotParquet is returned when the file isn't a readable parquet file.
var ErrNotParquet = errors.New("not a parquet file")

// Column describes one leaf column of the file schema.
type Column struct {
	Name     string
	Physical string
	Logical  string
	Optional bool
}

// FileMetadata is the footer summary shown next to a loaded dataset.
type FileMetadata struct {
	Version   int32
	CreatedBy string
	RowGroups int
	Rows      int64
	Columns   []Column
}

// Read opens path and summarizes its parquet footer.
func Read(path string) (*FileMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotParquet, path, err)
	}

	md := pf.Metadata()
	out := &FileMetadata{
		Version:   md.Version,
		CreatedBy: md.CreatedBy,
		RowGroups: len(md.RowGroups),
		Rows:      md.NumRows,
	}

	schema := pf.Schema()
	for _, colPath := range schema.Columns() {
		leaf, ok := schema.Lookup(colPath...)
		if !ok {
			continue
		}
		typ := leaf.Node.Type()
		out.Columns = append(out.Columns, Column{
			Name:     strings.Join(colPath, "."),
			Physical: typ.Kind().String(),
			Logical:  typ.String(),
			Optional: leaf.Node.Optional(),
		})
	}

	return out, nil
}

// Lines renders the summary as "label: value" lines.
func (m *FileMetadata) Lines() []string {
	if m == nil {
		return nil
	}
	return []string{
		fmt.Sprintf("version: %d", m.Version),
		fmt.Sprintf("created by: %s", m.CreatedBy),
		fmt.Sprintf("row groups: %d", m.RowGroups),
		fmt.Sprintf("columns: %d", len(m.Columns)),
		fmt.Sprintf("rows: %d", m.Rows),
	}
}

// SchemaLines renders one "name: type" line per column.
func (m *FileMetadata) SchemaLines() []string {
	if m == nil {
		return nil
	}
	lines := make([]string, 0, len(m.Columns))
	for _, c := range m.Columns {
		typ := c.Physical
		if c.Logical != "" && c.Logical != c.Physical {
			typ = fmt.Sprintf("%s (%s)", c.Logical, c.Physical)
		}
		if c.Optional {
			typ += " optional"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", c.Name, typ))
	}
	return lines
}
