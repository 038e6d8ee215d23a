package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parqbench/parqbench/internal/testutil"
)

func TestRead(t *testing.T) {
	path := testutil.WriteSampleParquet(t, "sample.parquet", 25)

	md, err := Read(path)
	require.NoError(t, err)

	assert.Equal(t, int64(25), md.Rows)
	assert.GreaterOrEqual(t, md.RowGroups, 1)
	require.Len(t, md.Columns, 3)

	names := make([]string, 0, len(md.Columns))
	for _, c := range md.Columns {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"x", "y", "name"}, names)

	lines := md.Lines()
	require.Len(t, lines, 5)
	assert.Equal(t, "columns: 3", lines[3])
	assert.Equal(t, "rows: 25", lines[4])
	assert.Len(t, md.SchemaLines(), 3)
}

func TestRead_NotParquet(t *testing.T) {
	path := testutil.WriteCSV(t, "sample.csv", ";", []string{"a"}, [][]string{{"1"}})

	_, err := Read(path)
	require.ErrorIs(t, err, ErrNotParquet)
}

func TestRead_Missing(t *testing.T) {
	_, err := Read("/nonexistent/file.parquet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open")
}

func TestNilMetadata(t *testing.T) {
	var md *FileMetadata
	assert.Nil(t, md.Lines())
	assert.Nil(t, md.SchemaLines())
}
