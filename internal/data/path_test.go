package data

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PARQBENCH_TEST_DIR", "/srv/data")

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "absolute", in: "/tmp/a.parquet", want: "/tmp/a.parquet"},
		{name: "relative", in: "a.parquet", want: "a.parquet"},
		{name: "tilde", in: "~", want: home},
		{name: "tilde slash", in: "~/a.parquet", want: filepath.Join(home, "a.parquet")},
		{name: "tilde user untouched", in: "~bob/a.parquet", want: "~bob/a.parquet"},
		{name: "var", in: "$PARQBENCH_TEST_DIR/a.csv", want: "/srv/data/a.csv"},
		{name: "braced var", in: "${PARQBENCH_TEST_DIR}/a.csv", want: "/srv/data/a.csv"},
		{name: "undefined var", in: "$PARQBENCH_TEST_UNDEFINED/a.csv", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandPath(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "PARQBENCH_TEST_UNDEFINED")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
