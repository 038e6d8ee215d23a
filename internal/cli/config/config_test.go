package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory with no user config.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("HOME", dir)
	ResetConfig()
	return dir
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.StringP("delimiter", "d", DefaultDelimiter, "")
	fs.StringP("filename", "f", "", "")
	fs.StringP("query", "q", "", "")
	fs.StringP("table-name", "t", DefaultTableName, "")
	fs.BoolP("verbose", "v", false, "")
	fs.String("log-file", "", "")
	fs.Bool("watch", false, "")
	fs.Bool("print", false, "")
	fs.Bool("no-color", false, "")
	return fs
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig("", testFlags())
	require.NoError(t, err)

	assert.Equal(t, DefaultTableName, cfg.TableName)
	assert.Equal(t, DefaultDelimiter, cfg.Delimiter)
	assert.Equal(t, ';', cfg.DelimiterRune())
	assert.Empty(t, cfg.Filename)
	assert.Empty(t, cfg.Query)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, "Alíquota", cfg.Format.HighPrecisionMarker)
	assert.Equal(t, DefaultMaxRows, cfg.Format.MaxRows)
	assert.Empty(t, GetConfigFileUsed())
}

func TestLoadConfig_File(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "parqbench.yaml"), []byte(`
delimiter: ","
watch: true
engine:
  threads: 2
  memory_limit: 1GB
format:
  high_precision_marker: Rate
`), 0o600))

	cfg, err := LoadConfig("", testFlags())
	require.NoError(t, err)

	assert.Equal(t, "parqbench.yaml", GetConfigFileUsed())
	assert.Equal(t, ',', cfg.DelimiterRune())
	assert.True(t, cfg.Watch)
	assert.Equal(t, 2, cfg.Engine.Threads)
	assert.Equal(t, "1GB", cfg.Engine.MemoryLimit)
	assert.Equal(t, "Rate", cfg.FormatPolicy().HighPrecisionMarker)
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 3\n"), 0o600))

	cfg, err := LoadConfig(path, testFlags())
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, path, GetConfigFileUsed())
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	dir := isolate(t)

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"), testFlags())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "parqbench.yaml"), []byte("delimiter: \",\"\nworkers: 1\n"), 0o600))
	t.Setenv("PARQBENCH_DELIMITER", "|")
	t.Setenv("PARQBENCH_ENGINE__THREADS", "4")

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"-d", "\t"}))

	cfg, err := LoadConfig("", fs)
	require.NoError(t, err)

	// flag > env > file
	assert.Equal(t, '\t', cfg.DelimiterRune())
	assert.Equal(t, 4, cfg.Engine.Threads)
	assert.Equal(t, 1, cfg.Workers)
}

func TestLoadConfig_UnchangedFlagsKeepFileValues(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "parqbench.yaml"), []byte("delimiter: \",\"\n"), 0o600))

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"-f", "data.csv"}))

	cfg, err := LoadConfig("", fs)
	require.NoError(t, err)
	assert.Equal(t, ",", cfg.Delimiter)
	assert.Equal(t, "data.csv", cfg.Filename)
}

func TestLoadConfig_Flags(t *testing.T) {
	isolate(t)
	fs := testFlags()
	require.NoError(t, fs.Parse([]string{
		"-f", "data.parquet",
		"-q", "SELECT * FROM t",
		"-t", "t",
		"--no-color",
		"--log-file", "out.log",
	}))

	cfg, err := LoadConfig("", fs)
	require.NoError(t, err)
	assert.Equal(t, "data.parquet", cfg.Filename)
	assert.Equal(t, "SELECT * FROM t", cfg.Query)
	assert.Equal(t, "t", cfg.TableName)
	assert.True(t, cfg.NoColor)
	assert.Equal(t, "out.log", cfg.LogFile)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{Delimiter: ";", TableName: DefaultTableName}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
		errSub  string
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "file only", mutate: func(c *Config) { c.Filename = "a.csv" }},
		{name: "file and query", mutate: func(c *Config) { c.Filename = "a.csv"; c.Query = "SELECT 1" }},
		{name: "query and table", mutate: func(c *Config) { c.Filename = "a.csv"; c.Query = "SELECT 1"; c.TableName = "t" }},
		{name: "unicode delimiter", mutate: func(c *Config) { c.Delimiter = "§" }},
		{name: "query without file", mutate: func(c *Config) { c.Query = "SELECT 1" }, wantErr: ErrQueryWithoutFile},
		{name: "configured table without query", mutate: func(c *Config) { c.Filename = "a.csv"; c.TableName = "t" }},
		{name: "empty table name", mutate: func(c *Config) { c.Filename = "a.csv"; c.TableName = "" }, errSub: "table name must not be empty"},
		{name: "empty delimiter", mutate: func(c *Config) { c.Delimiter = "" }, errSub: "single character"},
		{name: "long delimiter", mutate: func(c *Config) { c.Delimiter = ";;" }, errSub: "single character"},
		{name: "negative workers", mutate: func(c *Config) { c.Workers = -1 }, errSub: "workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.errSub != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errSub)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_ValidationError(t *testing.T) {
	isolate(t)
	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"-q", "SELECT 1"}))

	_, err := LoadConfig("", fs)
	require.ErrorIs(t, err, ErrQueryWithoutFile)
}

func TestLoadConfig_TableNameFlagRequiresQuery(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
		errSub  string
	}{
		{name: "custom name", args: []string{"-f", "a.csv", "-t", "sales"}, wantErr: ErrTableWithoutQuery},
		{name: "default name given explicitly", args: []string{"-f", "a.csv", "-t", DefaultTableName}, wantErr: ErrTableWithoutQuery},
		{name: "empty name", args: []string{"-f", "a.csv", "-t", ""}, errSub: "table name must not be empty"},
		{name: "with query", args: []string{"-f", "a.csv", "-t", "sales", "-q", "SELECT 1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			fs := testFlags()
			require.NoError(t, fs.Parse(tt.args))

			_, err := LoadConfig("", fs)
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.errSub != "":
				require.Error(t, err)
				assert.NotErrorIs(t, err, ErrTableWithoutQuery)
				assert.Contains(t, err.Error(), tt.errSub)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_TableNameFromFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "parqbench.yaml"), []byte("table_name: sales\n"), 0o600))

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"-f", "a.csv"}))

	cfg, err := LoadConfig("", fs)
	require.NoError(t, err)
	assert.Equal(t, "sales", cfg.TableName)
}
