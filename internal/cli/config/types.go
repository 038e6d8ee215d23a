// Package config provides configuration management for the ParqBench CLI.
//
// Configuration is layered with koanf: built-in defaults, then a YAML file
// (parqbench.yaml), then PARQBENCH_* environment variables, then flags that
// were set explicitly on the command line.
package config

import (
	"fmt"
	"unicode/utf8"

	"github.com/parqbench/parqbench/internal/format"
)

// Config holds all CLI configuration options.
type Config struct {
	Filename  string `koanf:"filename"`
	Query     string `koanf:"query"`
	TableName string `koanf:"table_name"`
	Delimiter string `koanf:"delimiter"`

	Verbose bool   `koanf:"verbose"`
	LogFile string `koanf:"log_file"`
	Watch   bool   `koanf:"watch"`
	Print   bool   `koanf:"print"`
	NoColor bool   `koanf:"no_color"`
	Workers int    `koanf:"workers"`

	Engine EngineConfig `koanf:"engine"`
	Format FormatConfig `koanf:"format"`
}

// EngineConfig holds DuckDB session settings.
type EngineConfig struct {
	Threads     int    `koanf:"threads"`
	MemoryLimit string `koanf:"memory_limit"`
}

// FormatConfig holds cell formatting settings.
type FormatConfig struct {
	HighPrecisionMarker string `koanf:"high_precision_marker"`
	MaxRows             int    `koanf:"max_rows"`
}

// Default configuration values.
const (
	DefaultTableName = "AllData"
	DefaultDelimiter = ";"
	DefaultMaxRows   = 1000
)

// DelimiterRune returns the CSV delimiter as a rune.
// Validate guarantees it is a single character.
func (c *Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

// FormatPolicy returns the cell formatting policy.
func (c *Config) FormatPolicy() format.Policy {
	return format.Policy{HighPrecisionMarker: c.Format.HighPrecisionMarker}
}

// Headless reports whether output goes to a plain table instead of the TUI.
func (c *Config) Headless() bool {
	return c.Print
}

// Settings returns the effective settings as label/value pairs.
func (c *Config) Settings() [][2]string {
	return [][2]string{
		{"delimiter", fmt.Sprintf("%q", c.Delimiter)},
		{"table name", c.TableName},
		{"watch", fmt.Sprintf("%t", c.Watch)},
		{"workers", fmt.Sprintf("%d", c.Workers)},
		{"engine threads", fmt.Sprintf("%d", c.Engine.Threads)},
		{"engine memory limit", c.Engine.MemoryLimit},
		{"high precision marker", c.Format.HighPrecisionMarker},
		{"config file", GetConfigFileUsed()},
	}
}
