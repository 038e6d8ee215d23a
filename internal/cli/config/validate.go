package config

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/spf13/pflag"
)

var (
	// ErrQueryWithoutFile is returned when a query is given without a filename.
	ErrQueryWithoutFile = errors.New("--query requires --filename")

	// ErrTableWithoutQuery is returned when a table name is given without a query.
	ErrTableWithoutQuery = errors.New("--table-name requires --query")
)

// Validate checks cross-field rules.
func (c *Config) Validate() error {
	if n := utf8.RuneCountInString(c.Delimiter); n != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", c.Delimiter)
	}
	if c.Query != "" && c.Filename == "" {
		return ErrQueryWithoutFile
	}
	if c.TableName == "" {
		return fmt.Errorf("table name must not be empty")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.Engine.Threads < 0 {
		return fmt.Errorf("engine.threads must not be negative, got %d", c.Engine.Threads)
	}
	return nil
}

// validateFlags checks rules that depend on which flags were given on the
// command line. A table name from the config file or environment is a default
// for later queries, so only an explicit --table-name needs --query.
func validateFlags(c *Config, flags *pflag.FlagSet) error {
	if flags == nil {
		return nil
	}
	if f := flags.Lookup("table-name"); f != nil && f.Changed && c.Query == "" {
		return ErrTableWithoutQuery
	}
	return nil
}
