package commands

import (
	"log/slog"

	"github.com/parqbench/parqbench/internal/cli/config"
	"github.com/parqbench/parqbench/internal/data"
	"github.com/parqbench/parqbench/internal/engine"
	"github.com/parqbench/parqbench/internal/format"
)

// getConfig returns the current configuration, or defaults when none was loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		TableName: config.DefaultTableName,
		Delimiter: config.DefaultDelimiter,
		Format: config.FormatConfig{
			HighPrecisionMarker: format.DefaultHighPrecisionMarker,
			MaxRows:             config.DefaultMaxRows,
		},
	}
}

// NewPipeline builds the data pipeline described by cfg.
func NewPipeline(cfg *config.Config, logger *slog.Logger) *data.Pipeline {
	return data.NewPipeline(data.PipelineConfig{
		Delimiter: cfg.DelimiterRune(),
		Engine: engine.Config{
			Threads:     cfg.Engine.Threads,
			MemoryLimit: cfg.Engine.MemoryLimit,
			Logger:      logger,
		},
		Logger: logger,
	})
}

func renderOptions(cfg *config.Config) RenderOptions {
	return RenderOptions{Policy: cfg.FormatPolicy(), MaxRows: cfg.Format.MaxRows}
}
