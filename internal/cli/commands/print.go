package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/parqbench/parqbench/internal/cli/config"
	"github.com/parqbench/parqbench/internal/data"
)

// RunPrint loads the file named by cfg synchronously and writes it as a
// plain table. It backs --print and non-terminal stdout.
func RunPrint(ctx context.Context, w io.Writer, cfg *config.Config, pipeline *data.Pipeline) error {
	if cfg.Filename == "" {
		return fmt.Errorf("no file to print: pass --filename")
	}

	var (
		ds  *data.Dataset
		err error
	)
	if cfg.Query != "" {
		ds, err = pipeline.LoadWithQuery(ctx, cfg.Filename, data.Filters{
			TableName: cfg.TableName,
			Query:     cfg.Query,
		})
	} else {
		ds, err = pipeline.Load(ctx, cfg.Filename)
	}
	if err != nil {
		return err
	}
	defer ds.Release()

	renderDataset(w, ds, renderOptions(cfg))
	return nil
}
