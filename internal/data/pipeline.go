package data

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/parqbench/parqbench/internal/engine"
	"github.com/parqbench/parqbench/internal/metadata"
)

// PipelineConfig holds the pipeline configuration.
type PipelineConfig struct {
	// Delimiter is the CSV field separator (0 uses engine.DefaultDelimiter).
	Delimiter rune

	// Engine configures each per-load engine session.
	Engine engine.Config

	// Allocator is used for materialized records (optional, defaults to the Go allocator).
	Allocator memory.Allocator

	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// Pipeline loads, queries and sorts datasets.
type Pipeline struct {
	delim  rune
	engine engine.Config
	mem    memory.Allocator
	logger *slog.Logger
}

// NewPipeline creates a Pipeline.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	mem := cfg.Allocator
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	engCfg := cfg.Engine
	if engCfg.Logger == nil {
		engCfg.Logger = logger
	}
	return &Pipeline{
		delim:  cfg.Delimiter,
		engine: engCfg,
		mem:    mem,
		logger: logger,
	}
}

// Load scans the whole file at path into a dataset with empty filters.
func (p *Pipeline) Load(ctx context.Context, path string) (*Dataset, error) {
	path, opts, err := p.resolve(path)
	if err != nil {
		return nil, err
	}

	p.logger.Info("loading file", "path", path, "format", opts.Format.String())

	session, err := engine.Open(ctx, p.engine)
	if err != nil {
		return nil, fmt.Errorf("failed to open engine: %w", err)
	}

	plan := opts.ScanSQL(path)
	ds, err := p.materialize(ctx, session, path, plan, Filters{})
	if err != nil {
		session.Release()
		return nil, err
	}
	p.attachMetadata(ds, opts)
	return ds, nil
}

// LoadWithQuery registers the file as filters.TableNameOrDefault() and runs
// filters.Query against it, then applies filters.Sort.
func (p *Pipeline) LoadWithQuery(ctx context.Context, path string, filters Filters) (*Dataset, error) {
	path, opts, err := p.resolve(path)
	if err != nil {
		return nil, err
	}

	table := filters.TableNameOrDefault()
	p.logger.Info("loading file with query", "path", path, "table", table)

	session, err := engine.Open(ctx, p.engine)
	if err != nil {
		return nil, fmt.Errorf("failed to open engine: %w", err)
	}

	if err := session.Register(ctx, table, path, opts); err != nil {
		session.Release()
		return nil, err
	}

	if !filters.HasQuery() {
		session.Release()
		return nil, ErrNoQuery
	}

	querySort := filters.Sort
	filters.Sort = nil
	filters.TableName = table

	ds, err := p.materialize(ctx, session, path, queryPlan(filters.Query), filters)
	if err != nil {
		session.Release()
		return nil, err
	}
	p.attachMetadata(ds, opts)

	if !querySort.Active() {
		ds.Filters.Sort = querySort
		return ds, nil
	}

	sorted, err := p.Sort(ctx, ds, &Filters{TableName: table, Query: filters.Query, Sort: querySort})
	ds.Release()
	if err != nil {
		return nil, err
	}
	return sorted, nil
}

// Sort returns ds ordered by filters.Sort. A nil filters, a nil sort or a
// NotSorted order returns ds itself with an extra reference.
func (p *Pipeline) Sort(ctx context.Context, ds *Dataset, filters *Filters) (*Dataset, error) {
	if filters == nil || !filters.Sort.Active() {
		ds.Retain()
		return ds, nil
	}

	sort := filters.Sort
	if !ds.HasColumn(sort.Column) {
		return nil, &ColumnNotFoundError{Column: sort.Column}
	}
	if ds.session == nil {
		return nil, fmt.Errorf("unable to sort column '%s': dataset has no engine session", sort.Column)
	}

	dir := "ASC"
	if sort.Order == Descending {
		dir = "DESC"
	}
	// The closing paren goes on its own line so a trailing line comment in
	// the query cannot swallow it.
	plan := fmt.Sprintf("SELECT * FROM (%s\n) ORDER BY %s %s NULLS LAST", ds.plan, engine.QuoteIdent(sort.Column), dir)

	p.logger.Debug("sorting dataset", "path", ds.Path, "column", sort.Column, "order", sort.Order.String())

	ds.session.Retain()
	sorted, err := p.materialize(ctx, ds.session, ds.Path, plan, filters.WithSort(sort))
	if err != nil {
		ds.session.Release()
		return nil, fmt.Errorf("unable to sort column '%s': %w", sort.Column, err)
	}
	sorted.Metadata = ds.Metadata
	return sorted, nil
}

// Reload rebuilds a dataset from path with the given filters, re-running the
// query when one is set.
func (p *Pipeline) Reload(ctx context.Context, path string, filters Filters) (*Dataset, error) {
	if filters.HasQuery() {
		return p.LoadWithQuery(ctx, path, filters)
	}

	ds, err := p.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	if !filters.Sort.Active() {
		return ds, nil
	}

	defer ds.Release()
	return p.Sort(ctx, ds, &Filters{Sort: filters.Sort})
}

// resolve expands and absolutizes path so datasets carry the same path the
// file watcher reports.
func (p *Pipeline) resolve(path string) (string, engine.ReadOptions, error) {
	expanded, err := ExpandPath(path)
	if err != nil {
		return "", engine.ReadOptions{}, err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", engine.ReadOptions{}, fmt.Errorf("failed to resolve path %s: %w", expanded, err)
	}
	opts, err := engine.DetectReadOptions(abs, p.delim)
	if err != nil {
		if errors.Is(err, engine.ErrUnknownFormat) {
			return "", engine.ReadOptions{}, ErrReadOptions
		}
		return "", engine.ReadOptions{}, err
	}
	return abs, opts, nil
}

// materialize runs plan and concatenates its batches. On success the dataset
// takes over the caller's session reference.
func (p *Pipeline) materialize(ctx context.Context, session *engine.Session, path, plan string, filters Filters) (*Dataset, error) {
	records, err := session.Query(ctx, plan)
	if err != nil {
		return nil, err
	}
	defer releaseAll(records)

	rec, err := Concat(p.mem, records)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("materialized dataset", "path", path, "rows", rec.NumRows(), "cols", rec.NumCols(), "batches", len(records))
	return newDataset(path, rec, filters, session, plan), nil
}

func (p *Pipeline) attachMetadata(ds *Dataset, opts engine.ReadOptions) {
	if opts.Format != engine.FormatParquet {
		return
	}
	md, err := metadata.Read(ds.Path)
	if err != nil {
		p.logger.Warn("failed to read file metadata", "path", ds.Path, "error", err)
		return
	}
	ds.Metadata = md
}

// queryPlan strips trailing semicolons so the query can be nested in a subquery.
func queryPlan(query string) string {
	return strings.TrimRight(strings.TrimSpace(query), "; \t\r\n")
}

func releaseAll(records []arrow.Record) {
	for _, rec := range records {
		rec.Release()
	}
}
