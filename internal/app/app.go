// Package app holds the viewer state and turns user intents into background loads.
//
// The App is driven from a single goroutine: intents (OpenFile, SortColumn, ...)
// submit work to the scheduler and return at once, and Tick merges finished work
// into the visible state. The current dataset is published through an atomic
// pointer so a Frame always refers to one consistent dataset.
package app

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/parqbench/parqbench/internal/data"
	"github.com/parqbench/parqbench/internal/metadata"
	"github.com/parqbench/parqbench/internal/scheduler"
)

// Name is the program name shown in the about popover.
const Name = "ParqBench"

// NoFileStatus is the status line when nothing is loaded.
const NoFileStatus = "no file set"

// State is the coarse application state.
type State int

const (
	// Empty means no dataset and nothing loading.
	Empty State = iota
	// Loading means an operation is pending.
	Loading
	// Ready means a dataset is shown and nothing is pending.
	Ready
	// Error means an error popover is open.
	Error
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// QueryPane is the editable query form.
type QueryPane struct {
	Filename  string
	TableName string
	Query     string
}

// Watcher reports changes to the loaded file.
type Watcher interface {
	Watch(path string) error
	Changes() <-chan string
}

// Config holds App dependencies.
type Config struct {
	Pipeline  *data.Pipeline
	Scheduler *scheduler.Scheduler

	// Watcher reloads the dataset when its file changes (optional).
	Watcher Watcher

	// TableName prefills the query pane when the dataset has no query.
	TableName string

	// Version is shown in the about popover.
	Version string

	// Settings are shown in the settings popover.
	Settings []Setting

	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// App is the viewer state machine.
type App struct {
	pipeline *data.Pipeline
	sched    *scheduler.Scheduler
	watcher  Watcher
	logger   *slog.Logger

	tableName string
	version   string
	settings  []Setting

	dataset  atomic.Pointer[data.Dataset]
	popover  Popover
	pane     QueryPane
	metadata *metadata.FileMetadata

	dropsMu sync.Mutex
	drops   []string
}

// New creates an App with nothing loaded.
func New(cfg Config) *App {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	sched := cfg.Scheduler
	if sched == nil {
		sched = scheduler.New(scheduler.Config{Logger: logger})
	}
	pipeline := cfg.Pipeline
	if pipeline == nil {
		pipeline = data.NewPipeline(data.PipelineConfig{Logger: logger})
	}
	tableName := cfg.TableName
	if tableName == "" {
		tableName = data.DefaultTableName
	}

	return &App{
		pipeline:  pipeline,
		sched:     sched,
		watcher:   cfg.Watcher,
		logger:    logger,
		tableName: tableName,
		version:   cfg.Version,
		settings:  cfg.Settings,
		pane:      QueryPane{TableName: tableName},
	}
}

// Dataset returns the current dataset, or nil. The dataset stays valid until
// the next Tick or Close on the owning goroutine.
func (a *App) Dataset() *data.Dataset {
	return a.dataset.Load()
}

// Notifier returns the notifier that fires when background work completes.
func (a *App) Notifier() *scheduler.Notifier {
	return a.sched.Notifier()
}

// OpenFile loads path.
func (a *App) OpenFile(path string) {
	a.sched.Submit("load", func(ctx context.Context) (*data.Dataset, error) {
		return a.pipeline.Load(ctx, path)
	})
}

// OpenQuery loads path through filters.Query.
func (a *App) OpenQuery(path string, filters data.Filters) {
	a.sched.Submit("query", func(ctx context.Context) (*data.Dataset, error) {
		return a.pipeline.LoadWithQuery(ctx, path, filters)
	})
}

// DropFile queues a dropped path. It is safe to call from any goroutine;
// the next Tick loads the most recent drop.
func (a *App) DropFile(path string) {
	a.dropsMu.Lock()
	a.drops = append(a.drops, path)
	a.dropsMu.Unlock()
}

// SetQueryPane replaces the query form contents.
func (a *App) SetQueryPane(p QueryPane) {
	a.pane = p
}

// QueryPane returns the query form contents.
func (a *App) QueryPane() QueryPane {
	return a.pane
}

// SubmitQuery runs the query pane. An empty query is ignored.
func (a *App) SubmitQuery() bool {
	p := a.pane
	if p.Query == "" {
		return false
	}
	a.OpenQuery(p.Filename, data.Filters{TableName: p.TableName, Query: p.Query})
	return true
}

// SortColumn advances the sort cycle of column on the current dataset. It is
// ignored while another operation is pending, since the table on screen is
// about to be replaced.
func (a *App) SortColumn(column string) bool {
	ds := a.dataset.Load()
	if ds == nil || a.sched.Pending() {
		return false
	}

	filters := ds.Filters.WithSort(data.NextSort(ds.Filters.Sort, column))
	ds.Retain()
	a.sched.Submit("sort", func(ctx context.Context) (*data.Dataset, error) {
		defer ds.Release()
		return a.pipeline.Sort(ctx, ds, &filters)
	})
	return true
}

// ClosePopover dismisses the open popover.
func (a *App) ClosePopover() {
	a.popover = nil
}

// ShowSettings opens the settings popover.
func (a *App) ShowSettings() {
	a.popover = SettingsPopover{Settings: a.settings}
}

// ShowAbout opens the about popover.
func (a *App) ShowAbout() {
	a.popover = AboutPopover{Name: Name, Version: a.version}
}

// Busy reports whether an operation is pending.
func (a *App) Busy() bool {
	return a.sched.Pending()
}

// State derives the coarse state.
func (a *App) State() State {
	if _, ok := a.popover.(ErrorPopover); ok {
		return Error
	}
	if a.sched.Pending() {
		return Loading
	}
	if a.dataset.Load() != nil {
		return Ready
	}
	return Empty
}

// ShowSpinner reports whether a load is running and no dataset has been shown yet.
func (a *App) ShowSpinner() bool {
	return a.sched.Pending() && a.dataset.Load() == nil
}

// Dimmed reports whether a load is running over a dataset that stays on screen.
func (a *App) Dimmed() bool {
	return a.sched.Pending() && a.dataset.Load() != nil
}

// Frame is everything the presentation layer needs to draw one frame.
type Frame struct {
	Dataset   *data.Dataset
	Popover   Popover
	QueryPane QueryPane
	Metadata  *metadata.FileMetadata
	State     State

	// Spinner is set while the first dataset is loading.
	Spinner bool
	// Dimmed is set while a dataset is shown but a new one is loading.
	Dimmed bool
	// Status is the loaded file name or NoFileStatus.
	Status string
}

// Tick consumes external input, merges a finished operation and returns the
// resulting frame.
func (a *App) Tick() Frame {
	a.consumeInputs()

	st := a.sched.Poll()
	if st.State == scheduler.Done {
		a.merge(st.Result)
	}
	return a.Frame()
}

// Frame returns the current frame without advancing state.
func (a *App) Frame() Frame {
	ds := a.dataset.Load()
	busy := a.sched.Pending()

	f := Frame{
		Dataset:   ds,
		Popover:   a.popover,
		QueryPane: a.pane,
		Metadata:  a.metadata,
		State:     a.State(),
		Spinner:   busy && ds == nil,
		Dimmed:    busy && ds != nil,
		Status:    NoFileStatus,
	}
	if ds != nil {
		f.Status = filepath.Base(ds.Path)
	}
	return f
}

func (a *App) consumeInputs() {
	if a.watcher != nil {
		select {
		case path := <-a.watcher.Changes():
			a.reload(path)
		default:
		}
	}

	a.dropsMu.Lock()
	drops := a.drops
	a.drops = nil
	a.dropsMu.Unlock()

	if len(drops) > 0 {
		path := drops[len(drops)-1]
		a.logger.Debug("file dropped", "path", path, "queued", len(drops))
		a.OpenFile(path)
	}
}

func (a *App) reload(path string) {
	ds := a.dataset.Load()
	if ds == nil || ds.Path != path {
		return
	}
	filters := ds.Filters
	a.logger.Info("reloading changed file", "path", path)
	a.sched.Submit("reload", func(ctx context.Context) (*data.Dataset, error) {
		return a.pipeline.Reload(ctx, path, filters)
	})
}

func (a *App) merge(res scheduler.Result) {
	if res.Err != nil {
		a.logger.Warn("operation failed", "error", res.Err)
		a.popover = ErrorPopover{Message: res.Err.Error()}
		return
	}
	if res.Dataset == nil {
		return
	}

	ds := res.Dataset
	if old := a.dataset.Swap(ds); old != nil {
		old.Release()
	}

	tableName := ds.Filters.TableName
	if tableName == "" {
		tableName = a.tableName
	}
	a.pane = QueryPane{
		Filename:  ds.Path,
		TableName: tableName,
		Query:     ds.Filters.Query,
	}
	a.metadata = ds.Metadata

	if a.watcher != nil {
		if err := a.watcher.Watch(ds.Path); err != nil {
			a.logger.Warn("failed to watch file", "path", ds.Path, "error", err)
		}
	}
	a.logger.Debug("dataset updated", "path", ds.Path, "rows", ds.NumRows(), "cols", ds.NumCols())
}

// Close stops background work and releases the current dataset.
func (a *App) Close() {
	a.sched.Close()
	if ds := a.dataset.Swap(nil); ds != nil {
		ds.Release()
	}
}
