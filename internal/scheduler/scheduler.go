// Package scheduler runs dataset operations off the UI goroutine and hands their
// results back through a single pending slot.
//
// Submit starts an operation on a bounded pool of goroutines and returns at once.
// Only the most recent submission is observable through Poll; an older task keeps
// running but its result is dropped when it arrives. Submit, Poll, Pending and
// InFlight must be called from one goroutine (the UI loop).
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/parqbench/parqbench/internal/data"
)

// ErrTerminated is reported when a task ended without producing a result.
var ErrTerminated = errors.New("data operation terminated without response")

// Operation produces a dataset. The returned dataset is owned by the scheduler
// until it is handed out through Poll.
type Operation func(ctx context.Context) (*data.Dataset, error)

// Result is the outcome of one operation.
type Result struct {
	Dataset *data.Dataset
	Err     error
}

// State is the pending slot state returned by Poll.
type State int

const (
	// Idle means nothing was submitted since the last completed poll.
	Idle State = iota
	// Pending means a task is running and its result hasn't arrived.
	Pending
	// Done means the result was taken from the slot.
	Done
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Status is the result of a Poll.
type Status struct {
	State  State
	Result Result
}

// Config holds scheduler configuration.
type Config struct {
	// Workers bounds concurrently running operations (0 uses GOMAXPROCS).
	Workers int

	// Notifier receives a broadcast whenever a task finishes (optional).
	Notifier *Notifier

	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

type slot struct {
	id string
	ch chan Result
}

type task struct {
	id   string
	done chan struct{}
}

// Scheduler owns background tasks and the pending completion slot.
type Scheduler struct {
	ctx      context.Context
	cancel   context.CancelFunc
	sem      *semaphore.Weighted
	wg       sync.WaitGroup
	notifier *Notifier
	logger   *slog.Logger

	pending *slot
	tasks   []*task
}

// New creates a Scheduler.
func New(cfg Config) *Scheduler {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = NewNotifier()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		ctx:      ctx,
		cancel:   cancel,
		sem:      semaphore.NewWeighted(int64(workers)),
		notifier: notifier,
		logger:   logger,
	}
}

// Notifier returns the repaint notifier.
func (s *Scheduler) Notifier() *Notifier {
	return s.notifier
}

// Submit starts op in the background and makes it the pending slot.
// A previously pending task is abandoned; its result will be released on arrival.
func (s *Scheduler) Submit(name string, op Operation) string {
	s.prune()

	id := uuid.NewString()
	ch := make(chan Result, 1)
	done := make(chan struct{})

	if old := s.pending; old != nil {
		s.logger.Debug("abandoning pending task", "task", old.id, "replaced_by", id)
		s.wg.Add(1)
		go s.drain(old)
	}
	s.pending = &slot{id: id, ch: ch}
	s.tasks = append(s.tasks, &task{id: id, done: done})

	logger := s.logger.With("task", id, "op", name)
	logger.Debug("submitting task")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(done)
		defer s.notifier.Ping()
		s.run(logger, op, ch)
	}()

	return id
}

func (s *Scheduler) run(logger *slog.Logger, op Operation, ch chan Result) {
	sent := false
	defer func() {
		if r := recover(); r != nil {
			logger.Error("task panicked", "panic", r)
		}
		if !sent {
			close(ch)
		}
	}()

	if err := s.sem.Acquire(s.ctx, 1); err != nil {
		logger.Debug("task not started", "error", err)
		return
	}
	defer s.sem.Release(1)

	ds, err := op(s.ctx)
	if err != nil {
		logger.Debug("task failed", "error", err)
	} else {
		logger.Debug("task completed")
	}
	ch <- Result{Dataset: ds, Err: err}
	sent = true
}

// drain discards the result of an abandoned task.
func (s *Scheduler) drain(old *slot) {
	defer s.wg.Done()
	res, ok := <-old.ch
	if ok && res.Dataset != nil {
		res.Dataset.Release()
	}
	s.logger.Debug("dropped abandoned task result", "task", old.id)
}

// Poll checks the pending slot without blocking.
func (s *Scheduler) Poll() Status {
	if s.pending == nil {
		return Status{State: Idle}
	}

	select {
	case res, ok := <-s.pending.ch:
		s.pending = nil
		if !ok {
			return Status{State: Done, Result: Result{Err: ErrTerminated}}
		}
		return Status{State: Done, Result: res}
	default:
		return Status{State: Pending}
	}
}

// Pending reports whether a result is awaited.
func (s *Scheduler) Pending() bool {
	return s.pending != nil
}

// InFlight returns the number of tasks still running.
func (s *Scheduler) InFlight() int {
	s.prune()
	return len(s.tasks)
}

func (s *Scheduler) prune() {
	live := s.tasks[:0]
	for _, t := range s.tasks {
		select {
		case <-t.done:
		default:
			live = append(live, t)
		}
	}
	clear(s.tasks[len(live):])
	s.tasks = live
}

// Close cancels queued tasks, waits for running ones and releases any
// undelivered result.
func (s *Scheduler) Close() {
	s.cancel()
	if old := s.pending; old != nil {
		s.pending = nil
		s.wg.Add(1)
		go s.drain(old)
	}
	s.wg.Wait()
	s.tasks = nil
}
