// Package engine wraps an in-memory DuckDB database as the query engine behind a dataset.
//
// A Session is a private DuckDB instance with a single connection. Files are scanned
// with read_parquet/read_csv, registered as views, and queried through DuckDB's Arrow
// interface so results arrive as Arrow record batches.
package engine

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/marcboeker/go-duckdb"
)

// ErrClosed is returned when a session is used after its last reference was released.
var ErrClosed = errors.New("engine session is closed")

// Config holds session settings applied when the connection is created.
type Config struct {
	// Threads limits DuckDB worker threads (0 keeps the DuckDB default).
	Threads int

	// MemoryLimit is passed to DuckDB's memory_limit setting (e.g. "2GB").
	MemoryLimit string

	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// Session is a reference-counted DuckDB connection.
// Queries on one session are serialized; DuckDB connections are not safe for
// concurrent use.
type Session struct {
	mu        sync.Mutex
	connector *duckdb.Connector
	conn      driver.Conn
	arrow     *duckdb.Arrow
	logger    *slog.Logger
	refs      atomic.Int32
	closed    bool
}

// Open creates a new in-memory session holding one reference.
func Open(ctx context.Context, cfg Config) (*Session, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	connector, err := duckdb.NewConnector("", func(execer driver.ExecerContext) error {
		for _, stmt := range cfg.settings() {
			if _, err := execer.ExecContext(ctx, stmt, nil); err != nil {
				return fmt.Errorf("failed to apply %q: %w", stmt, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb connector: %w", err)
	}

	conn, err := connector.Connect(ctx)
	if err != nil {
		_ = connector.Close()
		return nil, fmt.Errorf("failed to connect to duckdb: %w", err)
	}

	ar, err := duckdb.NewArrowFromConn(conn)
	if err != nil {
		_ = conn.Close()
		_ = connector.Close()
		return nil, fmt.Errorf("failed to open arrow interface: %w", err)
	}

	s := &Session{
		connector: connector,
		conn:      conn,
		arrow:     ar,
		logger:    logger,
	}
	s.refs.Store(1)
	logger.Debug("opened engine session")
	return s, nil
}

func (c Config) settings() []string {
	var stmts []string
	if c.Threads > 0 {
		stmts = append(stmts, fmt.Sprintf("SET threads = %d", c.Threads))
	}
	if c.MemoryLimit != "" {
		stmts = append(stmts, "SET memory_limit = "+QuoteLiteral(c.MemoryLimit))
	}
	return stmts
}

// Retain adds a reference to the session.
func (s *Session) Retain() {
	s.refs.Add(1)
}

// Release drops a reference and closes the connection when none remain.
func (s *Session) Release() {
	if s.refs.Add(-1) != 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if err := s.conn.Close(); err != nil {
		s.logger.Warn("failed to close duckdb connection", "error", err)
	}
	if err := s.connector.Close(); err != nil {
		s.logger.Warn("failed to close duckdb connector", "error", err)
	}
	s.logger.Debug("closed engine session")
}

// Exec executes a statement that doesn't return rows.
func (s *Session) Exec(ctx context.Context, query string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	execer, ok := s.conn.(driver.ExecerContext)
	if !ok {
		return fmt.Errorf("duckdb connection does not support exec")
	}
	if _, err := execer.ExecContext(ctx, query, nil); err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// Query executes a statement and collects every Arrow record it produces.
// The caller owns the returned records and must release them.
func (s *Session) Query(ctx context.Context, query string) ([]arrow.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	s.logger.Debug("executing query", "sql", query)

	rdr, err := s.arrow.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rdr.Release()

	var records []arrow.Record
	for rdr.Next() {
		rec := rdr.Record()
		rec.Retain()
		records = append(records, rec)
	}
	if err := rdr.Err(); err != nil {
		for _, rec := range records {
			rec.Release()
		}
		return nil, fmt.Errorf("failed to read query results: %w", err)
	}
	return records, nil
}

// Register exposes a file as a view named table.
func (s *Session) Register(ctx context.Context, table, path string, opts ReadOptions) error {
	stmt := fmt.Sprintf("CREATE OR REPLACE VIEW %s AS %s", QuoteIdent(table), opts.ScanSQL(path))
	if err := s.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("failed to register table %s: %w", table, err)
	}
	return nil
}
