package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/parqbench/parqbench/internal/cli/config"
	"github.com/parqbench/parqbench/internal/data"
)

const (
	replPrompt     = "parqbench> "
	replContPrompt = "     ...> "
)

// NewReplCommand creates the repl command.
func NewReplCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl [file]",
		Short: "Query a file interactively",
		Long: `Start a line-oriented SQL session against a Parquet or CSV file.

The file is registered under the configured table name (default AllData).
Statements end with a semicolon. Dot-commands sort, describe and reopen the
current result.`,
		Example: `  # Query a parquet file
  parqbench repl data.parquet

  # Query a comma-separated file
  parqbench repl data.csv --delimiter ,`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(cmd, args)
		},
	}
}

func runRepl(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfig()
	logger := config.GetLogger(ctx)

	s := newReplSession(NewPipeline(cfg, logger), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
	defer s.close()

	path := cfg.Filename
	if len(args) == 1 {
		path = args[0]
	}
	if path != "" {
		if err := s.open(ctx, path); err != nil {
			return err
		}
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile(),
		AutoComplete:    s.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintln(s.out, "ParqBench REPL")
	_, _ = fmt.Fprintln(s.out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(s.out)

	var buf strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buf.Reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if buf.Len() == 0 && strings.HasPrefix(line, ".") {
			if s.handleDotCommand(ctx, line) {
				break
			}
			rl.Config.AutoComplete = s.completer()
			continue
		}

		// Accumulate multi-line SQL until semicolon
		buf.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			buf.WriteString(" ")
			rl.SetPrompt(replContPrompt)
			continue
		}
		rl.SetPrompt(replPrompt)

		query := buf.String()
		buf.Reset()
		if err := s.query(ctx, query); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		}
		_, _ = fmt.Fprintln(s.out)
	}

	return nil
}

// historyFile returns the REPL history path under the user cache dir, or ""
// to disable history.
func historyFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "parqbench")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return ""
	}
	return filepath.Join(dir, "repl_history")
}

// replSession holds the file and result a REPL works against.
type replSession struct {
	pipeline  *data.Pipeline
	tableName string
	render    RenderOptions
	out       io.Writer
	errOut    io.Writer

	path string
	ds   *data.Dataset
}

func newReplSession(pipeline *data.Pipeline, cfg *config.Config, out, errOut io.Writer) *replSession {
	return &replSession{
		pipeline:  pipeline,
		tableName: cfg.TableName,
		render:    renderOptions(cfg),
		out:       out,
		errOut:    errOut,
	}
}

func (s *replSession) close() {
	s.replace(nil)
}

// replace swaps the current result, releasing the previous one.
func (s *replSession) replace(ds *data.Dataset) {
	if s.ds != nil {
		s.ds.Release()
	}
	s.ds = ds
}

func (s *replSession) open(ctx context.Context, path string) error {
	ds, err := s.pipeline.Load(ctx, path)
	if err != nil {
		return err
	}
	s.path = path
	s.replace(ds)
	_, _ = fmt.Fprintf(s.out, "Opened %s as %s (%d rows × %d cols)\n", path, s.tableName, ds.NumRows(), ds.NumCols())
	return nil
}

func (s *replSession) query(ctx context.Context, query string) error {
	if s.path == "" {
		return errors.New("no file open (use .open <path>)")
	}
	ds, err := s.pipeline.LoadWithQuery(ctx, s.path, data.Filters{TableName: s.tableName, Query: query})
	if err != nil {
		return err
	}
	s.replace(ds)
	renderDataset(s.out, ds, s.render)
	return nil
}

func (s *replSession) sort(ctx context.Context, column, direction string) error {
	if s.ds == nil {
		return errors.New("no result to sort")
	}

	var state *data.SortState
	switch strings.ToLower(direction) {
	case "":
		state = data.NextSort(s.ds.Filters.Sort, column)
	case "asc":
		state = &data.SortState{Column: column, Order: data.Ascending}
	case "desc":
		state = &data.SortState{Column: column, Order: data.Descending}
	default:
		return fmt.Errorf("unknown sort direction %q (use asc or desc)", direction)
	}

	filters := s.ds.Filters.WithSort(state)
	sorted, err := s.pipeline.Sort(ctx, s.ds, &filters)
	if err != nil {
		return err
	}
	s.replace(sorted)
	renderDataset(s.out, sorted, s.render)
	return nil
}

// handleDotCommand runs a dot-command and reports whether the REPL should exit.
func (s *replSession) handleDotCommand(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	var err error
	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(s.out)

	case ".open":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(s.errOut, "Usage: .open <path>")
			return false
		}
		err = s.open(ctx, strings.Join(parts[1:], " "))

	case ".sort":
		if len(parts) < 2 || len(parts) > 3 {
			_, _ = fmt.Fprintln(s.errOut, "Usage: .sort <column> [asc|desc]")
			return false
		}
		direction := ""
		if len(parts) == 3 {
			direction = parts[2]
		}
		err = s.sort(ctx, parts[1], direction)

	case ".show":
		if s.ds == nil {
			err = errors.New("no result to show")
		} else {
			renderDataset(s.out, s.ds, s.render)
		}

	case ".schema":
		if s.ds == nil {
			err = errors.New("no result to describe")
		} else {
			renderSchema(s.out, s.ds)
		}

	case ".meta":
		if s.ds == nil {
			err = errors.New("no file open")
		} else {
			renderMetadata(s.out, s.ds.Metadata)
		}

	case ".clear":
		_, _ = fmt.Fprint(s.out, "\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help for commands)\n", command)
	}

	if err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help                      Show this help message
  .open <path>               Open a Parquet or CSV file
  .sort <column> [asc|desc]  Sort the current result
  .show                      Print the current result again
  .schema                    Show column names and types
  .meta                      Show parquet file metadata
  .clear                     Clear the screen
  .quit / .exit              Exit the REPL

Tips:
  - SQL statements must end with a semicolon (;)
  - The open file is available as the configured table name
  - Tab completion works for column names
`
	_, _ = fmt.Fprintln(w, help)
}

// completer offers dot-commands and, with a result loaded, its column names.
func (s *replSession) completer() *readline.PrefixCompleter {
	var columns []readline.PrefixCompleterInterface
	if s.ds != nil {
		for _, name := range s.ds.ColumnNames() {
			columns = append(columns, readline.PcItem(name))
		}
	}

	items := []readline.PrefixCompleterInterface{
		readline.PcItem(".help"),
		readline.PcItem(".open"),
		readline.PcItem(".sort", columns...),
		readline.PcItem(".show"),
		readline.PcItem(".schema"),
		readline.PcItem(".meta"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
		readline.PcItem("SELECT * FROM "+s.tableName),
	}
	return readline.NewPrefixCompleter(items...)
}
