// Package cli provides the command-line interface for ParqBench.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/parqbench/parqbench/internal/app"
	"github.com/parqbench/parqbench/internal/cli/commands"
	"github.com/parqbench/parqbench/internal/cli/config"
	"github.com/parqbench/parqbench/internal/data"
	"github.com/parqbench/parqbench/internal/scheduler"
	"github.com/parqbench/parqbench/internal/ui"
	"github.com/parqbench/parqbench/internal/watch"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var closers []io.Closer

	rootCmd := &cobra.Command{
		Use:   "parqbench",
		Short: "ParqBench - Parquet and CSV viewer",
		Long: `ParqBench is a terminal viewer for Parquet and CSV files built with Go and DuckDB.

Open a file, sort by any column and run SQL against it. The file is registered
as a table (default AllData) so queries can refer to it by name.`,
		Example: `  # View a parquet file
  parqbench -f data.parquet

  # Query a semicolon-delimited CSV
  parqbench -f data.csv -q "SELECT * FROM AllData WHERE amount > 10"

  # Print to stdout instead of starting the viewer
  parqbench -f data.parquet --print`,
		Version: Version,
		Args:    cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger, closer, err := newLogger(cfg, cmd.ErrOrStderr(), isHeadless(cmd, cfg))
			if err != nil {
				return err
			}
			if closer != nil {
				closers = append(closers, closer)
			}
			cmd.SetContext(config.WithLogger(cmd.Context(), logger))

			if file := config.GetConfigFileUsed(); file != "" {
				logger.Debug("using config file", "path", file)
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			for _, c := range closers {
				_ = c.Close()
			}
			closers = nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRoot(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set version template
	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Built with Go and DuckDB
`)

	// Global persistent flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./parqbench.yaml)")
	flags.StringP("filename", "f", "", "Parquet or CSV file to open")
	flags.StringP("query", "q", "", "SQL query to run against the file (requires --filename)")
	flags.StringP("table-name", "t", config.DefaultTableName, "Table name the file is registered as (requires --query)")
	flags.StringP("delimiter", "d", config.DefaultDelimiter, "CSV field delimiter")
	flags.BoolP("verbose", "v", false, "Verbose logging")
	flags.String("log-file", "", "Write logs to this file")
	flags.Bool("watch", false, "Reload the file when it changes on disk")
	flags.Bool("print", false, "Print the table to stdout instead of starting the viewer")
	flags.Bool("no-color", false, "Disable colors")
	flags.Int("workers", 0, "Concurrent data operations (0 uses the number of CPUs)")

	// Register completion for delimiter flag
	_ = rootCmd.RegisterFlagCompletionFunc("delimiter", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{";", ",", "|", "\t"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("filename", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"parquet", "parq", "pq", "csv", "tsv", "txt"}, cobra.ShellCompDirectiveFilterFileExt
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewReplCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// isHeadless reports whether the root command prints instead of starting the viewer.
func isHeadless(cmd *cobra.Command, cfg *config.Config) bool {
	if cfg.Headless() {
		return true
	}
	f, ok := cmd.OutOrStdout().(*os.File)
	return !ok || !term.IsTerminal(int(f.Fd()))
}

// newLogger builds the process logger. The viewer owns the terminal, so logs
// only reach stderr in headless mode; --log-file always works.
func newLogger(cfg *config.Config, stderr io.Writer, headless bool) (*slog.Logger, io.Closer, error) {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		return slog.New(slog.NewTextHandler(f, opts)), f, nil
	}
	if headless && cfg.Verbose {
		return slog.New(slog.NewTextHandler(stderr, opts)), nil, nil
	}
	return slog.New(slog.DiscardHandler), nil, nil
}

func runRoot(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg := config.GetCurrentConfig()
	logger := config.GetLogger(ctx)
	pipeline := commands.NewPipeline(cfg, logger)

	if isHeadless(cmd, cfg) {
		return commands.RunPrint(ctx, cmd.OutOrStdout(), cfg, pipeline)
	}

	a, cleanup, err := newApp(cfg, pipeline, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if cfg.Filename != "" {
		if cfg.Query != "" {
			a.OpenQuery(cfg.Filename, data.Filters{TableName: cfg.TableName, Query: cfg.Query})
		} else {
			a.OpenFile(cfg.Filename)
		}
	}

	return ui.Run(ctx, a, ui.RunOptions{
		Options: ui.Options{Policy: cfg.FormatPolicy(), MaxRows: cfg.Format.MaxRows},
		NoColor: cfg.NoColor,
		Input:   cmd.InOrStdin(),
		Output:  cmd.OutOrStdout(),
	})
}

// newApp wires the scheduler, optional file watcher and app together.
func newApp(cfg *config.Config, pipeline *data.Pipeline, logger *slog.Logger) (*app.App, func(), error) {
	notifier := scheduler.NewNotifier()
	sched := scheduler.New(scheduler.Config{
		Workers:  cfg.Workers,
		Notifier: notifier,
		Logger:   logger,
	})

	var (
		watcher app.Watcher
		fw      *watch.Watcher
	)
	if cfg.Watch {
		var err error
		fw, err = watch.New(watch.Config{Notify: notifier.Ping, Logger: logger})
		if err != nil {
			sched.Close()
			return nil, nil, err
		}
		watcher = fw
	}

	settings := make([]app.Setting, 0, len(cfg.Settings()))
	for _, s := range cfg.Settings() {
		settings = append(settings, app.Setting{Name: s[0], Value: s[1]})
	}

	a := app.New(app.Config{
		Pipeline:  pipeline,
		Scheduler: sched,
		Watcher:   watcher,
		TableName: cfg.TableName,
		Version:   Version,
		Settings:  settings,
		Logger:    logger,
	})

	cleanup := func() {
		if fw != nil {
			_ = fw.Close()
		}
		a.Close()
	}
	return a, cleanup, nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for ParqBench.

To load completions:

Bash:
  $ source <(parqbench completion bash)

Zsh:
  $ parqbench completion zsh > "${fpath[1]}/_parqbench"

Fish:
  $ parqbench completion fish | source

PowerShell:
  PS> parqbench completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
