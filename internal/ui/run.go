package ui

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/parqbench/parqbench/internal/app"
)

// RunOptions configure the terminal program.
type RunOptions struct {
	Options

	NoColor bool
	Input   io.Reader
	Output  io.Writer
}

// Run drives a until the user quits or ctx is cancelled.
func Run(ctx context.Context, a *app.App, opts RunOptions) error {
	if opts.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	m := New(a, opts.Options)
	defer m.Close()

	progOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if opts.Input != nil {
		progOpts = append(progOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(opts.Output))
	}

	if _, err := tea.NewProgram(m, progOpts...).Run(); err != nil {
		return fmt.Errorf("failed to run terminal UI: %w", err)
	}
	return nil
}
