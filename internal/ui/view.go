package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/parqbench/parqbench/internal/app"
	"github.com/parqbench/parqbench/internal/format"
)

// EmptyHint is shown when no file is loaded.
const EmptyHint = "Drag and drop parquet file here."

const sidePanelWidth = 36

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	faintStyle  = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1).Width(sidePanelWidth - 2)
	modalStyle  = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).Padding(1, 2).Align(lipgloss.Center)
	formStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.NoColor{}).
		Background(lipgloss.Color("57")).
		Bold(false)
	return styles
}

// View implements tea.Model.
func (m *Model) View() string {
	f := m.frame

	if f.Popover != nil && m.width > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, renderPopover(f.Popover))
	}

	head := titleStyle.Render(app.Name) + faintStyle.Render("  "+f.Status)
	parts := []string{head}

	switch m.mode {
	case modePrompt:
		parts = append(parts, formStyle.Render(m.prompt.View()))
	case modeQuery:
		fields := make([]string, len(m.form))
		for i := range m.form {
			fields[i] = m.form[i].View()
		}
		parts = append(parts, formStyle.Render(lipgloss.JoinVertical(lipgloss.Left, fields...)))
	}

	parts = append(parts, m.body())
	parts = append(parts, m.footer())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) body() string {
	f := m.frame
	if f.Dataset == nil {
		msg := faintStyle.Render(EmptyHint)
		if f.Spinner {
			msg = m.spin.View() + " Loading..."
		}
		if m.width > 0 {
			return lipgloss.Place(m.width, max(3, m.height-4), lipgloss.Center, lipgloss.Center, msg)
		}
		return msg
	}

	view := m.tbl.View()
	if f.Dimmed {
		view = faintStyle.Render(view)
	}
	if f.Metadata != nil && (m.width == 0 || m.width > 100) {
		view = lipgloss.JoinHorizontal(lipgloss.Top, view, m.sidePanel())
	}
	return view
}

func (m *Model) sidePanel() string {
	md := m.frame.Metadata
	lines := []string{headerStyle.Render("File metadata")}
	lines = append(lines, md.Lines()...)
	lines = append(lines, "", headerStyle.Render("Schema"))
	lines = append(lines, md.SchemaLines()...)
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) footer() string {
	f := m.frame
	var status string
	if ds := f.Dataset; ds != nil {
		status = fmt.Sprintf("%s rows × %d cols", format.Count(ds.NumRows()), ds.NumCols())
		if ds.NumRows() > int64(m.maxRows) {
			status += fmt.Sprintf(" (showing first %s)", format.Count(int64(m.maxRows)))
		}
		if f.Dimmed {
			status = m.spin.View() + " " + status
		}
	}

	bindings := m.keys.tableHelp()
	if m.mode != modeTable {
		bindings = m.keys.formHelp()
	}
	return lipgloss.JoinVertical(lipgloss.Left, faintStyle.Render(status), m.help.ShortHelpView(bindings))
}

func renderPopover(p app.Popover) string {
	var body string
	switch p := p.(type) {
	case app.ErrorPopover:
		body = lipgloss.JoinVertical(lipgloss.Center, errorStyle.Render("Error"), "", p.Message)
	case app.AboutPopover:
		body = lipgloss.JoinVertical(lipgloss.Center,
			titleStyle.Render(p.Name),
			"version "+p.Version,
			"",
			"A viewer for Parquet and CSV files.")
	case app.SettingsPopover:
		lines := []string{titleStyle.Render("Settings"), ""}
		for _, s := range p.Settings {
			lines = append(lines, fmt.Sprintf("%s: %s", s.Name, s.Value))
		}
		body = lipgloss.JoinVertical(lipgloss.Left, lines...)
	}
	return modalStyle.Render(lipgloss.JoinVertical(lipgloss.Center, body, "", faintStyle.Render("esc to close")))
}
