// Package ui is the terminal front end: a bubbletea program that renders app
// frames and turns key presses into app intents.
package ui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/parqbench/parqbench/internal/app"
	"github.com/parqbench/parqbench/internal/data"
	"github.com/parqbench/parqbench/internal/format"
)

// tickInterval is how often the model polls the app when no repaint arrives.
const tickInterval = 100 * time.Millisecond

const maxColumnWidth = 32

type mode int

const (
	modeTable mode = iota
	modePrompt
	modeQuery
)

type tickMsg time.Time

type repaintMsg struct{}

// Options configure the model.
type Options struct {
	Policy  format.Policy
	MaxRows int
}

// Model is the bubbletea model.
type Model struct {
	app     *app.App
	policy  format.Policy
	maxRows int
	keys    keyMap
	help    help.Model

	tbl    table.Model
	spin   spinner.Model
	prompt textinput.Model
	form   []textinput.Model
	field  int
	mode   mode

	frame    app.Frame
	shown    *data.Dataset
	shownTag string
	focusCol int

	repaint chan struct{}
	width   int
	height  int
}

// New creates a model driving a.
func New(a *app.App, opts Options) *Model {
	maxRows := opts.MaxRows
	if maxRows <= 0 {
		maxRows = 1000
	}

	t := table.New(table.WithFocused(true))
	t.SetStyles(tableStyles())

	prompt := textinput.New()
	prompt.Prompt = "open: "
	prompt.Placeholder = "path to a .parquet or .csv file"

	form := make([]textinput.Model, 3)
	for i, label := range []string{"file: ", "table: ", "query: "} {
		ti := textinput.New()
		ti.Prompt = label
		form[i] = ti
	}
	form[2].Placeholder = "SELECT * FROM ..."

	return &Model{
		app:     a,
		policy:  opts.Policy,
		maxRows: maxRows,
		keys:    defaultKeyMap(),
		help:    help.New(),
		tbl:     t,
		spin:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		prompt:  prompt,
		form:    form,
		frame:   a.Frame(),
		repaint: a.Notifier().Subscribe(),
	}
}

// Close releases the repaint subscription.
func (m *Model) Close() {
	m.app.Notifier().Unsubscribe(m.repaint)
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func waitRepaint(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return repaintMsg{}
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, tick(), waitRepaint(m.repaint))
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.refresh()
		return m, tick()

	case repaintMsg:
		m.refresh()
		return m, waitRepaint(m.repaint)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// refresh advances the app and syncs the table with the new frame.
func (m *Model) refresh() {
	m.frame = m.app.Tick()
	m.syncTable()
	if m.width > 0 {
		m.resize()
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.frame.Popover != nil {
		switch msg.String() {
		case "esc", "enter", "q", " ":
			m.app.ClosePopover()
			m.frame = m.app.Frame()
		}
		return m, nil
	}

	switch m.mode {
	case modePrompt:
		return m.handlePrompt(msg)
	case modeQuery:
		return m.handleForm(msg)
	}

	if msg.Paste {
		m.handlePaste(string(msg.Runes))
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Open):
		m.mode = modePrompt
		m.prompt.SetValue("")
		return m, m.prompt.Focus()
	case key.Matches(msg, m.keys.Query):
		return m, m.openForm()
	case key.Matches(msg, m.keys.Left):
		m.moveFocus(-1)
		return m, nil
	case key.Matches(msg, m.keys.Right):
		m.moveFocus(1)
		return m, nil
	case key.Matches(msg, m.keys.Sort):
		if m.frame.Dimmed {
			return m, nil
		}
		if name, ok := m.focusedColumn(); ok {
			m.app.SortColumn(name)
			m.frame = m.app.Frame()
		}
		return m, nil
	case key.Matches(msg, m.keys.About):
		m.app.ShowAbout()
		m.frame = m.app.Frame()
		return m, nil
	case key.Matches(msg, m.keys.Settings):
		m.app.ShowSettings()
		m.frame = m.app.Frame()
		return m, nil
	}

	var cmd tea.Cmd
	m.tbl, cmd = m.tbl.Update(msg)
	return m, cmd
}

func (m *Model) handlePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Close):
		m.mode = modeTable
		m.prompt.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Apply):
		path := cleanPath(m.prompt.Value())
		m.mode = modeTable
		m.prompt.Blur()
		if path != "" {
			m.app.OpenFile(path)
			m.frame = m.app.Frame()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m *Model) openForm() tea.Cmd {
	pane := m.app.QueryPane()
	m.form[0].SetValue(pane.Filename)
	m.form[1].SetValue(pane.TableName)
	m.form[2].SetValue(pane.Query)
	m.mode = modeQuery
	m.field = 2
	return m.focusField()
}

func (m *Model) focusField() tea.Cmd {
	var cmd tea.Cmd
	for i := range m.form {
		if i == m.field {
			cmd = m.form[i].Focus()
		} else {
			m.form[i].Blur()
		}
	}
	return cmd
}

func (m *Model) handleForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Close):
		m.mode = modeTable
		m.form[m.field].Blur()
		return m, nil
	case key.Matches(msg, m.keys.Next):
		m.field = (m.field + 1) % len(m.form)
		return m, m.focusField()
	case key.Matches(msg, m.keys.Apply):
		m.app.SetQueryPane(app.QueryPane{
			Filename:  cleanPath(m.form[0].Value()),
			TableName: strings.TrimSpace(m.form[1].Value()),
			Query:     strings.TrimSpace(m.form[2].Value()),
		})
		if m.app.SubmitQuery() {
			m.mode = modeTable
			m.form[m.field].Blur()
			m.frame = m.app.Frame()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.form[m.field], cmd = m.form[m.field].Update(msg)
	return m, cmd
}

// handlePaste treats a pasted path to an existing file as a dropped file.
func (m *Model) handlePaste(s string) {
	path := cleanPath(s)
	if path == "" {
		return
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return
	}
	m.app.DropFile(path)
	m.refresh()
}

// cleanPath strips whitespace and the quotes terminals add around dropped paths.
func cleanPath(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	}
	return s
}

func (m *Model) moveFocus(delta int) {
	ds := m.frame.Dataset
	if ds == nil || ds.NumCols() == 0 {
		return
	}
	n := ds.NumCols()
	m.focusCol = (m.focusCol + delta + n) % n
	m.shownTag = ""
	m.syncTable()
}

func (m *Model) focusedColumn() (string, bool) {
	ds := m.frame.Dataset
	if ds == nil || m.focusCol >= ds.NumCols() {
		return "", false
	}
	return ds.ColumnNames()[m.focusCol], true
}

// syncTable rebuilds table rows when the dataset changes and headers when the
// sort or focus changes.
func (m *Model) syncTable() {
	ds := m.frame.Dataset
	if ds == nil {
		if m.shown != nil {
			m.tbl.SetRows(nil)
			m.tbl.SetColumns(nil)
			m.shown = nil
		}
		return
	}

	tag := headerTag(ds, m.focusCol)
	if ds == m.shown && tag == m.shownTag {
		return
	}

	if ds != m.shown && m.focusCol >= ds.NumCols() {
		m.focusCol = 0
		tag = headerTag(ds, m.focusCol)
	}

	cols := m.policy.Columns(ds.Schema())
	names := ds.ColumnNames()
	n := int(min(ds.NumRows(), int64(m.maxRows)))

	cells := make([][]string, n)
	for i := range cells {
		cells[i] = format.Row(ds.Record, cols, i)
	}

	columns := make([]table.Column, len(names))
	for j, name := range names {
		title := data.SortFor(ds.Filters.Sort, name).Label()
		if j == m.focusCol {
			title = "[" + title + "]"
		}
		width := lipgloss.Width(title)
		for _, row := range cells {
			width = max(width, lipgloss.Width(row[j]))
		}
		// One cell of slack for sort glyphs some terminals draw wide.
		columns[j] = table.Column{Title: title, Width: min(width+1, maxColumnWidth)}
	}

	rows := make([]table.Row, n)
	for i, row := range cells {
		r := make(table.Row, len(row))
		for j, cell := range row {
			r[j] = align(cell, columns[j].Width, cols[j].Align)
		}
		rows[i] = r
	}

	// Columns must be set before rows so the table doesn't index past them.
	m.tbl.SetRows(nil)
	m.tbl.SetColumns(columns)
	m.tbl.SetRows(rows)
	if ds != m.shown {
		m.tbl.GotoTop()
	}
	m.shown = ds
	m.shownTag = tag
}

func headerTag(ds *data.Dataset, focus int) string {
	label := ""
	if s := ds.Filters.Sort; s != nil {
		label = s.Label()
	}
	return fmt.Sprintf("%s|%d", label, focus)
}

func align(cell string, width int, a format.Alignment) string {
	if lipgloss.Width(cell) >= width {
		return cell
	}
	switch a {
	case format.AlignRight:
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, cell)
	case format.AlignCenter:
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, cell)
	default:
		return cell
	}
}

func (m *Model) resize() {
	w := m.width
	if m.frame.Metadata != nil && w > 100 {
		w -= sidePanelWidth
	}
	m.tbl.SetWidth(max(10, w))
	m.tbl.SetHeight(max(3, m.height-6))
}
