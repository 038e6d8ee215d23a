package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Open     key.Binding
	Query    key.Binding
	Left     key.Binding
	Right    key.Binding
	Sort     key.Binding
	About    key.Binding
	Settings key.Binding
	Close    key.Binding
	Apply    key.Binding
	Next     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Open:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open")),
		Query:    key.NewBinding(key.WithKeys("/", "e"), key.WithHelp("/", "query")),
		Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "column")),
		Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "column")),
		Sort:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		About:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "about")),
		Settings: key.NewBinding(key.WithKeys(","), key.WithHelp(",", "settings")),
		Close:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Apply:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
		Next:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) tableHelp() []key.Binding {
	return []key.Binding{k.Open, k.Query, k.Left, k.Right, k.Sort, k.About, k.Settings, k.Quit}
}

func (k keyMap) formHelp() []key.Binding {
	return []key.Binding{k.Next, k.Apply, k.Close}
}
