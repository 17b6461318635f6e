package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the issue list view.
type KeyMap struct {
	// Navigation
	Up   key.Binding
	Down key.Binding

	// Actions
	Open        key.Binding
	Browser     key.Binding
	Wiki        key.Binding
	Comment     key.Binding
	ToggleState key.Binding
	NewIssue    key.Binding
	CycleFilter key.Binding
	Repos       key.Binding
	Refresh     key.Binding
	Settings    key.Binding
	Help        key.Binding
	Quit        key.Binding
	Back        key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous issue"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next issue"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "view issue"),
		),
		Browser: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open in browser"),
		),
		Wiki: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "open wiki"),
		),
		Comment: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "comment"),
		),
		ToggleState: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "close/reopen"),
		),
		NewIssue: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new issue"),
		),
		CycleFilter: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "cycle open/closed/all"),
		),
		Repos: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "repositories"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "refresh"),
		),
		Settings: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "settings"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
	}
}

// ShortHelp returns key bindings to be shown in the mini help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.NewIssue, k.Refresh, k.Help, k.Quit}
}

// FullHelp returns key bindings for the expanded help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open, k.Back},
		{k.Comment, k.ToggleState, k.NewIssue, k.CycleFilter},
		{k.Browser, k.Wiki, k.Repos, k.Refresh},
		{k.Settings, k.Help, k.Quit},
	}
}
