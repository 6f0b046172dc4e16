package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up        key.Binding
	down      key.Binding
	enter     key.Binding
	tab       key.Binding
	back      key.Binding
	add       key.Binding
	refresh   key.Binding
	open      key.Binding
	login     key.Binding
	logout    key.Binding
	quit      key.Binding
	interrupt key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		tab:       key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "switch field")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		add:       key.NewBinding(key.WithKeys("a", "/"), key.WithHelp("a", "add show")),
		refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		open:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open on TVmaze")),
		login:     key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "log in")),
		logout:    key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "log out")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		interrupt: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.add, k.refresh, k.open},
		{k.logout, k.quit},
	}
}
