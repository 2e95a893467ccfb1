package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up        key.Binding
	down      key.Binding
	upload    key.Binding
	translate key.Binding
	export    key.Binding
	local     key.Binding
	refresh   key.Binding
	next      key.Binding
	submit    key.Binding
	save      key.Binding
	back      key.Binding
	dismiss   key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		upload:    key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "upload")),
		translate: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "translate")),
		export:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "epub")),
		local:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "markdown")),
		refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		next:      key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next field")),
		submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		save:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "submit")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		dismiss:   key.NewBinding(key.WithKeys("enter", "esc", " "), key.WithHelp("enter", "ok")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.refresh},
		{k.upload, k.translate, k.export, k.local},
		{k.next, k.submit, k.save, k.back, k.quit},
	}
}
