package tui

import "charm.land/bubbles/v2/key"

// keyMap represents key map data used by this package.
type keyMap struct {
	quit       key.Binding
	reload     key.Binding
	toggleHelp key.Binding
	nextBoard  key.Binding
	prevBoard  key.Binding
	peek       key.Binding
	yank       key.Binding
	closePeek  key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		toggleHelp: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		nextBoard:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next board")),
		prevBoard:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous board")),
		peek:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "peek task")),
		yank:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yank task id")),
		closePeek:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	}
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.peek, k.yank, k.nextBoard, k.reload, k.toggleHelp, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.peek, k.yank, k.closePeek},
		{k.nextBoard, k.prevBoard, k.reload},
		{k.toggleHelp, k.quit},
	}
}
