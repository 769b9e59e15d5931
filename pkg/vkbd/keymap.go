package vkbd

import (
	"github.com/charmbracelet/bubbles/key"
)

// keyMap holds the bindings handled by the host itself. Everything else is
// typed on the virtual keyboard.
type keyMap struct {
	Suggest  [3]key.Binding
	ClearAll key.Binding
	Copy     key.Binding
	Paste    key.Binding
	Done     key.Binding
	Quit     key.Binding
}

var defaultKeyMap = keyMap{
	Suggest: [3]key.Binding{
		key.NewBinding(key.WithKeys("alt+1"), key.WithHelp("alt+1-3", "use suggestion")),
		key.NewBinding(key.WithKeys("alt+2")),
		key.NewBinding(key.WithKeys("alt+3")),
	},
	ClearAll: key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "clear")),
	Copy:     key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy")),
	Paste:    key.NewBinding(key.WithKeys("ctrl+v"), key.WithHelp("ctrl+v", "paste")),
	Done:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "done")),
	Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Suggest[0], k.ClearAll, k.Copy, k.Paste, k.Done, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Suggest[0], k.Suggest[1], k.Suggest[2]},
		{k.ClearAll, k.Copy, k.Paste},
		{k.Done, k.Quit},
	}
}
