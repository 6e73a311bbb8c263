package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the bindings handled by the root model.
type KeyMap struct {
	Quit        key.Binding
	Back        key.Binding
	SwitchPane  key.Binding
	CycleLayout key.Binding
}

var Keys = KeyMap{
	Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Back:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	SwitchPane:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
	CycleLayout: key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "toggle layout")),
}
