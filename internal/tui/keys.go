package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the global bindings. Tab specific keys (ledger search,
// settings editing) are matched in their own update functions.
type keyMap struct {
	Quit    key.Binding
	Help    key.Binding
	Retrain key.Binding
	Prev    key.Binding
	Next    key.Binding
	Jump    key.Binding
	Up      key.Binding
	Down    key.Binding
	Ends    key.Binding
	Filter  key.Binding
	Enter   key.Binding
	Cancel  key.Binding
}

var keys = keyMap{
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
	Retrain: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "sync imports and retrain")),
	Prev:    key.NewBinding(key.WithKeys("left", "shift+tab"), key.WithHelp("←", "previous tab")),
	Next:    key.NewBinding(key.WithKeys("right", "tab"), key.WithHelp("→", "next tab")),
	Jump:    key.NewBinding(key.WithKeys("o", "f", "l", "c", "x"), key.WithHelp("o f l c x", "jump to tab")),
	Up:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k ↑", "move up")),
	Down:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j ↓", "move down")),
	Ends:    key.NewBinding(key.WithKeys("g", "G"), key.WithHelp("g G", "first / last month")),
	Filter:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter ledger")),
	Enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit setting")),
	Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear filter / cancel")),
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Retrain, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Jump, k.Prev, k.Next, k.Up, k.Down, k.Ends},
		{k.Filter, k.Enter, k.Cancel, k.Retrain, k.Help, k.Quit},
	}
}
