package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle     key.Binding
	Restart    key.Binding
	Faster     key.Binding
	Slower     key.Binding
	Higher     key.Binding
	Lower      key.Binding
	ResetVoice key.Binding
	Copy       key.Binding
	Edit       key.Binding
	Up         key.Binding
	Down       key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Toggle:     key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "play/pause")),
		Restart:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
		Faster:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "faster")),
		Slower:     key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "slower")),
		Higher:     key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "higher pitch")),
		Lower:      key.NewBinding(key.WithKeys("["), key.WithHelp("[", "lower pitch")),
		ResetVoice: key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "reset voice")),
		Copy:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy word")),
		Edit:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Faster, k.Slower, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Restart, k.Copy, k.Edit},
		{k.Faster, k.Slower, k.Higher, k.Lower, k.ResetVoice},
		{k.Up, k.Down, k.Help, k.Quit},
	}
}
