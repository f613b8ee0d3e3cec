package editor

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the editor key bindings.
type KeyMap struct {
	Complete key.Binding
	Accept   key.Binding
	Close    key.Binding
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Home     key.Binding
	End      key.Binding
	Delete   key.Binding
	Newline  key.Binding
	Save     key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the default bindings. Tab both opens the popup and
// accepts from it.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Complete: key.NewBinding(key.WithKeys("ctrl+@", "tab"), key.WithHelp("ctrl+space", "complete")),
		Accept:   key.NewBinding(key.WithKeys("enter", "tab"), key.WithHelp("enter", "accept")),
		Close:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Up:       key.NewBinding(key.WithKeys("up")),
		Down:     key.NewBinding(key.WithKeys("down")),
		Left:     key.NewBinding(key.WithKeys("left")),
		Right:    key.NewBinding(key.WithKeys("right")),
		Home:     key.NewBinding(key.WithKeys("home", "ctrl+a")),
		End:      key.NewBinding(key.WithKeys("end", "ctrl+e")),
		Delete:   key.NewBinding(key.WithKeys("backspace")),
		Newline:  key.NewBinding(key.WithKeys("enter")),
		Save:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save & exit")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "discard & exit")),
	}
}
