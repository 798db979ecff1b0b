package keys

import "github.com/charmbracelet/bubbles/key"

// UIKeys are the operator interface bindings
type UIKeys struct {
	CommonKeys
	Sync     key.Binding
	Record   key.Binding
	NextPort key.Binding
	PrevPort key.Binding
	Output   key.Binding
	Enter    key.Binding
	Up       key.Binding
	Down     key.Binding
}

func NewUIKeys() UIKeys {
	return UIKeys{
		CommonKeys: NewCommonKeys(),
		Sync: key.NewBinding(
			key.WithKeys("s", "S"),
			key.WithHelp("s", "sync time"),
		),
		Record: key.NewBinding(
			key.WithKeys("r", "R"),
			key.WithHelp("r", "start/stop recording"),
		),
		NextPort: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next port"),
		),
		PrevPort: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous port"),
		),
		Output: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "set output path"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

func (k UIKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Sync, k.Record, k.NextPort, k.Help, k.Quit}
}

func (k UIKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Sync, k.Record, k.Output},
		{k.NextPort, k.PrevPort, k.Up, k.Down},
		{k.Enter, k.Escape, k.Help, k.Quit},
	}
}
