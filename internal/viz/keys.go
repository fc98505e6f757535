package viz

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit  key.Binding
	Pause key.Binding
	Step  key.Binding
	Reset key.Binding
	Wind  key.Binding

	GravityUp     key.Binding
	GravityDown   key.Binding
	StiffnessUp   key.Binding
	StiffnessDown key.Binding
	RestUp        key.Binding
	RestDown      key.Binding

	ZoomIn  key.Binding
	ZoomOut key.Binding
	Left    key.Binding
	Right   key.Binding
	Up      key.Binding
	Down    key.Binding
	Fit     key.Binding
	Theme   key.Binding
	Record  key.Binding
	Help    key.Binding
}

var keys = keyMap{
	Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Pause: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause")),
	Step:  key.NewBinding(key.WithKeys("."), key.WithHelp(".", "single tick")),
	Reset: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rest pose")),
	Wind:  key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "wind")),

	GravityUp:     key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "gravity +")),
	GravityDown:   key.NewBinding(key.WithKeys("["), key.WithHelp("[", "gravity -")),
	StiffnessUp:   key.NewBinding(key.WithKeys(")"), key.WithHelp(")", "stiffness +")),
	StiffnessDown: key.NewBinding(key.WithKeys("("), key.WithHelp("(", "stiffness -")),
	RestUp:        key.NewBinding(key.WithKeys("}"), key.WithHelp("}", "rest length +")),
	RestDown:      key.NewBinding(key.WithKeys("{"), key.WithHelp("{", "rest length -")),

	ZoomIn:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
	ZoomOut: key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
	Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "pan left")),
	Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "pan right")),
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "pan up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "pan down")),
	Fit:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "refit")),
	Theme:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
	Record:  key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "gif")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Reset, k.Wind, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pause, k.Step, k.Reset, k.Wind},
		{k.GravityUp, k.GravityDown, k.StiffnessUp, k.StiffnessDown, k.RestUp, k.RestDown},
		{k.ZoomIn, k.ZoomOut, k.Fit},
		{k.Left, k.Right, k.Up, k.Down},
		{k.Theme, k.Record, k.Quit},
	}
}
