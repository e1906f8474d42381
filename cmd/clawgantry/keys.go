package main

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the console key bindings. Everything but Quit only acts on a
// simulated machine.
type keyMap struct {
	Quit    key.Binding
	Left    key.Binding
	Right   key.Binding
	Up      key.Binding
	Down    key.Binding
	Center  key.Binding
	Confirm key.Binding
	Blue    key.Binding
	Green   key.Binding
	Catch   key.Binding
	Exit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "right"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "back"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "forward"),
		),
		Center: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "center"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Blue: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "blue card"),
		),
		Green: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "green card"),
		),
		Catch: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "catch next"),
		),
		Exit: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "exit button"),
		),
	}
}

// ShortHelp lists the bindings shown in the help line.
func (k keyMap) ShortHelp(sim bool) []key.Binding {
	if !sim {
		return []key.Binding{k.Quit}
	}
	return []key.Binding{k.Quit, k.Left, k.Right, k.Up, k.Down, k.Center, k.Confirm, k.Blue, k.Green, k.Catch, k.Exit}
}
