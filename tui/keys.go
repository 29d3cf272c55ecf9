package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"maestro/trainer"
)

func newKey(help string, keyboardKey ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keyboardKey...), key.WithHelp(keyboardKey[0], help))
}

type keyMap struct {
	Advance   key.Binding
	Arpeggio  key.Binding
	Cancel    key.Binding
	Back      key.Binding
	Quit      key.Binding
	Silent    key.Binding
	NextInput key.Binding
	Rescan    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Advance:   key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "next")),
		Arpeggio:  newKey("arpeggio", "a"),
		Cancel:    newKey("stop", "esc"),
		Back:      newKey("back", "b"),
		Quit:      newKey("quit", "q", "ctrl+c"),
		Silent:    newKey("no output", "n"),
		NextInput: newKey("next input", "i"),
		Rescan:    newKey("rescan", "r"),
	}
}

// keyHelp adapts a binding set to help.KeyMap
type keyHelp []key.Binding

func (k keyHelp) ShortHelp() []key.Binding  { return k }
func (k keyHelp) FullHelp() [][]key.Binding { return [][]key.Binding{k} }

func (m Model) helpKeys() keyHelp {
	k := m.keys
	switch m.screen {
	case playScreen:
		return keyHelp{k.Cancel, k.Quit}
	case walkScreen:
		if m.walk != nil && m.walk.Kind() == trainer.ChordWalk {
			return keyHelp{k.Advance, k.Arpeggio, k.Cancel, k.Quit}
		}
		return keyHelp{k.Advance, k.Cancel, k.Quit}
	case devicesScreen:
		return keyHelp{k.Silent, k.NextInput, k.Rescan, k.Back, k.Quit}
	case mainScreen:
		return keyHelp{k.Quit}
	}
	return keyHelp{k.Back, k.Quit}
}
