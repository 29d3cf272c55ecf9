package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"maestro/midi"
	"maestro/music"
	"maestro/trainer"
	"maestro/widgets"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	th := m.opts.Theme
	headerStyle := lipgloss.NewStyle().Foreground(th.Accent()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(th.Muted())
	noticeStyle := lipgloss.NewStyle().Foreground(th.Warning())

	var body string
	switch m.screen {
	case mainScreen:
		body = m.mainMenu()
	case scalesScreen:
		body = widgets.RenderMenu("Scale Learning Menu", entrySections(m.opts.Catalog.Scales()))
	case chordsScreen:
		body = widgets.RenderMenu("Chord Progression Learning Menu", entrySections(m.opts.Catalog.Progressions()))
	case piecesScreen:
		body = widgets.RenderMenu("Mozart Pieces Menu", entrySections(m.opts.Catalog.Pieces()))
	case devicesScreen:
		body = m.devicesView()
	case playScreen:
		body = m.playView()
	case walkScreen:
		body = m.walkView()
	}

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(headerStyle.Render("Maestro Piano Learning Program"))
	out.WriteString(dimStyle.Render("  " + m.outputLabel()))
	out.WriteString("\n\n")
	out.WriteString(body)
	out.WriteString("\n")
	if m.notice != "" {
		out.WriteString("\n")
		out.WriteString(noticeStyle.Render(m.notice))
		out.WriteString("\n")
	}
	out.WriteString("\n")
	out.WriteString(m.help.View(m.helpKeys()))
	return out.String()
}

func (m Model) outputLabel() string {
	prefs := m.opts.Prefs
	if prefs.Silent() {
		return "output: none"
	}
	label := "output: " + prefs.Output().String()
	if in := prefs.Input(); !in.IsNone() {
		label += "  input: " + in.String()
	}
	return label
}

func (m Model) mainMenu() string {
	return widgets.RenderMenu("Main Menu", []widgets.KeySection{{
		Keys: []widgets.KeyBinding{
			{Key: "1", Desc: "List MIDI Devices"},
			{Key: "2", Desc: "Learn Scales"},
			{Key: "3", Desc: "Learn Chord Progressions"},
			{Key: "4", Desc: "Play Mozart Pieces"},
		},
	}})
}

// only the first nine entries get a key
func entrySections(entries []music.Entry) []widgets.KeySection {
	var keys []widgets.KeyBinding
	for i, e := range entries {
		if i >= 9 {
			break
		}
		desc := e.Name
		if e.Description != "" {
			desc += " - " + e.Description
		}
		keys = append(keys, widgets.KeyBinding{Key: fmt.Sprint(i + 1), Desc: desc})
	}
	return []widgets.KeySection{{Keys: keys}}
}

func (m Model) devicesView() string {
	if m.scanning {
		return "Scanning MIDI ports..."
	}
	prefs := m.opts.Prefs
	var b strings.Builder
	b.WriteString(widgets.RenderMenu("Available MIDI Output Devices", portSection(m.ports.Outs, prefs.Output(), !prefs.Silent())))
	b.WriteString("\n\n")
	b.WriteString(widgets.RenderMenu("Available MIDI Input Devices", portSection(m.ports.Ins, prefs.Input(), true)))
	return b.String()
}

func portSection(ports []midi.Port, selected midi.PortSelector, enabled bool) []widgets.KeySection {
	if len(ports) == 0 {
		return []widgets.KeySection{{Keys: []widgets.KeyBinding{{Key: "", Desc: "(none)"}}}}
	}
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.Name
	}
	chosen := -1
	if enabled {
		if i, err := selected.Resolve(names); err == nil {
			chosen = i
		}
	}

	var keys []widgets.KeyBinding
	for i, p := range ports {
		desc := p.Name
		if i == chosen {
			desc += "  *"
		}
		keys = append(keys, widgets.KeyBinding{Key: fmt.Sprint(p.Index), Desc: desc})
	}
	return []widgets.KeySection{{Keys: keys}}
}

func (m Model) keyboard(active []uint8) string {
	style := lipgloss.NewStyle().Foreground(m.opts.Theme.Active())
	return widgets.RenderKeyboard(active).Highlight(func(s string) string { return style.Render(s) })
}

func (m Model) playView() string {
	if m.player == nil {
		return ""
	}
	active := m.player.Active()

	var b strings.Builder
	fmt.Fprintf(&b, "Playing: %s\n", m.player.Sequence().Name)
	b.WriteString("Press ESC to stop playing\n\n")
	b.WriteString(m.keyboard(active))
	b.WriteString("\n\n")
	if len(active) > 0 {
		b.WriteString(widgets.PlayingStatus(active[0]))
	}
	return b.String()
}

func (m Model) walkView() string {
	w := m.walk
	if w == nil {
		return ""
	}

	var b strings.Builder
	if w.Kind() == trainer.ChordWalk {
		fmt.Fprintf(&b, "Learning %s Chord Progression\n", w.Name())
		b.WriteString("Press SPACE to advance through the chord progression. Press ESC to exit.\n\n")
	} else {
		fmt.Fprintf(&b, "Learning %s\n", w.Name())
		b.WriteString("Press the keys in sequence. Press ESC to exit.\n\n")
	}
	b.WriteString(m.keyboard(w.Active()))
	b.WriteString("\n\n")
	b.WriteString(w.Status())
	return b.String()
}
