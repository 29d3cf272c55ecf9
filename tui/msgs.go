package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"maestro/midi"
	"maestro/trainer"
)

// Timed messages carry the generation they were scheduled in. Anything
// that stops or restarts timing bumps the generation, so late ticks from
// a cancelled playback or an earlier advance are dropped.
type tickMsg struct{ gen int }
type releaseMsg struct{ gen int }
type arpeggioMsg struct{ gen int }

// startMsg opens a screen directly, for the CLI subcommands
type startMsg struct {
	kind Kind
	key  string
}

type noteMsg struct {
	src NoteSource
	ev  midi.NoteEvent
}

type inputClosedMsg struct{}

type portsMsg struct {
	ports midi.Ports
	err   error
}

func after(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return msg })
}

// ListenForNotes waits for the next note from a MIDI keyboard
func ListenForNotes(src NoteSource) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-src.NoteEvents()
		if !ok {
			return inputClosedMsg{}
		}
		return noteMsg{src: src, ev: ev}
	}
}

func scanPorts(list func() (midi.Ports, error)) tea.Cmd {
	return func() tea.Msg {
		ports, err := list()
		return portsMsg{ports: ports, err: err}
	}
}

// sinkMsg delivers the output opened for a start request
type sinkMsg struct {
	req  *startMsg
	sink midi.Sink
	err  error
}

// inputMsg delivers the keyboard opened for a walk
type inputMsg struct {
	walk *trainer.Walk
	src  NoteSource
	err  error
}

// openOutput opens the output port off the event loop; a port scan can
// take seconds.
func openOutput(req *startMsg, open func() (midi.Sink, error)) tea.Cmd {
	return func() tea.Msg {
		sink, err := open()
		return sinkMsg{req: req, sink: sink, err: err}
	}
}

func openInput(w *trainer.Walk, sel midi.PortSelector, listen func(midi.PortSelector) (NoteSource, error)) tea.Cmd {
	return func() tea.Msg {
		src, err := listen(sel)
		return inputMsg{walk: w, src: src, err: err}
	}
}
