package midi

import (
	"fmt"
	"sync"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	gomidi "gitlab.com/gomidi/midi/v2"
)

// KeyboardInput listens to a MIDI keyboard and forwards note-ons
type KeyboardInput struct {
	name     string
	stopFunc func()
	noteChan chan NoteEvent

	mu     sync.Mutex
	closed bool
}

// ListenKeyboard opens the input port picked by sel.
func ListenKeyboard(sel PortSelector) (*KeyboardInput, error) {
	if sel.IsNone() {
		// no selection needs no scan
		_, err := sel.Resolve(nil)
		return nil, err
	}
	result, err := scan(ScanTimeout)
	if err != nil {
		return nil, fault.Wrap(ErrConnectionFailed, fmsg.With(err.Error()), ftag.With(ftag.Internal))
	}
	names := make([]string, len(result.inPorts))
	for i, p := range result.inPorts {
		names[i] = p.String()
	}
	idx, err := sel.Resolve(names)
	if err != nil {
		return nil, err
	}
	inPort := result.inPorts[idx]

	kb := &KeyboardInput{
		name:     inPort.String(),
		noteChan: make(chan NoteEvent, 32),
	}
	stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
		var channel, note, velocity uint8
		if msg.GetNoteOn(&channel, &note, &velocity) && velocity > 0 {
			kb.deliver(NoteEvent{Note: note, Velocity: velocity, Channel: channel})
		}
	})
	if err != nil {
		return nil, fault.Wrap(ErrConnectionFailed,
			fmsg.WithDesc(fmt.Sprintf("listen %s: %v", inPort.String(), err),
				fmt.Sprintf("Could not listen to %s", inPort.String())),
			ftag.With(ftag.Internal))
	}
	kb.stopFunc = stop
	return kb, nil
}

// deliver drops the note if the reader is behind
func (kb *KeyboardInput) deliver(ev NoteEvent) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	if kb.closed {
		return
	}
	select {
	case kb.noteChan <- ev:
	default:
	}
}

func (kb *KeyboardInput) Name() string {
	return kb.name
}

// NoteEvents is closed by Close.
func (kb *KeyboardInput) NoteEvents() <-chan NoteEvent {
	return kb.noteChan
}

// Close stops listening. Safe to call more than once.
func (kb *KeyboardInput) Close() error {
	kb.mu.Lock()
	if kb.closed {
		kb.mu.Unlock()
		return nil
	}
	kb.closed = true
	close(kb.noteChan)
	stop := kb.stopFunc
	kb.mu.Unlock()

	if stop != nil {
		stop()
	}
	return nil
}
