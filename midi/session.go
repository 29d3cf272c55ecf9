package midi

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	gomidi "gitlab.com/gomidi/midi/v2"

	"maestro/debug"
)

var ErrSessionClosed = errors.New("MIDI session closed")

// Session is an exclusive handle to an open MIDI output port. It is owned
// by the caller that opened it and must not be shared between concurrent
// playbacks.
type Session struct {
	name    string
	channel uint8
	send    func(msg gomidi.Message) error
	release func() error

	mu     sync.Mutex
	closed bool
}

// SessionOption configures Open
type SessionOption func(*Session)

// WithChannel sets the MIDI channel (0-15) notes are sent on.
func WithChannel(ch uint8) SessionOption {
	return func(s *Session) {
		s.channel = ch & 0x0F
	}
}

// Open connects to the output port picked by sel. Errors wrap
// ErrNoSuchPort or ErrConnectionFailed.
func Open(sel PortSelector, opts ...SessionOption) (*Session, error) {
	if sel.IsNone() {
		// no selection needs no scan
		_, err := sel.Resolve(nil)
		return nil, err
	}
	result, err := scan(ScanTimeout)
	if err != nil {
		return nil, fault.Wrap(ErrConnectionFailed, fmsg.With(err.Error()), ftag.With(ftag.Internal))
	}

	names := make([]string, len(result.outPorts))
	for i, p := range result.outPorts {
		names[i] = p.String()
	}
	idx, err := sel.Resolve(names)
	if err != nil {
		return nil, err
	}

	port := result.outPorts[idx]
	send, err := gomidi.SendTo(port)
	if err != nil {
		return nil, fault.Wrap(ErrConnectionFailed,
			fmsg.WithDesc(fmt.Sprintf("open %s: %v", port.String(), err),
				fmt.Sprintf("Could not connect to %s", port.String())),
			ftag.With(ftag.Internal))
	}

	debug.Log("midi", "session opened port=%s", port.String())
	return newSession(port.String(), send, port.Close, opts...), nil
}

func newSession(name string, send func(gomidi.Message) error, release func() error, opts ...SessionOption) *Session {
	s := &Session{
		name:    name,
		send:    send,
		release: release,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name is the port name the session is connected to
func (s *Session) Name() string {
	return s.name
}

func (s *Session) NoteOn(pitch, velocity uint8) error {
	return s.write(gomidi.NoteOn(s.channel, pitch&0x7F, velocity&0x7F))
}

func (s *Session) NoteOff(pitch uint8) error {
	return s.write(gomidi.NoteOff(s.channel, pitch&0x7F))
}

func (s *Session) write(msg gomidi.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	return s.send(msg)
}

// Close releases the port. Safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	debug.Log("midi", "session closed port=%s", s.name)
	if s.release == nil {
		return nil
	}
	return s.release()
}
