package midi

import (
	"bytes"
	"errors"
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"
)

type wire struct {
	msgs   [][]byte
	closes int
	fail   error
}

func (w *wire) send(msg gomidi.Message) error {
	if w.fail != nil {
		return w.fail
	}
	w.msgs = append(w.msgs, append([]byte(nil), msg...))
	return nil
}

func (w *wire) release() error {
	w.closes++
	return nil
}

func TestSessionWireFormat(t *testing.T) {
	w := &wire{}
	s := newSession("Test Synth", w.send, w.release)

	if err := s.NoteOn(67, 64); err != nil {
		t.Fatalf("NoteOn: %v", err)
	}
	if err := s.NoteOff(67); err != nil {
		t.Fatalf("NoteOff: %v", err)
	}

	want := [][]byte{
		{NoteOn, 67, 64},
		{NoteOff, 67, 0},
	}
	if len(w.msgs) != len(want) {
		t.Fatalf("got %d messages, want %d", len(w.msgs), len(want))
	}
	for i := range want {
		if !bytes.Equal(w.msgs[i], want[i]) {
			t.Errorf("message %d = % X, want % X", i, w.msgs[i], want[i])
		}
	}
}

func TestSessionChannel(t *testing.T) {
	w := &wire{}
	s := newSession("Test Synth", w.send, w.release, WithChannel(3))
	s.NoteOn(60, 100)
	if w.msgs[0][0] != NoteOn|3 {
		t.Errorf("status byte = %X, want %X", w.msgs[0][0], NoteOn|3)
	}
}

func TestSessionCloseIdempotent(t *testing.T) {
	w := &wire{}
	s := newSession("Test Synth", w.send, w.release)

	for i := 0; i < 3; i++ {
		if err := s.Close(); err != nil {
			t.Fatalf("Close #%d: %v", i+1, err)
		}
	}
	if w.closes != 1 {
		t.Errorf("port released %d times, want 1", w.closes)
	}
	if err := s.NoteOn(60, 64); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("NoteOn after close = %v, want ErrSessionClosed", err)
	}
}

func TestSessionSendErrorSurfaces(t *testing.T) {
	boom := errors.New("boom")
	w := &wire{fail: boom}
	s := newSession("Test Synth", w.send, w.release)
	if err := s.NoteOn(60, 64); !errors.Is(err, boom) {
		t.Errorf("NoteOn = %v, want boom", err)
	}
}
