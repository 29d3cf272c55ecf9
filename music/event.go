package music

import (
	"errors"
	"fmt"
	"time"
)

// MIDI data bytes are 7-bit
const MaxValue = 127

var (
	ErrPitchRange       = errors.New("pitch out of range 0-127")
	ErrVelocityRange    = errors.New("velocity out of range 0-127")
	ErrNegativeDuration = errors.New("negative duration")
)

// NoteEvent is a single timed note. Fields are unexported so a NoteEvent
// can only come from NewNoteEvent and never changes afterwards.
type NoteEvent struct {
	pitch      uint8
	velocity   uint8
	durationMs uint32
}

// NewNoteEvent validates the raw values and builds an event.
func NewNoteEvent(pitch, velocity, durationMs int) (NoteEvent, error) {
	if pitch < 0 || pitch > MaxValue {
		return NoteEvent{}, fmt.Errorf("%w: %d", ErrPitchRange, pitch)
	}
	if velocity < 0 || velocity > MaxValue {
		return NoteEvent{}, fmt.Errorf("%w: %d", ErrVelocityRange, velocity)
	}
	if durationMs < 0 {
		return NoteEvent{}, fmt.Errorf("%w: %d", ErrNegativeDuration, durationMs)
	}
	return NoteEvent{
		pitch:      uint8(pitch),
		velocity:   uint8(velocity),
		durationMs: uint32(durationMs),
	}, nil
}

// MustNoteEvent is NewNoteEvent for compiled-in tables.
func MustNoteEvent(pitch, velocity, durationMs int) NoteEvent {
	e, err := NewNoteEvent(pitch, velocity, durationMs)
	if err != nil {
		panic(err)
	}
	return e
}

func (e NoteEvent) Pitch() uint8    { return e.pitch }
func (e NoteEvent) Velocity() uint8 { return e.velocity }

// Duration is the sounding length before the note-off.
func (e NoteEvent) Duration() time.Duration {
	return time.Duration(e.durationMs) * time.Millisecond
}

func (e NoteEvent) String() string {
	return fmt.Sprintf("%s vel=%d %dms", NoteName(e.pitch), e.velocity, e.durationMs)
}

// NamedSequence is a melody in playback order
type NamedSequence struct {
	Name        string
	Description string
	Events      []NoteEvent
}

func (s NamedSequence) Len() int { return len(s.Events) }

// Scale is an ascending pitch ladder
type Scale struct {
	Name    string
	Pitches []uint8
}

// Steps returns one single-pitch step per scale degree.
func (s Scale) Steps() [][]uint8 {
	steps := make([][]uint8, len(s.Pitches))
	for i, p := range s.Pitches {
		steps[i] = []uint8{p}
	}
	return steps
}

// ChordProgression is an ordered list of chords. Pitches within a chord
// sound together; their order is the arpeggio order.
type ChordProgression struct {
	Name   string
	Chords [][]uint8
	Labels []string // roman numerals, parallel to Chords
}

// Label returns the numeral for chord i, or its 1-based position.
func (c ChordProgression) Label(i int) string {
	if i >= 0 && i < len(c.Labels) && c.Labels[i] != "" {
		return c.Labels[i]
	}
	return fmt.Sprintf("%d", i+1)
}

// Steps returns a copy of the chords.
func (c ChordProgression) Steps() [][]uint8 {
	steps := make([][]uint8, len(c.Chords))
	for i, chord := range c.Chords {
		steps[i] = append([]uint8(nil), chord...)
	}
	return steps
}

// Cursor is a wrapping index into a sequence of fixed length.
type Cursor struct {
	pos    int
	length int
}

func NewCursor(length int) Cursor {
	return Cursor{length: length}
}

func (c Cursor) Pos() int    { return c.pos }
func (c Cursor) Length() int { return c.length }

// Advance moves forward one step, wrapping to 0 after the last index.
func (c Cursor) Advance() Cursor {
	if c.length < 1 {
		return c
	}
	c.pos = (c.pos + 1) % c.length
	return c
}
