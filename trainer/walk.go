package trainer

import (
	"slices"
	"time"

	"maestro/debug"
	"maestro/midi"
	"maestro/music"
	"maestro/widgets"
)

// Kind of walk-through
type Kind int

const (
	ScaleWalk Kind = iota
	ChordWalk
)

const (
	DefaultHold     = 500 * time.Millisecond
	DefaultArpeggio = 300 * time.Millisecond
	DefaultVelocity = 64
)

// Walk steps through a scale or chord progression one advance at a time.
// A scale is a walk over single-pitch steps. The sink is optional: without
// one the cursor and display behave the same and nothing is sent.
//
// Walk does no timing itself. Advance and the arpeggio calls return how
// long the notes should hold; the owner calls Release (or NextArpeggio)
// when that time is up.
type Walk struct {
	kind   Kind
	name   string
	steps  [][]uint8
	labels []string
	cursor music.Cursor

	sink     midi.Sink
	velocity uint8
	hold     time.Duration
	arpeggio time.Duration

	sounding []uint8
	pressed  map[uint8]bool
	arpIndex int // -1 when not arpeggiating
	done     bool
}

type Option func(*Walk)

func WithHold(d time.Duration) Option {
	return func(w *Walk) {
		if d > 0 {
			w.hold = d
		}
	}
}

func WithArpeggio(d time.Duration) Option {
	return func(w *Walk) {
		if d > 0 {
			w.arpeggio = d
		}
	}
}

func WithVelocity(v uint8) Option {
	return func(w *Walk) {
		w.velocity = v & 0x7F
	}
}

// NewScaleWalk walks the scale degrees. sink may be nil.
func NewScaleWalk(s music.Scale, sink midi.Sink, opts ...Option) *Walk {
	return newWalk(ScaleWalk, s.Name, s.Steps(), nil, sink, opts)
}

// NewChordWalk walks the chords of a progression. sink may be nil.
func NewChordWalk(p music.ChordProgression, sink midi.Sink, opts ...Option) *Walk {
	labels := make([]string, len(p.Chords))
	for i := range labels {
		labels[i] = p.Label(i)
	}
	return newWalk(ChordWalk, p.Name, p.Steps(), labels, sink, opts)
}

func newWalk(kind Kind, name string, steps [][]uint8, labels []string, sink midi.Sink, opts []Option) *Walk {
	w := &Walk{
		kind:     kind,
		name:     name,
		steps:    steps,
		labels:   labels,
		cursor:   music.NewCursor(len(steps)),
		sink:     sink,
		velocity: DefaultVelocity,
		hold:     DefaultHold,
		arpeggio: DefaultArpeggio,
		pressed:  make(map[uint8]bool),
		arpIndex: -1,
	}
	for _, opt := range opts {
		opt(w)
	}
	debug.Log("trainer", "walk %q steps=%d silent=%v", name, len(steps), sink == nil)
	return w
}

func (w *Walk) Kind() Kind   { return w.kind }
func (w *Walk) Name() string { return w.name }
func (w *Walk) Len() int     { return len(w.steps) }
func (w *Walk) Pos() int     { return w.cursor.Pos() }
func (w *Walk) Done() bool   { return w.done }
func (w *Walk) Silent() bool { return w.sink == nil }

// Current returns the pitches at the cursor.
func (w *Walk) Current() []uint8 {
	if len(w.steps) == 0 {
		return nil
	}
	return w.steps[w.cursor.Pos()]
}

// Sounding returns the pitches currently held on the sink.
func (w *Walk) Sounding() []uint8 {
	return w.sounding
}

// Active is what the keyboard should highlight: the arpeggio note while
// arpeggiating, the current step otherwise.
func (w *Walk) Active() []uint8 {
	if w.arpIndex >= 0 {
		return []uint8{w.Current()[w.arpIndex]}
	}
	return w.Current()
}

// Status is the position line shown under the keyboard.
func (w *Walk) Status() string {
	cur := w.Current()
	if len(cur) == 0 {
		return ""
	}
	if w.kind == ScaleWalk {
		return widgets.NoteStatus(cur[0], w.Pos(), w.Len())
	}
	return widgets.ChordStatus(w.labels[w.Pos()], cur, w.Pos(), w.Len())
}

// Advance sounds the current step and moves the cursor forward, wrapping
// after the last step. Notes still held from a previous advance are
// released first. It returns how long to hold before Release, or zero
// when nothing was sounded.
func (w *Walk) Advance() time.Duration {
	if w.done || len(w.steps) == 0 {
		return 0
	}
	w.Release()
	w.arpIndex = -1

	var hold time.Duration
	if w.sink != nil {
		w.strike(w.Current())
		hold = w.hold
	}
	w.move()
	return hold
}

// Press records a note played on a MIDI keyboard. Once every pitch of
// the current step is down the walk advances without echoing the notes.
// It reports whether the walk advanced.
func (w *Walk) Press(pitch uint8) bool {
	if w.done || len(w.steps) == 0 {
		return false
	}
	cur := w.Current()
	if !slices.Contains(cur, pitch) {
		return false
	}
	w.pressed[pitch] = true
	for _, p := range cur {
		if !w.pressed[p] {
			return false
		}
	}

	w.Release()
	w.arpIndex = -1
	w.move()
	return true
}

// Release turns off any held notes.
func (w *Walk) Release() {
	for _, p := range w.sounding {
		if err := w.sink.NoteOff(p); err != nil {
			debug.Warn("midi", "note off %d dropped: %v", p, err)
		}
	}
	w.sounding = nil
}

// Arpeggiate starts playing the current chord one note at a time. It
// returns the time each note holds; call NextArpeggio after it.
func (w *Walk) Arpeggiate() time.Duration {
	if w.done || w.kind != ChordWalk || len(w.Current()) == 0 {
		return 0
	}
	w.Release()
	w.arpIndex = 0
	w.strikeArpeggio()
	return w.arpeggio
}

// NextArpeggio moves to the next chord note. It returns false once the
// arpeggio has run through the chord.
func (w *Walk) NextArpeggio() (time.Duration, bool) {
	if w.arpIndex < 0 {
		return 0, false
	}
	w.Release()
	w.arpIndex++
	if w.done || w.arpIndex >= len(w.Current()) {
		w.arpIndex = -1
		return 0, false
	}
	w.strikeArpeggio()
	return w.arpeggio, true
}

// Arpeggiating reports whether an arpeggio is in progress
func (w *Walk) Arpeggiating() bool {
	return w.arpIndex >= 0
}

// Cancel releases held notes and closes the sink. The walk ignores
// further input afterwards.
func (w *Walk) Cancel() {
	if w.done {
		return
	}
	w.Release()
	w.arpIndex = -1
	w.done = true
	if w.sink != nil {
		if err := w.sink.Close(); err != nil {
			debug.Warn("midi", "close: %v", err)
		}
		w.sink = nil
	}
	debug.Log("trainer", "walk %q cancelled at %d/%d", w.name, w.Pos()+1, w.Len())
}

func (w *Walk) strikeArpeggio() {
	if w.sink != nil {
		w.strike([]uint8{w.Current()[w.arpIndex]})
	}
}

func (w *Walk) strike(pitches []uint8) {
	for _, p := range pitches {
		if err := w.sink.NoteOn(p, w.velocity); err != nil {
			debug.Warn("midi", "note on %d dropped: %v", p, err)
			continue
		}
		w.sounding = append(w.sounding, p)
	}
}

func (w *Walk) move() {
	w.cursor = w.cursor.Advance()
	clear(w.pressed)
}
