package playback

import (
	"errors"
	"time"

	"maestro/debug"
	"maestro/midi"
	"maestro/music"
)

// State of a Player
type State int

const (
	Idle State = iota
	Playing
	Finished
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Finished:
		return "finished"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

// DefaultPoll is the gap between a note-off and the next note-on. Input
// is handled during it, so it is also the pre-event cancel checkpoint.
const DefaultPoll = 10 * time.Millisecond

var ErrAlreadyStarted = errors.New("player already started")

// Acquire opens the sink for one playback. A nil Acquire plays silently.
type Acquire func() (midi.Sink, error)

// Step tells the event loop when to call Tick again.
type Step struct {
	Wait time.Duration
	Done bool
}

// Player plays one NamedSequence. It never sleeps or spawns goroutines:
// the owner calls Tick after each Step.Wait and Cancel on the cancel key,
// all from the same loop. Each event is a strike (note-on, render) then a
// release (note-off, clear) before the next event starts, so at most one
// note sounds at a time.
type Player struct {
	seq   music.NamedSequence
	sink  midi.Sink
	poll  time.Duration
	state State

	pos      int
	sounding bool
}

type Option func(*Player)

// WithPoll sets the gap between events.
func WithPoll(d time.Duration) Option {
	return func(p *Player) {
		if d > 0 {
			p.poll = d
		}
	}
}

func New(seq music.NamedSequence, opts ...Option) *Player {
	p := &Player{seq: seq, poll: DefaultPoll}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start acquires the sink and enters Playing. An empty sequence is a
// no-op: nothing is acquired and the Player stays Idle. If acquire fails
// the error is returned and the Player stays Idle too.
func (p *Player) Start(acquire Acquire) (Step, error) {
	if p.state != Idle {
		return Step{Done: true}, ErrAlreadyStarted
	}
	if p.seq.Len() == 0 {
		return Step{Done: true}, nil
	}

	if acquire != nil {
		sink, err := acquire()
		if err != nil {
			return Step{Done: true}, err
		}
		p.sink = sink
	}

	p.state = Playing
	p.pos = 0
	debug.Log("playback", "start %q events=%d silent=%v", p.seq.Name, p.seq.Len(), p.sink == nil)
	return Step{Wait: p.poll}, nil
}

// Tick performs the next phase of the current event.
func (p *Player) Tick() Step {
	if p.state != Playing {
		return Step{Done: true}
	}

	ev := p.seq.Events[p.pos]
	if !p.sounding {
		p.send("note on", func(s midi.Sink) error { return s.NoteOn(ev.Pitch(), ev.Velocity()) })
		p.sounding = true
		debug.Log("playback", "on %d/%d %s", p.pos+1, p.seq.Len(), ev)
		return Step{Wait: ev.Duration()}
	}

	p.send("note off", func(s midi.Sink) error { return s.NoteOff(ev.Pitch()) })
	p.sounding = false
	p.pos++
	if p.pos >= p.seq.Len() {
		p.finish(Finished)
		return Step{Done: true}
	}
	return Step{Wait: p.poll}
}

// Cancel stops playback, releasing any sounding note first. It does
// nothing unless the Player is Playing.
func (p *Player) Cancel() {
	if p.state != Playing {
		return
	}
	if p.sounding {
		ev := p.seq.Events[p.pos]
		p.send("note off", func(s midi.Sink) error { return s.NoteOff(ev.Pitch()) })
		p.sounding = false
	}
	p.finish(Cancelled)
}

// finish closes the sink unconditionally
func (p *Player) finish(s State) {
	p.state = s
	if p.sink != nil {
		if err := p.sink.Close(); err != nil {
			debug.Warn("midi", "close: %v", err)
		}
		p.sink = nil
	}
	debug.Log("playback", "%s %q at %d/%d", s, p.seq.Name, p.pos, p.seq.Len())
}

// send drops failed messages; a missed note must not stop playback
func (p *Player) send(what string, fn func(midi.Sink) error) {
	if p.sink == nil {
		return
	}
	if err := fn(p.sink); err != nil {
		debug.Warn("midi", "%s dropped: %v", what, err)
	}
}

func (p *Player) State() State                  { return p.state }
func (p *Player) Sequence() music.NamedSequence { return p.seq }
func (p *Player) Silent() bool                  { return p.sink == nil }

// Position is the index of the current event
func (p *Player) Position() int { return p.pos }

// Active returns the sounding pitch, if any, for the keyboard display.
func (p *Player) Active() []uint8 {
	if p.state != Playing || !p.sounding {
		return nil
	}
	return []uint8{p.seq.Events[p.pos].Pitch()}
}

// Current returns the event being played.
func (p *Player) Current() (music.NoteEvent, bool) {
	if p.state != Playing {
		return music.NoteEvent{}, false
	}
	return p.seq.Events[p.pos], true
}
