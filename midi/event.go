package midi

// MIDI message types (status byte, channel 0)
const (
	NoteOn  uint8 = 0x90
	NoteOff uint8 = 0x80
)

// NoteEvent is sent when a note is played on a keyboard
type NoteEvent struct {
	Note     uint8
	Velocity uint8
	Channel  uint8
}

// Sink receives note messages. A Session is the real implementation;
// callers treat a nil Sink as "no sound".
type Sink interface {
	NoteOn(pitch, velocity uint8) error
	NoteOff(pitch uint8) error
	Close() error
}
