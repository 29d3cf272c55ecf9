package music

import "fmt"

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// PitchClassName returns the name without octave ("F#").
func PitchClassName(pitch uint8) string {
	return noteNames[pitch%12]
}

// NoteName converts MIDI note to readable name (e.g., "C4", "F#3")
func NoteName(pitch uint8) string {
	octave := int(pitch)/12 - 1
	return fmt.Sprintf("%s%d", noteNames[pitch%12], octave)
}

// IsWhiteKey reports whether the pitch sits on a white piano key.
func IsWhiteKey(pitch uint8) bool {
	switch pitch % 12 {
	case 0, 2, 4, 5, 7, 9, 11:
		return true
	}
	return false
}
