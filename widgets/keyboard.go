package widgets

import (
	"fmt"
	"strings"

	"maestro/music"
)

// Visible keyboard range, C3 to C5
const (
	KeyboardLow  uint8 = 48
	KeyboardHigh uint8 = 72
)

// Key glyphs. Every key takes two columns: glyph + space.
const (
	glyphActive     = "■"
	glyphWhite      = "□"
	glyphBlack      = "▪"
	glyphBlank      = " "
	keyboardColumns = int(KeyboardHigh-KeyboardLow+1) * 2
)

// KeyboardFrame is one rendered keyboard strip: white keys, black keys and
// the note-name row, each exactly keyboardColumns wide.
type KeyboardFrame struct {
	White string
	Black string
	Names string
}

func (f KeyboardFrame) String() string {
	return f.White + "\n" + f.Black + "\n" + f.Names
}

// Highlight returns the frame with every held key passed through style,
// for colouring. The plain frame is what snapshots compare.
func (f KeyboardFrame) Highlight(style func(string) string) string {
	return strings.ReplaceAll(f.String(), glyphActive, style(glyphActive))
}

// RenderKeyboard draws the two-octave strip with the given pitches held
// down. Pitches outside the visible range are ignored.
func RenderKeyboard(active []uint8) KeyboardFrame {
	held := make(map[uint8]bool, len(active))
	for _, p := range active {
		held[p] = true
	}

	var white, black, names strings.Builder
	white.Grow(keyboardColumns)
	black.Grow(keyboardColumns)
	names.Grow(keyboardColumns)

	for p := KeyboardLow; p <= KeyboardHigh; p++ {
		if music.IsWhiteKey(p) {
			white.WriteString(keyGlyph(held[p], glyphWhite))
			black.WriteString(glyphBlank)
			names.WriteString(music.PitchClassName(p))
		} else {
			white.WriteString(glyphBlank)
			black.WriteString(keyGlyph(held[p], glyphBlack))
			names.WriteString(glyphBlank)
		}
		white.WriteString(" ")
		black.WriteString(" ")
		names.WriteString(" ")
	}

	return KeyboardFrame{White: white.String(), Black: black.String(), Names: names.String()}
}

func keyGlyph(active bool, idle string) string {
	if active {
		return glyphActive
	}
	return idle
}

// KeyColumn returns the screen column of a pitch, or -1 when it is not
// on the visible keyboard.
func KeyColumn(pitch uint8) int {
	if pitch < KeyboardLow || pitch > KeyboardHigh {
		return -1
	}
	return int(pitch-KeyboardLow) * 2
}

// PlayingStatus is the status line for a sounding note.
func PlayingStatus(pitch uint8) string {
	return fmt.Sprintf("Playing: %s (MIDI: %d)", music.NoteName(pitch), pitch)
}

// NoteStatus is the scale walk-through position line.
func NoteStatus(pitch uint8, pos, total int) string {
	return fmt.Sprintf("Current note: %s (Note %d of %d)", music.PitchClassName(pitch), pos+1, total)
}

// ChordStatus is the chord walk-through position line.
func ChordStatus(label string, chord []uint8, pos, total int) string {
	names := make([]string, len(chord))
	for i, p := range chord {
		names[i] = music.PitchClassName(p)
	}
	return fmt.Sprintf("Current chord: %s (%d of %d): %s", label, pos+1, total, strings.Join(names, " "))
}
