package music

import (
	"strings"
)

// Catalog holds the named scales, chord progressions and pieces.
// Lookups never fail the process: unknown keys report ok=false.
type Catalog struct {
	scales       map[string]Scale
	progressions map[string]ChordProgression
	pieces       map[string]NamedSequence

	// menu order
	scaleKeys       []string
	progressionKeys []string
	pieceKeys       []string
}

// Entry is a catalog key with its display name, for menus.
type Entry struct {
	Key         string
	Name        string
	Description string
}

func NewCatalog() *Catalog {
	return &Catalog{
		scales:       make(map[string]Scale),
		progressions: make(map[string]ChordProgression),
		pieces:       make(map[string]NamedSequence),
	}
}

// normalizeKey lowercases and turns spaces/dashes into underscores, so
// "Turkish March", "turkish-march" and "turkish_march" all match.
func normalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '.':
			return '_'
		}
		return r
	}, key)
}

func (c *Catalog) AddScale(key string, s Scale) {
	k := normalizeKey(key)
	if _, exists := c.scales[k]; !exists {
		c.scaleKeys = append(c.scaleKeys, k)
	}
	c.scales[k] = s
}

func (c *Catalog) AddProgression(key string, p ChordProgression) {
	k := normalizeKey(key)
	if _, exists := c.progressions[k]; !exists {
		c.progressionKeys = append(c.progressionKeys, k)
	}
	c.progressions[k] = p
}

func (c *Catalog) AddPiece(key string, s NamedSequence) {
	k := normalizeKey(key)
	if _, exists := c.pieces[k]; !exists {
		c.pieceKeys = append(c.pieceKeys, k)
	}
	c.pieces[k] = s
}

// Scale looks up a scale by key.
func (c *Catalog) Scale(key string) (Scale, bool) {
	s, ok := c.scales[normalizeKey(key)]
	return s, ok
}

// Progression looks up a chord progression by key.
func (c *Catalog) Progression(key string) (ChordProgression, bool) {
	p, ok := c.progressions[normalizeKey(key)]
	return p, ok
}

// Piece looks up a piece by key or by its display name.
func (c *Catalog) Piece(key string) (NamedSequence, bool) {
	s, ok := c.pieces[normalizeKey(key)]
	return s, ok
}

func (c *Catalog) Scales() []Entry {
	entries := make([]Entry, 0, len(c.scaleKeys))
	for _, k := range c.scaleKeys {
		entries = append(entries, Entry{Key: k, Name: c.scales[k].Name})
	}
	return entries
}

func (c *Catalog) Progressions() []Entry {
	entries := make([]Entry, 0, len(c.progressionKeys))
	for _, k := range c.progressionKeys {
		entries = append(entries, Entry{Key: k, Name: c.progressions[k].Name})
	}
	return entries
}

func (c *Catalog) Pieces() []Entry {
	entries := make([]Entry, 0, len(c.pieceKeys))
	for _, k := range c.pieceKeys {
		p := c.pieces[k]
		entries = append(entries, Entry{Key: k, Name: p.Name, Description: p.Description})
	}
	return entries
}

// Builtin returns the compiled-in catalog. Each call returns a fresh copy.
func Builtin() *Catalog {
	c := NewCatalog()

	c.AddScale("c_major", Scale{Name: "C Major", Pitches: []uint8{60, 62, 64, 65, 67, 69, 71, 72}})
	c.AddScale("c_minor", Scale{Name: "C Minor", Pitches: []uint8{60, 62, 63, 65, 67, 68, 70, 72}})
	c.AddScale("g_major", Scale{Name: "G Major", Pitches: []uint8{67, 69, 71, 72, 74, 76, 78, 79}})
	c.AddScale("a_minor", Scale{Name: "A Minor", Pitches: []uint8{57, 59, 60, 62, 64, 65, 67, 69}})

	var (
		cMaj = []uint8{60, 64, 67}
		fMaj = []uint8{65, 69, 72}
		gMaj = []uint8{67, 71, 74}
		dMin = []uint8{62, 65, 69}
		aMin = []uint8{57, 60, 64}
	)
	c.AddProgression("i_iv_v", ChordProgression{
		Name:   "I-IV-V",
		Chords: [][]uint8{cMaj, fMaj, gMaj},
		Labels: []string{"I", "IV", "V"},
	})
	c.AddProgression("ii_v_i", ChordProgression{
		Name:   "ii-V-I",
		Chords: [][]uint8{dMin, gMaj, cMaj},
		Labels: []string{"ii", "V", "I"},
	})
	c.AddProgression("i_v_vi_iv", ChordProgression{
		Name:   "I-V-vi-IV",
		Chords: [][]uint8{cMaj, gMaj, aMin, fMaj},
		Labels: []string{"I", "V", "vi", "IV"},
	})

	c.AddPiece("Eine Kleine Nachtmusik", NamedSequence{
		Name:        "Eine Kleine Nachtmusik",
		Description: "First movement of Serenade No. 13 for strings in G major",
		Events: events(
			67, 400, 67, 400, 67, 400, 63, 1200,
			65, 400, 65, 400, 65, 400, 62, 1200,
			64, 400, 65, 400, 67, 400, 69, 400, 71, 400, 72, 400,
			74, 1600, 72, 400,
			71, 400, 69, 400, 67, 800,
		),
	})
	c.AddPiece("Turkish March", NamedSequence{
		Name:        "Turkish March",
		Description: "Rondo Alla Turca from Piano Sonata No. 11",
		Events: events(
			76, 200, 75, 200, 76, 200, 75, 200, 76, 200, 71, 200, 74, 200, 72, 200,
			69, 400, 60, 200, 64, 200, 69, 400,
			71, 400, 62, 200, 66, 200, 71, 400,
			72, 400, 72, 400, 72, 400,
		),
	})
	c.AddPiece("Symphony No. 40", NamedSequence{
		Name:        "Symphony No. 40",
		Description: "First movement of Symphony No. 40 in G minor",
		Events: events(
			67, 300, 70, 300, 72, 600,
			70, 1200,
			65, 300, 68, 300, 70, 600,
			68, 1200,
			63, 300, 67, 300, 70, 300, 75, 300,
			74, 300, 72, 300, 70, 600,
		),
	})

	return c
}

// built-in pieces all use this velocity
const defaultVelocity = 64

// events builds a table from (pitch, durationMs) pairs.
func events(pairs ...int) []NoteEvent {
	out := make([]NoteEvent, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, MustNoteEvent(pairs[i], defaultVelocity, pairs[i+1]))
	}
	return out
}
