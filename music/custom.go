package music

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// catalogFile is the on-disk layout of a user catalog extension:
//
//	scales:
//	  - key: d_major
//	    name: D Major
//	    pitches: [62, 64, 66, 67, 69, 71, 73, 74]
//	progressions:
//	  - key: vi_iv_i_v
//	    name: vi-IV-I-V
//	    labels: [vi, IV, I, V]
//	    chords: [[57, 60, 64], [65, 69, 72], [60, 64, 67], [67, 71, 74]]
//	pieces:
//	  - key: ode_to_joy
//	    name: Ode to Joy
//	    velocity: 80
//	    notes: [[64, 400], [64, 400], [65, 400], [67, 400, 100]]
type catalogFile struct {
	Scales []struct {
		Key     string `yaml:"key"`
		Name    string `yaml:"name"`
		Pitches []int  `yaml:"pitches"`
	} `yaml:"scales"`
	Progressions []struct {
		Key    string   `yaml:"key"`
		Name   string   `yaml:"name"`
		Labels []string `yaml:"labels"`
		Chords [][]int  `yaml:"chords"`
	} `yaml:"progressions"`
	Pieces []struct {
		Key         string  `yaml:"key"`
		Name        string  `yaml:"name"`
		Description string  `yaml:"description"`
		Velocity    int     `yaml:"velocity"`
		Notes       [][]int `yaml:"notes"` // [pitch, durationMs] or [pitch, durationMs, velocity]
	} `yaml:"pieces"`
}

// LoadCatalogFile reads a YAML catalog extension and merges it over c.
// Entries with an existing key replace the built-in one.
func (c *Catalog) LoadCatalogFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return c.MergeYAML(data)
}

// MergeYAML parses a catalog extension document and merges it over c.
// Nothing is merged if any entry is invalid.
func (c *Catalog) MergeYAML(data []byte) error {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse catalog: %w", err)
	}

	staged := NewCatalog()

	for _, s := range f.Scales {
		if s.Key == "" || len(s.Pitches) == 0 {
			return fmt.Errorf("scale %q: key and pitches are required", s.Key)
		}
		pitches, err := toPitches(s.Pitches)
		if err != nil {
			return fmt.Errorf("scale %q: %w", s.Key, err)
		}
		staged.AddScale(s.Key, Scale{Name: nameOr(s.Name, s.Key), Pitches: pitches})
	}

	for _, p := range f.Progressions {
		if p.Key == "" || len(p.Chords) == 0 {
			return fmt.Errorf("progression %q: key and chords are required", p.Key)
		}
		chords := make([][]uint8, 0, len(p.Chords))
		for i, raw := range p.Chords {
			if len(raw) == 0 {
				return fmt.Errorf("progression %q chord %d: empty chord", p.Key, i+1)
			}
			chord, err := toPitches(raw)
			if err != nil {
				return fmt.Errorf("progression %q chord %d: %w", p.Key, i+1, err)
			}
			chords = append(chords, chord)
		}
		staged.AddProgression(p.Key, ChordProgression{
			Name:   nameOr(p.Name, p.Key),
			Chords: chords,
			Labels: p.Labels,
		})
	}

	for _, p := range f.Pieces {
		if p.Key == "" {
			return fmt.Errorf("piece %q: key is required", p.Name)
		}
		velocity := p.Velocity
		if velocity == 0 {
			velocity = defaultVelocity
		}
		evts := make([]NoteEvent, 0, len(p.Notes))
		for i, n := range p.Notes {
			if len(n) < 2 || len(n) > 3 {
				return fmt.Errorf("piece %q note %d: want [pitch, durationMs] or [pitch, durationMs, velocity]", p.Key, i+1)
			}
			v := velocity
			if len(n) == 3 {
				v = n[2]
			}
			e, err := NewNoteEvent(n[0], v, n[1])
			if err != nil {
				return fmt.Errorf("piece %q note %d: %w", p.Key, i+1, err)
			}
			evts = append(evts, e)
		}
		staged.AddPiece(p.Key, NamedSequence{
			Name:        nameOr(p.Name, p.Key),
			Description: p.Description,
			Events:      evts,
		})
	}

	for _, k := range staged.scaleKeys {
		c.AddScale(k, staged.scales[k])
	}
	for _, k := range staged.progressionKeys {
		c.AddProgression(k, staged.progressions[k])
	}
	for _, k := range staged.pieceKeys {
		c.AddPiece(k, staged.pieces[k])
	}
	return nil
}

func toPitches(raw []int) ([]uint8, error) {
	out := make([]uint8, len(raw))
	for i, p := range raw {
		if p < 0 || p > MaxValue {
			return nil, fmt.Errorf("%w: %d", ErrPitchRange, p)
		}
		out[i] = uint8(p)
	}
	return out, nil
}

func nameOr(name, key string) string {
	if name != "" {
		return name
	}
	return key
}
