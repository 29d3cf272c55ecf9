package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"maestro/debug"
)

const DefaultPalette = "maestro"

type Theme struct {
	Palette *Palette
}

func New(palette *Palette) *Theme {
	return &Theme{Palette: palette}
}

// Load picks the palette named in the config: a built-in name, or a
// path to a .gpl file. Anything unreadable falls back to the default.
func Load(nameOrPath string) *Theme {
	if nameOrPath == "" {
		nameOrPath = DefaultPalette
	}
	p, err := Builtin(nameOrPath)
	if err != nil {
		p, err = LoadGPL(nameOrPath)
	}
	if err != nil {
		debug.Warn("theme", "palette %q: %v, using %s", nameOrPath, err, DefaultPalette)
		return Default()
	}
	return New(p)
}

// Default is the compiled-in palette
func Default() *Theme {
	p, err := Builtin(DefaultPalette)
	if err != nil {
		panic(fmt.Sprintf("failed to load palette %s: %v", DefaultPalette, err))
	}
	return New(p)
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0   // night
	RoleMuted   = 0.25  // slate
	RoleFG      = 0.5   // ivory
	RoleAccent  = 0.625 // brass
	RoleActive  = 0.75  // amber, the sounding key
	RoleWarning = 0.875 // rosin
	RoleSuccess = 1.0   // gold
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Active() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleActive))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Success() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSuccess))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
