package theme

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultPalette(t *testing.T) {
	th := Default()
	if th.Palette.Name != "maestro" || len(th.Palette.Colors) != 9 {
		t.Fatalf("palette = %s with %d colors", th.Palette.Name, len(th.Palette.Colors))
	}
	if got := th.BG(); got != "#121026" {
		t.Errorf("BG = %s", got)
	}
	if got := th.Success(); got != "#f6e88c" {
		t.Errorf("Success = %s", got)
	}
}

func TestLookupInterpolates(t *testing.T) {
	p := &Palette{Colors: []RGB{{0, 0, 0}, {200, 100, 50}}}
	if got := p.Lookup(0.5); got != (RGB{100, 50, 25}) {
		t.Errorf("Lookup(0.5) = %v", got)
	}
	if p.Lookup(-1) != p.Colors[0] || p.Lookup(2) != p.Colors[1] {
		t.Error("Lookup should clamp")
	}
}

func TestParseGPL(t *testing.T) {
	src := "GIMP Palette\nName: test\nColumns: 2\n# comment\n255 0 0\tred\n0 0 255 blue\nnot a color\n"
	p, err := ParseGPL(strings.NewReader(src), "test")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "test" || len(p.Colors) != 2 || p.Colors[1] != (RGB{0, 0, 255}) {
		t.Errorf("palette = %+v", p)
	}

	if _, err := ParseGPL(strings.NewReader("GIMP Palette\n"), "empty"); err == nil {
		t.Error("empty palette should fail")
	}
}

func TestLoadFallsBack(t *testing.T) {
	if th := Load("/does/not/exist.gpl"); th.Palette.Name != DefaultPalette {
		t.Errorf("fallback palette = %s", th.Palette.Name)
	}

	path := filepath.Join(t.TempDir(), "mono.gpl")
	os.WriteFile(path, []byte("GIMP Palette\nName: mono\n0 0 0\n255 255 255\n"), 0644)
	if th := Load(path); th.Palette.Name != "mono" {
		t.Errorf("file palette = %s", th.Palette.Name)
	}
}
