package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	return cmd.Execute()
}

func TestUnknownPieceListsChoices(t *testing.T) {
	err := execute(t, "play", "nonexistent")
	if err == nil {
		t.Fatal("want error")
	}
	if !strings.Contains(err.Error(), `unknown piece "nonexistent"`) || !strings.Contains(err.Error(), "turkish_march") {
		t.Errorf("err = %v", err)
	}
}

func TestUnknownScale(t *testing.T) {
	err := execute(t, "scale", "h_major")
	if err == nil || !strings.Contains(err.Error(), "c_major") {
		t.Errorf("err = %v", err)
	}
}

func TestBadCatalogFileFails(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	catalog := filepath.Join(home, "extra.yaml")
	os.WriteFile(catalog, []byte("pieces:\n  - key: bad\n    notes: [[300, 100]]\n"), 0644)
	os.MkdirAll(filepath.Join(home, ".config", "maestro"), 0755)
	os.WriteFile(filepath.Join(home, ".config", "maestro", "config.json"),
		[]byte(`{"catalogPath": "`+catalog+`"}`), 0644)

	cmd := newRootCmd()
	cmd.SetArgs([]string{"scale", "c_major"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), `piece "bad"`) {
		t.Errorf("err = %v", err)
	}
}
