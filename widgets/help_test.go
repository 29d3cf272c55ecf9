package widgets

import "testing"

func TestRenderMenu(t *testing.T) {
	got := RenderMenu("Scale Learning Menu", []KeySection{{
		Keys: []KeyBinding{{Key: "1", Desc: "C Major"}, {Key: "b", Desc: "Back to Main Menu"}},
	}})
	want := "Scale Learning Menu\n" +
		"-------------------\n" +
		"  1            C Major\n" +
		"  b            Back to Main Menu"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderKeyHelpTitles(t *testing.T) {
	got := RenderKeyHelp([]KeySection{
		{Title: "Walk", Keys: []KeyBinding{{Key: "space", Desc: "next"}}},
		{Keys: []KeyBinding{{Key: "esc", Desc: "stop"}}},
	})
	want := "Walk\n  space        next\n  esc          stop"
	if got != want {
		t.Errorf("got %q", got)
	}
}
