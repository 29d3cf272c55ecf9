package widgets

import (
	"fmt"
	"strings"
)

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

// RenderMenu renders a titled menu with an underline, like
//
//	Scale Learning Menu
//	-------------------
//	  1            C Major
func RenderMenu(title string, sections []KeySection) string {
	var out strings.Builder
	out.WriteString(title)
	out.WriteString("\n")
	out.WriteString(strings.Repeat("-", len(title)))
	out.WriteString("\n")
	out.WriteString(RenderKeyHelp(sections))
	return out.String()
}
