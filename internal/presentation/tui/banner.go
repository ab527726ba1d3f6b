package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ragchat banner and the backend it talks to.
func PrintBanner(w io.Writer, version, baseURL string, color bool) {
	out := output(w, color)
	// Using a subtle gradient-like color scheme (Teal/Sky)
	lines := []struct{ text, color string }{
		{"                      _           _   ", "#2dd4bf"},
		{"  _ __ __ _  __ _  ___| |__   __ _| |_ ", "#22d3ee"},
		{" | '__/ _` |/ _` |/ __| '_ \\ / _` | __|", "#38bdf8"},
		{" | | | (_| | (_| | (__| | | | (_| | |_ ", "#60a5fa"},
		{" |_|  \\__,_|\\__, |\\___|_| |_|\\__,_|\\__|", "#818cf8"},
		{"            |___/                      ", "#a78bfa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String(fmt.Sprintf(" v%s  backend: %s  (/help for commands)", version, baseURL)).Faint())
	fmt.Fprintln(w)
}

// Styler colours activity log lines by severity.
type Styler struct {
	out *termenv.Output
}

// NewStyler creates a Styler writing escape codes suited to w.
func NewStyler(w io.Writer, color bool) *Styler {
	return &Styler{out: output(w, color)}
}

// Severity renders text in the colour of severity ("system", "node", "error").
func (s *Styler) Severity(severity, text string) string {
	st := s.out.String(text)
	switch severity {
	case "error":
		return st.Foreground(s.out.Color("#f87171")).String()
	case "node":
		return st.Foreground(s.out.Color("#60a5fa")).String()
	default:
		return st.Faint().String()
	}
}

// Faint renders secondary text such as placeholders.
func (s *Styler) Faint(text string) string {
	return s.out.String(text).Faint().String()
}

func output(w io.Writer, color bool) *termenv.Output {
	if !color {
		return termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))
	}
	return termenv.NewOutput(w)
}
