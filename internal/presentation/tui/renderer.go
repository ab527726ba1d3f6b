package tui

import (
	"github.com/charmbracelet/glamour"
)

// DefaultWordWrap is the column answers are wrapped at.
const DefaultWordWrap = 100

// NewRenderer returns a function that renders markdown using glamour.
// With color disabled it uses the plain "notty" style.
func NewRenderer(color bool) func(string) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(DefaultWordWrap)}
	if color {
		opts = append(opts, glamour.WithAutoStyle()) // Automatically detect light/dark background
	} else {
		opts = append(opts, glamour.WithStandardStyle("notty"))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}
