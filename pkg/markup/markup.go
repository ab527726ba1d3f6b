// Package markup converts assistant markdown into HTML that is safe to display.
package markup

import (
	"bytes"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Renderer turns markdown into sanitized HTML.
// The zero value is not usable; call New.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// New returns a Renderer with GitHub flavoured markdown and a user generated
// content sanitizing policy.
func New() *Renderer {
	// Raw HTML passes through goldmark; only the policy decides what survives.
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)

	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)

	return &Renderer{md: md, policy: policy}
}

// Render converts markdown to sanitized HTML. It never returns executable
// content: if conversion fails the input is returned HTML-escaped.
func (r *Renderer) Render(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return html.EscapeString(text)
	}
	return strings.TrimSpace(r.policy.Sanitize(buf.String()))
}

// PlainText reduces sanitized HTML to its text, for displays that cannot show HTML.
func PlainText(safe string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(safe)))
}

var (
	defaultRenderer = New()
	textPolicy      = bluemonday.StrictPolicy()
)

// Render converts markdown to sanitized HTML using the shared default Renderer.
func Render(text string) string {
	return defaultRenderer.Render(text)
}
