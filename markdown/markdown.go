// Package markdown renders post bodies to HTML. Rendering
// degrades in tiers: sanitized Markdown with syntax highlighting, raw
// Markdown, then escaped text with line breaks.
package markdown

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Mode selects the rendering tier.
type Mode int

const (
	// ModeSanitized renders Markdown with highlighting and strips unsafe HTML.
	ModeSanitized Mode = iota
	// ModeUnsanitized renders Markdown and keeps embedded HTML as is.
	ModeUnsanitized
	// ModePlain escapes the text and turns newlines into <br>.
	ModePlain
)

func (m Mode) String() string {
	switch m {
	case ModeSanitized:
		return "sanitized"
	case ModeUnsanitized:
		return "unsanitized"
	case ModePlain:
		return "plain"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses a configuration value. The empty string means sanitized.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sanitized":
		return ModeSanitized, nil
	case "unsanitized", "raw":
		return ModeUnsanitized, nil
	case "plain", "text":
		return ModePlain, nil
	}
	return ModeSanitized, fmt.Errorf("markdown: unknown mode %q", s)
}

// DefaultStyle is the chroma style used for code blocks.
const DefaultStyle = "github"

// Renderer converts Markdown source to HTML.
type Renderer struct {
	mode   Mode
	style  string
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithStyle sets the chroma highlighting style. Empty keeps the default.
func WithStyle(style string) Option {
	return func(r *Renderer) {
		if style != "" {
			r.style = style
		}
	}
}

// New creates a Renderer for mode.
func New(mode Mode, opts ...Option) *Renderer {
	r := &Renderer{mode: mode, style: DefaultStyle}
	for _, opt := range opts {
		opt(r)
	}
	if mode == ModePlain {
		return r
	}
	exts := []goldmark.Extender{extension.GFM}
	if mode == ModeSanitized {
		exts = append(exts, highlighting.NewHighlighting(highlighting.WithStyle(r.style)))
		r.policy = newPolicy()
	}
	r.md = goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
			gmhtml.WithUnsafe(),
		),
	)
	return r
}

// Mode returns the tier r renders with.
func (r *Renderer) Mode() Mode {
	return r.mode
}

// newPolicy allows user generated content plus the inline styles the
// highlighter emits on code spans.
func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowStyling()
	p.AllowStyles("color", "background-color", "font-weight", "font-style", "text-decoration").
		OnElements("pre", "code", "span")
	return p
}

// HTML renders src. Markdown conversion errors fall back to plain text.
func (r *Renderer) HTML(src string) template.HTML {
	if r.mode == ModePlain || r.md == nil {
		return template.HTML(Plain(src))
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(Plain(src))
	}
	if r.policy != nil {
		return template.HTML(r.policy.SanitizeBytes(buf.Bytes()))
	}
	return template.HTML(buf.String())
}

// Plain escapes s and converts newlines to <br>.
func Plain(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(html.EscapeString(s), "\n", "<br>")
}
