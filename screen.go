package blogfront

import (
	"bytes"
	"context"
	"strings"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"github.com/eringen/blogfront/view"
)

// Screen is what controllers draw on: the main mount plus alerts, modals
// and hash changes in the browser.
type Screen interface {
	view.Mount
	Alert(msg string)
	Navigate(path string)
	ShowLogin()
	CloseModals()
}

type patch struct {
	ID   string `json:"id"`
	HTML string `json:"html"`
}

// envelope records everything a handler did to the screen and is sent to
// the shell as JSON.
type envelope struct {
	Generation uint64  `json:"generation"`
	Replaced   bool    `json:"replace"`
	HTML       string  `json:"html"`
	Patches    []patch `json:"patches,omitempty"`
	Message    string  `json:"alert,omitempty"`
	Target     string  `json:"navigate,omitempty"`
	Login      bool    `json:"login,omitempty"`
	Close      bool    `json:"close_modals,omitempty"`

	log *zap.Logger
}

func newEnvelope(gen uint64, log *zap.Logger) *envelope {
	if log == nil {
		log = zap.NewNop()
	}
	return &envelope{Generation: gen, log: log}
}

func (e *envelope) render(c templ.Component) string {
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		e.log.Error("render failed", zap.Error(err))
	}
	return buf.String()
}

func (e *envelope) Replace(c templ.Component) {
	e.Replaced = true
	e.HTML = e.render(c)
	e.Patches = nil
}

func (e *envelope) Patch(id string, c templ.Component) {
	html := e.render(c)
	for i := range e.Patches {
		if e.Patches[i].ID == id {
			e.Patches[i].HTML = html
			return
		}
	}
	e.Patches = append(e.Patches, patch{ID: id, HTML: html})
}

func (e *envelope) Alert(msg string) {
	if e.Message == "" {
		e.Message = msg
		return
	}
	e.Message = strings.Join([]string{e.Message, msg}, "\n")
}

func (e *envelope) Navigate(path string) { e.Target = path }
func (e *envelope) ShowLogin()           { e.Login = true }
func (e *envelope) CloseModals()         { e.Close = true }

// patchHTML returns the last patch for id.
func (e *envelope) patchHTML(id string) (string, bool) {
	for _, p := range e.Patches {
		if p.ID == id {
			return p.HTML, true
		}
	}
	return "", false
}

// guardedScreen drops every write once its navigation is no longer the
// current one, so a late response cannot draw over a newer view.
type guardedScreen struct {
	next Screen
	live func() bool
}

func guard(next Screen, live func() bool) Screen {
	return &guardedScreen{next: next, live: live}
}

func (g *guardedScreen) Replace(c templ.Component) {
	if g.live() {
		g.next.Replace(c)
	}
}

func (g *guardedScreen) Patch(id string, c templ.Component) {
	if g.live() {
		g.next.Patch(id, c)
	}
}

func (g *guardedScreen) Alert(msg string) {
	if g.live() {
		g.next.Alert(msg)
	}
}

func (g *guardedScreen) Navigate(path string) {
	if g.live() {
		g.next.Navigate(path)
	}
}

func (g *guardedScreen) ShowLogin() {
	if g.live() {
		g.next.ShowLogin()
	}
}

func (g *guardedScreen) CloseModals() {
	if g.live() {
		g.next.CloseModals()
	}
}
