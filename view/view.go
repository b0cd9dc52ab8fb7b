// Package view instantiates named template fragments into a mount point.
// Rendering a view always replaces the whole mount; nothing from the
// previous view survives.
package view

import (
	"context"
	"html/template"
	"io"

	"github.com/a-h/templ"
)

// Mount is the surface views are drawn into.
type Mount interface {
	// Replace discards the mount's content and inserts c.
	Replace(c templ.Component)
	// Patch replaces the content of the element with the given id inside
	// the current view.
	Patch(id string, c templ.Component)
}

// Renderer draws named fragments from a template set into a Mount.
type Renderer struct {
	tmpl  *template.Template
	mount Mount
}

// NewRenderer creates a Renderer over the fragments defined in t.
func NewRenderer(t *template.Template, m Mount) *Renderer {
	return &Renderer{tmpl: t, mount: m}
}

// Has reports whether a fragment named id exists.
func (r *Renderer) Has(id string) bool {
	return r.tmpl != nil && r.tmpl.Lookup(id) != nil
}

// Fragment returns a component rendering fragment id with data.
func (r *Renderer) Fragment(id string, data any) (templ.Component, bool) {
	if !r.Has(id) {
		return nil, false
	}
	return Component(r.tmpl, id, data), true
}

// RenderView replaces the mount with a fresh instance of fragment id. It is
// a no-op returning false when the fragment does not exist.
func (r *Renderer) RenderView(id string, data any) bool {
	c, ok := r.Fragment(id, data)
	if !ok {
		return false
	}
	r.mount.Replace(c)
	return true
}

// PatchView renders fragment id into the element target of the current view.
func (r *Renderer) PatchView(target, id string, data any) bool {
	c, ok := r.Fragment(id, data)
	if !ok {
		return false
	}
	r.mount.Patch(target, c)
	return true
}

// Component adapts a named html/template block to templ.Component.
func Component(t *template.Template, name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return t.ExecuteTemplate(w, name, data)
	})
}
