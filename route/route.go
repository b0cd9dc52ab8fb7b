// Package route maps a URL hash fragment onto the view that should handle
// it. Dispatch is stateless: every fragment is matched on its own.
package route

import (
	"context"
	"regexp"
	"strings"
)

// Kind identifies the matched view.
type Kind int

const (
	KindNone Kind = iota
	KindList
	KindForm
	KindDetail
)

func (k Kind) String() string {
	switch k {
	case KindList:
		return "list"
	case KindForm:
		return "form"
	case KindDetail:
		return "detail"
	default:
		return "none"
	}
}

// Mode is the form mode passed to the form handler.
type Mode string

const (
	ModeNone   Mode = ""
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Route patterns, in match order.
const (
	PatternRoot   = "/"
	PatternNew    = "/posts/new"
	PatternDetail = "/posts/:id"
	PatternEdit   = "/posts/:id/edit"
)

var (
	reDetail = regexp.MustCompile(`^/posts/(\d+)$`)
	reEdit   = regexp.MustCompile(`^/posts/(\d+)/edit$`)
)

// Match is the outcome of matching one fragment.
type Match struct {
	Path    string // normalized fragment
	Pattern string // matched pattern, "" when nothing matched
	Kind    Kind
	Mode    Mode
	ID      string
}

// Matched reports whether a route was found.
func (m Match) Matched() bool {
	return m.Kind != KindNone
}

// Normalize strips a leading '#' and maps the empty fragment to "/".
func Normalize(fragment string) string {
	fragment = strings.TrimPrefix(fragment, "#")
	if fragment == "" {
		return "/"
	}
	return fragment
}

// Parse matches fragment against the route table. Literal routes are
// checked before parameterized ones.
func Parse(fragment string) Match {
	path := Normalize(fragment)
	m := Match{Path: path}
	switch {
	case path == PatternRoot:
		m.Pattern, m.Kind = PatternRoot, KindList
	case path == PatternNew:
		m.Pattern, m.Kind, m.Mode = PatternNew, KindForm, ModeCreate
	default:
		if sub := reDetail.FindStringSubmatch(path); sub != nil {
			m.Pattern, m.Kind, m.ID = PatternDetail, KindDetail, sub[1]
		} else if sub := reEdit.FindStringSubmatch(path); sub != nil {
			m.Pattern, m.Kind, m.Mode, m.ID = PatternEdit, KindForm, ModeEdit, sub[1]
		}
	}
	return m
}

// Handlers are the views a Dispatcher routes to.
type Handlers interface {
	List(ctx context.Context)
	Detail(ctx context.Context, id string)
	Form(ctx context.Context, mode Mode, id string)
	NotFound(ctx context.Context, path string)
}

// Dispatcher routes fragments to Handlers.
type Dispatcher struct {
	handlers Handlers
	after    []func(ctx context.Context)
}

// NewDispatcher creates a Dispatcher. Each after hook runs once following
// every dispatch, whichever route matched.
func NewDispatcher(h Handlers, after ...func(ctx context.Context)) *Dispatcher {
	return &Dispatcher{handlers: h, after: after}
}

// Dispatch invokes the handler for fragment and returns the match.
func (d *Dispatcher) Dispatch(ctx context.Context, fragment string) Match {
	m := Parse(fragment)
	switch m.Kind {
	case KindList:
		d.handlers.List(ctx)
	case KindForm:
		d.handlers.Form(ctx, m.Mode, m.ID)
	case KindDetail:
		d.handlers.Detail(ctx, m.ID)
	default:
		d.handlers.NotFound(ctx, m.Path)
	}
	for _, fn := range d.after {
		fn(ctx)
	}
	return m
}
