// Package views holds the page shell, the named view fragments and the
// view models they render.
package views

import (
	"embed"
	"html/template"
	"sort"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

// Fragment ids. View templates end in "-template"; the rest are patched into
// an element of the current view.
const (
	ShellTemplate    = "shell"
	ListTemplate     = "post-list-template"
	DetailTemplate   = "post-detail-template"
	FormTemplate     = "post-form-template"
	NotFoundTemplate = "not-found-template"
	LoadErrorView    = "load-error-template"

	AuthStatus   = "auth-status"
	CategoryTabs = "category-tabs"
	PostsSection = "posts-section"
	PostDetail   = "post-detail"
	FormFields   = "post-form-fields"
	InlineError  = "inline-error"
)

// Element ids patched by controllers.
const (
	TargetAuthStatus   = "auth-status"
	TargetCategoryTabs = "category-tabs"
	TargetPosts        = "posts-section"
	TargetDetail       = "post-detail"
	TargetFormFields   = "post-form-fields"
	TargetPostError    = "post-error"
	TargetLoginError   = "login-error"
	TargetSignupError  = "signup-error"
)

var funcs = template.FuncMap{
	"badgeClass": BadgeClass,
	"tabClass":   TabClass,
	"pageClass":  PageClass,
}

// Templates parses the embedded fragments. It panics on a malformed
// template since they are compiled into the binary.
func Templates() *template.Template {
	return template.Must(template.New("views").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

// DefaultCategories is the catalogue shown when none is configured.
func DefaultCategories() []CategoryOption {
	return []CategoryOption{
		{ID: 1, Slug: "infrastructure", Name: "Infrastructure"},
		{ID: 2, Slug: "cicd", Name: "CI/CD"},
		{ID: 3, Slug: "service-mesh", Name: "Service Mesh"},
		{ID: 4, Slug: "monitoring", Name: "Monitoring"},
		{ID: 5, Slug: "troubleshooting", Name: "Troubleshooting"},
		{ID: 6, Slug: "test", Name: "Test"},
	}
}

// BuildTabs returns the "all" tab followed by one tab per catalogue entry,
// then any category the API reported that the catalogue lacks. The all tab
// counts the sum of every reported category.
func BuildTabs(catalogue []CategoryOption, counts map[string]int, names map[string]string, active string) []Tab {
	total := 0
	for _, n := range counts {
		total += n
	}
	tabs := []Tab{{Slug: "", Name: "전체", Count: total, Active: active == ""}}
	known := make(map[string]struct{}, len(catalogue))
	for _, c := range catalogue {
		known[c.Slug] = struct{}{}
		tabs = append(tabs, Tab{Slug: c.Slug, Name: c.Name, Count: counts[c.Slug], Active: active == c.Slug})
	}
	var extra []string
	for slug := range counts {
		if _, ok := known[slug]; !ok {
			extra = append(extra, slug)
		}
	}
	sort.Strings(extra)
	for _, slug := range extra {
		name := names[slug]
		if name == "" {
			name = slug
		}
		tabs = append(tabs, Tab{Slug: slug, Name: name, Count: counts[slug], Active: active == slug})
	}
	return tabs
}

// BadgeClass returns the CSS classes for a category badge.
func BadgeClass(slug string) string {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return "category-badge"
	}
	return "category-badge " + slug
}

// TabClass returns CSS classes for a category tab, with active variant.
func TabClass(active bool) string {
	if active {
		return "category-tab active"
	}
	return "category-tab"
}

// PageClass returns CSS classes for a page number button.
func PageClass(page, current int) string {
	if page == current {
		return "page-number active"
	}
	return "page-number"
}
