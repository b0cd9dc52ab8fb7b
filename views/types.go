package views

import (
	"html/template"

	"github.com/eringen/blogfront/paging"
)

// SiteConfig holds the site-wide settings the shell page needs.
type SiteConfig struct {
	Name        string // page title and header brand (default "Blog")
	Description string // meta description
}

// CategoryOption is a category the UI knows about up front: it gets a tab
// on the list view and a radio button on the post form.
type CategoryOption struct {
	ID   int    `koanf:"id"`
	Slug string `koanf:"slug"`
	Name string `koanf:"name"`
}

// Shell is the data for the outer page.
type Shell struct {
	Site SiteConfig
	CSRF string
}

// Header drives the auth controls in the page header.
type Header struct {
	Authenticated bool
	Username      string
}

// Tab is one category tab with its post count badge.
type Tab struct {
	Slug   string // "" for all posts
	Name   string
	Count  int
	Active bool
}

// PostItem is one row of the post list.
type PostItem struct {
	ID           int
	Title        string
	Excerpt      string
	Author       string
	CategorySlug string
	CategoryName string
}

// ListSection is the posts area of the list view: the visible page and its
// controls, or an empty/failure message.
type ListSection struct {
	Items    []PostItem
	Controls paging.Controls
	Message  string // shown instead of items when set
}

// ListView is the initial list skeleton.
type ListView struct {
	Tabs []Tab
}

// Detail is a fully loaded post.
type Detail struct {
	ID           string
	Title        string
	CategorySlug string
	CategoryName string
	Author       string
	Content      template.HTML
	CanEdit      bool
}

// FormView is the post form skeleton.
type FormView struct {
	Heading string
	Mode    string
	ID      string
	Fields  FormValues
}

// FormValues prefills the form fields in edit mode.
type FormValues struct {
	Title      string
	Content    string
	CategoryID int
	Categories []CategoryOption
}

// NotFound is the fallback view for unknown routes.
type NotFound struct {
	Path string
}
