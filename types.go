package blogfront

import (
	"github.com/eringen/blogfront/api"
	"github.com/eringen/blogfront/views"
)

// postItem converts a list entry from the API into its list row.
func postItem(p api.Post) views.PostItem {
	return views.PostItem{
		ID:           p.ID,
		Title:        p.Title,
		Excerpt:      p.Excerpt,
		Author:       p.Author,
		CategorySlug: p.Category.Slug,
		CategoryName: p.Category.Name,
	}
}
