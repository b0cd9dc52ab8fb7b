package blogfront

// State is the per-session list browsing state. Page is always >= 1; it
// resets to 1 whenever the category changes or the list reloads from root.
type State struct {
	Page     int
	Category string

	// Filled by the last list render so tab clicks and prev/next can update
	// the view without fetching categories again.
	Counts     map[string]int
	Names      map[string]string
	TotalPages int
}

// NewState returns the state of a fresh session.
func NewState() *State {
	s := &State{}
	s.Reset()
	return s
}

// Reset returns to the first page of all posts.
func (s *State) Reset() {
	s.Page = 1
	s.Category = ""
	s.TotalPages = 0
}

// SelectCategory switches to slug and rewinds to page 1. It reports false
// when slug is already selected.
func (s *State) SelectCategory(slug string) bool {
	if slug == s.Category {
		return false
	}
	s.Category = slug
	s.Page = 1
	return true
}

// SetPage jumps to page n, clamped to 1.
func (s *State) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	s.Page = n
}
