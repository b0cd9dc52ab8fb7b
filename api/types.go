package api

// CategoryRef is the category embedded in a post.
type CategoryRef struct {
	ID   int    `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Post is a blog post as returned by the posts endpoints. Excerpt is only set
// on list responses, Content only on detail responses.
type Post struct {
	ID       int         `json:"id"`
	Title    string      `json:"title"`
	Content  string      `json:"content"`
	Excerpt  string      `json:"excerpt"`
	Author   string      `json:"author"`
	Category CategoryRef `json:"category"`
}

// Category is one entry of the categories listing.
type Category struct {
	ID        int    `json:"id,omitempty"`
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	PostCount int    `json:"post_count"`
}

// PostPayload is the body of create and update requests.
type PostPayload struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	CategoryID int    `json:"category_id"`
}

// Created is the response of a successful create.
type Created struct {
	ID int `json:"id"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
