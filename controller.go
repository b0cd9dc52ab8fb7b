package blogfront

import (
	"context"
	"errors"
	"html/template"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/eringen/blogfront/api"
	"github.com/eringen/blogfront/markdown"
	"github.com/eringen/blogfront/paging"
	"github.com/eringen/blogfront/route"
	"github.com/eringen/blogfront/token"
	"github.com/eringen/blogfront/view"
	"github.com/eringen/blogfront/views"
)

// Controller drives the list, detail and form views of one session. It is
// built per request around the session's state and the screen the request
// will answer with.
type Controller struct {
	api        *api.Client
	tokens     *token.Reader
	state      *State
	screen     Screen
	views      *view.Renderer
	md         *markdown.Renderer
	pager      paging.Pager
	categories []views.CategoryOption
	log        *zap.Logger
}

// ControllerDeps are the collaborators a Controller needs.
type ControllerDeps struct {
	API        *api.Client // already bound to the session's tokens
	Tokens     *token.Reader
	State      *State
	Screen     Screen
	Templates  *template.Template
	Markdown   *markdown.Renderer
	Pager      paging.Pager
	Categories []views.CategoryOption
	Log        *zap.Logger
}

// NewController wires a Controller.
func NewController(d ControllerDeps) *Controller {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Markdown == nil {
		d.Markdown = markdown.New(markdown.ModeSanitized)
	}
	if d.State == nil {
		d.State = NewState()
	}
	return &Controller{
		api:        d.API,
		tokens:     d.Tokens,
		state:      d.State,
		screen:     d.Screen,
		views:      view.NewRenderer(d.Templates, d.Screen),
		md:         d.Markdown,
		pager:      d.Pager,
		categories: d.Categories,
		log:        d.Log,
	}
}

// Dispatch routes fragment to its view and then refreshes the header.
func (c *Controller) Dispatch(ctx context.Context, fragment string) route.Match {
	return route.NewDispatcher(c, c.RefreshHeader).Dispatch(ctx, fragment)
}

// RefreshHeader redraws the login or write/logout controls.
func (c *Controller) RefreshHeader(ctx context.Context) {
	c.views.PatchView(views.TargetAuthStatus, views.AuthStatus, views.Header{
		Authenticated: c.tokens.IsAuthenticated(),
		Username:      c.tokens.CurrentUsername(),
	})
}

// List shows all posts from the first page.
func (c *Controller) List(ctx context.Context) {
	c.state.Reset()
	c.views.RenderView(views.ListTemplate, views.ListView{Tabs: c.tabs()})

	c.loadCategoryCounts(ctx)
	c.loadPosts(ctx)
}

// SelectCategory switches the list to slug without redrawing the view.
func (c *Controller) SelectCategory(ctx context.Context, slug string) {
	if !c.state.SelectCategory(slug) {
		return
	}
	c.views.PatchView(views.TargetCategoryTabs, views.CategoryTabs, c.tabs())
	if c.state.Counts == nil {
		// Restored sessions carry no counts.
		c.loadCategoryCounts(ctx)
	}
	c.loadPosts(ctx)
}

// GoToPage shows page n of the current category.
func (c *Controller) GoToPage(ctx context.Context, n int) {
	c.state.SetPage(n)
	c.loadPosts(ctx)
}

// PrevPage steps back one page unless already on the first.
func (c *Controller) PrevPage(ctx context.Context) {
	if c.state.Page <= 1 {
		return
	}
	c.state.SetPage(paging.Prev(c.state.Page))
	c.loadPosts(ctx)
}

// NextPage steps forward one page unless already on the last. The last
// page is judged against the fetched list when the state has no page count,
// as after a restore.
func (c *Controller) NextPage(ctx context.Context) {
	if c.state.TotalPages > 0 && c.state.Page >= c.state.TotalPages {
		return
	}
	posts, ok := c.fetchPosts(ctx)
	if !ok {
		return
	}
	c.state.SetPage(paging.Next(c.state.Page, c.pager.TotalPages(len(posts))))
	c.renderPosts(posts)
}

func (c *Controller) tabs() []views.Tab {
	return views.BuildTabs(c.categories, c.state.Counts, c.state.Names, c.state.Category)
}

func (c *Controller) loadCategoryCounts(ctx context.Context) {
	cats, err := c.api.ListCategories(ctx)
	if err != nil {
		if !canceled(err) {
			c.log.Warn("category counts unavailable", zap.Error(err))
		}
		return
	}
	counts := make(map[string]int, len(cats))
	names := make(map[string]string, len(cats))
	for _, cat := range cats {
		counts[cat.Slug] = cat.PostCount
		names[cat.Slug] = cat.Name
	}
	c.state.Counts = counts
	c.state.Names = names
	c.views.PatchView(views.TargetCategoryTabs, views.CategoryTabs, c.tabs())
}

func (c *Controller) loadPosts(ctx context.Context) {
	if posts, ok := c.fetchPosts(ctx); ok {
		c.renderPosts(posts)
	}
}

// fetchPosts lists the current category. On failure it draws the error
// section and reports false.
func (c *Controller) fetchPosts(ctx context.Context) ([]api.Post, bool) {
	posts, err := c.api.ListPosts(ctx, c.state.Category)
	if err != nil {
		if canceled(err) {
			return nil, false
		}
		c.log.Warn("post list unavailable", zap.String("category", c.state.Category), zap.Error(err))
		c.views.PatchView(views.TargetPosts, views.PostsSection, views.ListSection{
			Message:  msgPostsFailed,
			Controls: c.pager.Controls(c.state.Page, 0),
		})
		return nil, false
	}
	return posts, true
}

func (c *Controller) renderPosts(posts []api.Post) {
	page := paging.Paginate(c.pager, posts, c.state.Page)
	c.state.TotalPages = page.Controls.TotalPages

	section := views.ListSection{Controls: page.Controls}
	if page.Empty() {
		section.Message = msgNoPosts
	}
	for _, p := range page.Items {
		section.Items = append(section.Items, postItem(p))
	}
	c.views.PatchView(views.TargetPosts, views.PostsSection, section)
}

// Detail shows one post, with edit and delete controls for its author.
func (c *Controller) Detail(ctx context.Context, id string) {
	c.views.RenderView(views.DetailTemplate, nil)

	post, err := c.api.GetPost(ctx, id)
	if err != nil {
		if canceled(err) {
			return
		}
		c.log.Warn("post unavailable", zap.String("id", id), zap.Error(err))
		c.views.RenderView(views.LoadErrorView, msgDetailFailed)
		return
	}
	c.views.PatchView(views.TargetDetail, views.PostDetail, views.Detail{
		ID:           id,
		Title:        post.Title,
		CategorySlug: post.Category.Slug,
		CategoryName: post.Category.Name,
		Author:       post.Author,
		Content:      c.md.HTML(post.Content),
		CanEdit:      c.isAuthor(post.Author),
	})
}

// DeletePost deletes id and returns to the list. The shell has already
// asked for confirmation.
func (c *Controller) DeletePost(ctx context.Context, id string) {
	err := c.api.DeletePost(ctx, id)
	if err == nil {
		c.screen.Alert(msgDeleted)
		c.screen.Navigate(route.PatternRoot)
		return
	}
	c.log.Warn("delete failed", zap.String("id", id), zap.Error(err))
	if api.IsTransport(err) {
		c.screen.Alert(msgUnreachable)
		return
	}
	c.screen.Alert(msgDeleteFailed)
}

// Form shows the create form, or the edit form prefilled from post id.
func (c *Controller) Form(ctx context.Context, mode route.Mode, id string) {
	if !c.tokens.IsAuthenticated() {
		c.screen.Alert(msgLoginRequired)
		c.screen.ShowLogin()
		return
	}

	heading := headingCreate
	if mode == route.ModeEdit {
		heading = headingEdit
	}
	c.views.RenderView(views.FormTemplate, views.FormView{
		Heading: heading,
		Mode:    string(mode),
		ID:      id,
		Fields:  views.FormValues{Categories: c.categories},
	})
	if mode != route.ModeEdit {
		return
	}

	post, err := c.api.GetPost(ctx, id)
	if err != nil {
		if canceled(err) {
			return
		}
		c.log.Warn("post unavailable for edit", zap.String("id", id), zap.Error(err))
		c.postError(msgEditLoadFailed)
		return
	}
	if !c.isAuthor(post.Author) {
		c.screen.Alert(msgAuthorOnly)
		c.screen.Navigate(detailPath(id))
		return
	}
	c.views.PatchView(views.TargetFormFields, views.FormFields, views.FormValues{
		Title:      post.Title,
		Content:    post.Content,
		CategoryID: post.Category.ID,
		Categories: c.editCategories(post.Category),
	})
}

// editCategories returns the radio options for editing a post in cat,
// adding cat when the catalogue does not list it.
func (c *Controller) editCategories(cat api.CategoryRef) []views.CategoryOption {
	if cat.ID <= 0 {
		return c.categories
	}
	for _, opt := range c.categories {
		if opt.ID == cat.ID {
			return c.categories
		}
	}
	c.log.Info("post category not in catalogue", zap.Int("category_id", cat.ID), zap.String("slug", cat.Slug))
	name := cat.Name
	if name == "" {
		name = cat.Slug
	}
	opts := make([]views.CategoryOption, 0, len(c.categories)+1)
	opts = append(opts, c.categories...)
	return append(opts, views.CategoryOption{ID: cat.ID, Slug: cat.Slug, Name: name})
}

// PostForm is a submitted post form.
type PostForm struct {
	Mode     route.Mode
	ID       string
	Title    string
	Content  string
	Category string // selected category id, "" when none is checked
}

// SubmitPost validates f and creates or updates the post. Validation
// failures never reach the network.
func (c *Controller) SubmitPost(ctx context.Context, f PostForm) {
	c.postError("")

	if !c.tokens.IsAuthenticated() {
		c.screen.Alert(msgLoginRequired)
		c.screen.ShowLogin()
		return
	}
	categoryID, err := strconv.Atoi(strings.TrimSpace(f.Category))
	if err != nil || categoryID <= 0 {
		c.postError(msgPickCategory)
		return
	}
	payload := api.PostPayload{
		Title:      strings.TrimSpace(f.Title),
		Content:    strings.TrimSpace(f.Content),
		CategoryID: categoryID,
	}
	if payload.Title == "" || payload.Content == "" {
		c.postError(msgTitleContent)
		return
	}

	var postID string
	if f.Mode == route.ModeEdit {
		if route.Parse(editPath(f.ID)).Kind != route.KindForm {
			c.postError(msgSaveFailed)
			return
		}
		err = c.api.UpdatePost(ctx, f.ID, payload)
		postID = f.ID
	} else {
		var created api.Created
		created, err = c.api.CreatePost(ctx, payload)
		postID = strconv.Itoa(created.ID)
	}
	if err != nil {
		c.log.Warn("save failed", zap.String("mode", string(f.Mode)), zap.Error(err))
		c.postError(userMessage(err, msgSaveFailed))
		return
	}
	c.screen.Navigate(detailPath(postID))
}

// NotFound shows the fallback view for fragments no route matches.
func (c *Controller) NotFound(ctx context.Context, path string) {
	c.views.RenderView(views.NotFoundTemplate, views.NotFound{Path: path})
}

// Login exchanges credentials for a token and stores it. The returned
// error has already been shown to the user.
func (c *Controller) Login(ctx context.Context, username, password string) error {
	tok, err := c.api.Login(ctx, username, password)
	if err != nil {
		c.log.Info("login failed", zap.String("username", username), zap.Error(err))
		c.inlineError(views.TargetLoginError, userMessage(err, msgLoginFailed))
		return err
	}
	c.tokens.Store(tok)
	c.screen.CloseModals()
	c.RefreshHeader(ctx)
	c.screen.Navigate(route.PatternRoot)
	return nil
}

// Register creates an account and then offers the login modal.
func (c *Controller) Register(ctx context.Context, username, email, password string) {
	if err := c.api.Register(ctx, username, email, password); err != nil {
		c.log.Info("signup failed", zap.String("username", username), zap.Error(err))
		c.inlineError(views.TargetSignupError, userMessage(err, msgSignupFailed))
		return
	}
	c.screen.Alert(msgSignedUp)
	c.screen.ShowLogin()
}

// Logout forgets the token and returns to the list.
func (c *Controller) Logout(ctx context.Context) {
	c.tokens.Clear()
	c.RefreshHeader(ctx)
	c.screen.Navigate(route.PatternRoot)
	c.screen.Alert(msgLoggedOut)
}

// RejectLogin shows msg under the login form without calling the API.
func (c *Controller) RejectLogin(msg string) {
	c.inlineError(views.TargetLoginError, msg)
}

// isAuthor gates the edit and delete controls. It is a UI convenience; the
// API enforces authorship on every mutation.
func (c *Controller) isAuthor(author string) bool {
	if !c.tokens.IsAuthenticated() {
		return false
	}
	name := c.tokens.CurrentUsername()
	return name != "" && name == author
}

func (c *Controller) postError(msg string) {
	c.inlineError(views.TargetPostError, msg)
}

func (c *Controller) inlineError(target, msg string) {
	c.views.PatchView(target, views.InlineError, msg)
}

// userMessage maps an API client error to the text shown to the user.
func userMessage(err error, fallback string) string {
	if api.IsTransport(err) {
		return msgUnreachable
	}
	if apiErr, ok := api.AsAPIError(err); ok {
		return apiErr.MessageOr(fallback)
	}
	return fallback
}

func canceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

func detailPath(id string) string {
	return "/posts/" + id
}

func editPath(id string) string {
	return "/posts/" + id + "/edit"
}
