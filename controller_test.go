package blogfront

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/blogfront/api"
	"github.com/eringen/blogfront/paging"
	"github.com/eringen/blogfront/route"
	"github.com/eringen/blogfront/views"
)

// fakeAPI is an in-memory posts API.
type fakeAPI struct {
	mu         sync.Mutex
	posts      []api.Post
	categories []api.Category
	deleteCode int
	calls      []string
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/posts", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		switch r.Method {
		case http.MethodGet:
			cat := r.URL.Query().Get("category")
			out := []api.Post{}
			for _, p := range f.posts {
				if cat == "" || p.Category.Slug == cat {
					out = append(out, p)
				}
			}
			json.NewEncoder(w).Encode(out)
		case http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id":99}`))
		}
	})
	mux.HandleFunc("/posts/", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		id := strings.TrimPrefix(r.URL.Path, "/posts/")
		switch r.Method {
		case http.MethodGet:
			for _, p := range f.posts {
				if fmt.Sprint(p.ID) == id {
					json.NewEncoder(w).Encode(p)
					return
				}
			}
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail":"Post not found"}`))
		case http.MethodPatch:
			w.Write([]byte(`{"id":` + id + `}`))
		case http.MethodDelete:
			code := f.deleteCode
			if code == 0 {
				code = http.StatusNoContent
			}
			w.WriteHeader(code)
		}
	})
	mux.HandleFunc("/categories", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		json.NewEncoder(w).Encode(f.categories)
	})
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		var req struct{ Username, Password string }
		json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail":"Invalid credentials"}`))
			return
		}
		w.Write([]byte(`{"token":"session-token-for-` + req.Username + `"}`))
	})
	mux.HandleFunc("/register", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{}`))
	})
	return mux
}

func (f *fakeAPI) record(r *http.Request) {
	f.mu.Lock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	f.mu.Unlock()
}

func (f *fakeAPI) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func numberedPosts(n int) []api.Post {
	posts := make([]api.Post, n)
	for i := range posts {
		posts[i] = api.Post{
			ID:       i,
			Title:    fmt.Sprintf("post-%02d", i),
			Excerpt:  "excerpt",
			Content:  "**body**",
			Author:   "alice",
			Category: api.CategoryRef{ID: 2, Slug: "cicd", Name: "CI/CD"},
		}
	}
	return posts
}

type fixture struct {
	api  *fakeAPI
	sess *Session
	env  *envelope
	ctrl *Controller
}

func newFixture(t *testing.T, f *fakeAPI) *fixture {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	sess := newSession("test")
	env := newEnvelope(1, nil)
	ctrl := NewController(ControllerDeps{
		API:        api.New(srv.URL).WithTokens(sess.Tokens()),
		Tokens:     sess.Tokens(),
		State:      sess.State(),
		Screen:     env,
		Templates:  views.Templates(),
		Pager:      paging.Default(),
		Categories: views.DefaultCategories(),
	})
	return &fixture{api: f, sess: sess, env: env, ctrl: ctrl}
}

func (fx *fixture) posts(t *testing.T) string {
	t.Helper()
	html, ok := fx.env.patchHTML(views.TargetPosts)
	require.True(t, ok, "posts section not patched")
	return html
}

func TestListRendersFirstPage(t *testing.T) {
	fx := newFixture(t, &fakeAPI{
		posts:      numberedPosts(7),
		categories: []api.Category{{Slug: "cicd", Name: "CI/CD", PostCount: 7}},
	})

	fx.ctrl.Dispatch(context.Background(), "#/")

	assert.True(t, fx.env.Replaced)
	assert.Contains(t, fx.env.HTML, "post-list-view")
	html := fx.posts(t)
	for i := 0; i < 5; i++ {
		assert.Contains(t, html, fmt.Sprintf("post-%02d", i))
	}
	assert.NotContains(t, html, "post-05")
	assert.Contains(t, html, `data-page="2"`)
	assert.NotContains(t, html, `data-page="3"`)

	tabs, ok := fx.env.patchHTML(views.TargetCategoryTabs)
	require.True(t, ok)
	assert.Contains(t, tabs, "전체 <span class=\"count\">(7)</span>")
	assert.Equal(t, 2, fx.sess.State().TotalPages)

	_, ok = fx.env.patchHTML(views.TargetAuthStatus)
	assert.True(t, ok, "header refreshed after every dispatch")
}

func TestGoToPageShowsMiddleSlice(t *testing.T) {
	fx := newFixture(t, &fakeAPI{posts: numberedPosts(12)})
	ctx := context.Background()

	fx.ctrl.List(ctx)
	fx.ctrl.GoToPage(ctx, 2)

	html := fx.posts(t)
	for i := 5; i < 10; i++ {
		assert.Contains(t, html, fmt.Sprintf("post-%02d", i))
	}
	assert.NotContains(t, html, "post-04")
	assert.NotContains(t, html, "post-10")
	assert.Contains(t, html, `class="page-number active" data-action="page" data-page="2"`)
	assert.NotContains(t, html, "disabled")
}

func TestPrevNextRespectBounds(t *testing.T) {
	fx := newFixture(t, &fakeAPI{posts: numberedPosts(12)})
	ctx := context.Background()

	fx.ctrl.List(ctx)
	before := len(fx.api.called())
	fx.ctrl.PrevPage(ctx)
	assert.Len(t, fx.api.called(), before, "prev on page 1 is a no-op")

	fx.ctrl.NextPage(ctx)
	fx.ctrl.NextPage(ctx)
	assert.Equal(t, 3, fx.sess.State().Page)

	before = len(fx.api.called())
	fx.ctrl.NextPage(ctx)
	assert.Len(t, fx.api.called(), before, "next on the last page is a no-op")
	assert.Contains(t, fx.posts(t), `id="next-btn" data-action="page" data-step="next" disabled`)
}

func TestSelectCategory(t *testing.T) {
	posts := numberedPosts(6)
	posts[5].Category = api.CategoryRef{ID: 4, Slug: "monitoring", Name: "Monitoring"}
	posts[5].Title = "only-monitoring"
	fx := newFixture(t, &fakeAPI{posts: posts})
	ctx := context.Background()

	fx.ctrl.List(ctx)
	fx.ctrl.GoToPage(ctx, 2)
	fx.ctrl.SelectCategory(ctx, "monitoring")

	assert.Equal(t, 1, fx.sess.State().Page)
	html := fx.posts(t)
	assert.Contains(t, html, "only-monitoring")
	assert.NotContains(t, html, "post-00")
	tabs, _ := fx.env.patchHTML(views.TargetCategoryTabs)
	assert.Contains(t, tabs, `class="category-tab active" data-action="category" data-category="monitoring"`)

	before := len(fx.api.called())
	fx.ctrl.SelectCategory(ctx, "monitoring")
	assert.Len(t, fx.api.called(), before, "reselecting the active tab does nothing")
}

func TestListEmptyAndFailure(t *testing.T) {
	fx := newFixture(t, &fakeAPI{})
	fx.ctrl.List(context.Background())
	assert.Contains(t, fx.posts(t), msgNoPosts)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	env := newEnvelope(1, nil)
	sess := newSession("x")
	ctrl := NewController(ControllerDeps{
		API:        api.New(srv.URL),
		Tokens:     sess.Tokens(),
		State:      sess.State(),
		Screen:     env,
		Templates:  views.Templates(),
		Categories: views.DefaultCategories(),
	})
	ctrl.List(context.Background())
	html, ok := env.patchHTML(views.TargetPosts)
	require.True(t, ok)
	assert.Contains(t, html, msgPostsFailed)
	assert.Contains(t, env.HTML, `data-category="cicd"`, "tabs fall back to the catalogue")
}

func TestDetailShowsAuthorControls(t *testing.T) {
	fx := newFixture(t, &fakeAPI{posts: numberedPosts(3)})
	ctx := context.Background()

	fx.ctrl.Dispatch(ctx, "#/posts/1")
	html, ok := fx.env.patchHTML(views.TargetDetail)
	require.True(t, ok)
	assert.Contains(t, html, "post-01")
	assert.Contains(t, html, "<strong>body</strong>")
	assert.NotContains(t, html, "edit-btn")

	fx.sess.Tokens().Store("session-token-for-alice")
	fx.ctrl.Dispatch(ctx, "/posts/1")
	html, _ = fx.env.patchHTML(views.TargetDetail)
	assert.Contains(t, html, "edit-btn")
	assert.Contains(t, html, "delete-btn")
}

func TestDetailLoadError(t *testing.T) {
	fx := newFixture(t, &fakeAPI{})
	fx.ctrl.Dispatch(context.Background(), "/posts/42")
	assert.Contains(t, fx.env.HTML, msgDetailFailed)
}

func TestDeletePost(t *testing.T) {
	fx := newFixture(t, &fakeAPI{posts: numberedPosts(3)})
	fx.sess.Tokens().Store("session-token-for-alice")

	fx.ctrl.DeletePost(context.Background(), "1")
	assert.Equal(t, msgDeleted, fx.env.Message)
	assert.Equal(t, route.PatternRoot, fx.env.Target)
	assert.Contains(t, fx.api.called(), "DELETE /posts/1")
}

func TestDeletePostNotNoContent(t *testing.T) {
	fx := newFixture(t, &fakeAPI{posts: numberedPosts(3), deleteCode: http.StatusOK})
	fx.ctrl.DeletePost(context.Background(), "1")
	assert.Equal(t, msgDeleteFailed, fx.env.Message)
	assert.Empty(t, fx.env.Target)
}

func TestFormRequiresLogin(t *testing.T) {
	fx := newFixture(t, &fakeAPI{})
	fx.ctrl.Dispatch(context.Background(), "/posts/new")

	assert.Equal(t, msgLoginRequired, fx.env.Message)
	assert.True(t, fx.env.Login)
	assert.False(t, fx.env.Replaced)
}

func TestEditFormPrefillsForAuthor(t *testing.T) {
	fx := newFixture(t, &fakeAPI{posts: numberedPosts(3)})
	fx.sess.Tokens().Store("session-token-for-alice")

	fx.ctrl.Dispatch(context.Background(), "/posts/2/edit")
	assert.Contains(t, fx.env.HTML, headingEdit)
	fields, ok := fx.env.patchHTML(views.TargetFormFields)
	require.True(t, ok)
	assert.Contains(t, fields, "post-02")
	assert.Contains(t, fields, `value="2" checked`)
}

func TestEditFormRejectsOtherUser(t *testing.T) {
	fx := newFixture(t, &fakeAPI{posts: numberedPosts(3)})
	fx.sess.Tokens().Store("session-token-for-mallory")

	fx.ctrl.Dispatch(context.Background(), "/posts/2/edit")
	assert.Equal(t, msgAuthorOnly, fx.env.Message)
	assert.Equal(t, "/posts/2", fx.env.Target)
	_, ok := fx.env.patchHTML(views.TargetFormFields)
	assert.False(t, ok)
}

func TestSubmitValidationSkipsNetwork(t *testing.T) {
	fx := newFixture(t, &fakeAPI{})
	fx.sess.Tokens().Store("session-token-for-alice")
	ctx := context.Background()

	fx.ctrl.SubmitPost(ctx, PostForm{Mode: route.ModeCreate, Title: "t", Content: "c"})
	html, _ := fx.env.patchHTML(views.TargetPostError)
	assert.Contains(t, html, msgPickCategory)

	fx.ctrl.SubmitPost(ctx, PostForm{Mode: route.ModeCreate, Title: "  ", Content: "c", Category: "2"})
	html, _ = fx.env.patchHTML(views.TargetPostError)
	assert.Contains(t, html, msgTitleContent)

	assert.Empty(t, fx.api.called())
}

func TestSubmitCreateAndUpdate(t *testing.T) {
	fx := newFixture(t, &fakeAPI{posts: numberedPosts(3)})
	fx.sess.Tokens().Store("session-token-for-alice")
	ctx := context.Background()

	fx.ctrl.SubmitPost(ctx, PostForm{Mode: route.ModeCreate, Title: "t", Content: "c", Category: "2"})
	assert.Equal(t, "/posts/99", fx.env.Target)

	fx.ctrl.SubmitPost(ctx, PostForm{Mode: route.ModeEdit, ID: "2", Title: "t", Content: "c", Category: "2"})
	assert.Equal(t, "/posts/2", fx.env.Target)
	assert.Equal(t, []string{"POST /posts", "PATCH /posts/2"}, fx.api.called())
}

func TestLoginLogout(t *testing.T) {
	fx := newFixture(t, &fakeAPI{})
	ctx := context.Background()

	err := fx.ctrl.Login(ctx, "alice", "wrong")
	require.Error(t, err)
	html, _ := fx.env.patchHTML(views.TargetLoginError)
	assert.Contains(t, html, "Invalid credentials")
	assert.False(t, fx.sess.Tokens().IsAuthenticated())

	require.NoError(t, fx.ctrl.Login(ctx, "alice", "secret"))
	assert.Equal(t, "alice", fx.sess.Tokens().CurrentUsername())
	assert.True(t, fx.env.Close)
	header, _ := fx.env.patchHTML(views.TargetAuthStatus)
	assert.Contains(t, header, "alice")

	fx.ctrl.Logout(ctx)
	assert.False(t, fx.sess.Tokens().IsAuthenticated())
	assert.Equal(t, msgLoggedOut, fx.env.Message)
	assert.Equal(t, route.PatternRoot, fx.env.Target)
}

func TestRegisterOffersLogin(t *testing.T) {
	fx := newFixture(t, &fakeAPI{})
	fx.ctrl.Register(context.Background(), "bob", "bob@example.com", "pw")
	assert.Equal(t, msgSignedUp, fx.env.Message)
	assert.True(t, fx.env.Login)
}

func TestNotFoundView(t *testing.T) {
	fx := newFixture(t, &fakeAPI{})
	m := fx.ctrl.Dispatch(context.Background(), "#/nowhere")
	assert.False(t, m.Matched())
	assert.True(t, fx.env.Replaced)
	assert.Contains(t, fx.env.HTML, "/nowhere")
}

func TestGuardDropsStaleWrites(t *testing.T) {
	sess := newSession("g")
	_, gen, cancel := sess.Navigate(context.Background())
	defer cancel()
	env := newEnvelope(gen, nil)
	screen := guard(env, sess.Live(gen))

	screen.Alert("first")
	_, _, cancel2 := sess.Navigate(context.Background())
	defer cancel2()
	screen.Alert("second")
	screen.Navigate("/late")

	assert.Equal(t, "first", env.Message)
	assert.Empty(t, env.Target)
}

func TestNavigateCancelsPrevious(t *testing.T) {
	sess := newSession("n")
	ctx1, gen1, _ := sess.Navigate(context.Background())
	ctx2, gen2, cancel := sess.Navigate(context.Background())
	defer cancel()

	assert.ErrorIs(t, ctx1.Err(), context.Canceled)
	assert.NoError(t, ctx2.Err())
	assert.Greater(t, gen2, gen1)
}

func TestNavigateGenerationSurvivesRestore(t *testing.T) {
	sess := newSession("r")
	_, gen, cancel := sess.Navigate(context.Background())
	cancel()

	restored := sessionFromRecord(sess.record())
	_, next, cancel := restored.Navigate(context.Background())
	defer cancel()
	assert.Greater(t, next, gen, "a restored session must not reissue old generations")
}

func TestNextPageAfterRestore(t *testing.T) {
	fx := newFixture(t, &fakeAPI{posts: numberedPosts(12)})
	ctx := context.Background()
	fx.ctrl.List(ctx)

	// Page counts are not persisted.
	fx.sess.State().TotalPages = 0
	fx.ctrl.NextPage(ctx)

	assert.Equal(t, 2, fx.sess.State().Page)
	assert.Equal(t, 3, fx.sess.State().TotalPages)
	assert.Contains(t, fx.posts(t), "post-05")

	fx.ctrl.NextPage(ctx)
	fx.sess.State().TotalPages = 0
	fx.ctrl.NextPage(ctx)
	assert.Equal(t, 3, fx.sess.State().Page, "next stays on the last page")
}

func TestSelectCategoryReloadsMissingCounts(t *testing.T) {
	fx := newFixture(t, &fakeAPI{
		posts:      numberedPosts(3),
		categories: []api.Category{{Slug: "cicd", Name: "CI/CD", PostCount: 3}},
	})

	fx.ctrl.SelectCategory(context.Background(), "cicd")

	assert.Contains(t, fx.api.called(), "GET /categories")
	tabs, ok := fx.env.patchHTML(views.TargetCategoryTabs)
	require.True(t, ok)
	assert.Contains(t, tabs, `<span class="count">(3)</span>`)
}

func TestEditFormAddsUnknownCategory(t *testing.T) {
	posts := numberedPosts(3)
	posts[2].Category = api.CategoryRef{ID: 42, Slug: "retired", Name: "Retired"}
	fx := newFixture(t, &fakeAPI{posts: posts})
	fx.sess.Tokens().Store("session-token-for-alice")

	fx.ctrl.Dispatch(context.Background(), "/posts/2/edit")

	html, ok := fx.env.patchHTML(views.TargetFormFields)
	require.True(t, ok)
	assert.Contains(t, html, `value="42" checked`)
	assert.Contains(t, html, "Retired")
}
