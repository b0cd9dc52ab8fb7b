package blogfront

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/blogfront/api"
	"github.com/eringen/blogfront/route"
	"github.com/eringen/blogfront/view"
	"github.com/eringen/blogfront/views"
)

// handleShell serves the page every tab starts from. The auth controls are
// filled in by the tab's first view, which knows the tab id.
func (a *App) handleShell(c echo.Context) error {
	if _, err := a.browserID(c); err != nil {
		return err
	}
	return Render(c, view.Component(a.templates, views.ShellTemplate, views.Shell{
		Site: views.SiteConfig{Name: a.Config.Name, Description: a.Config.Description},
		CSRF: CsrfToken(c),
	}))
}

// handleView renders the view for a hash fragment. It supersedes whatever
// navigation the session had in flight.
func (a *App) handleView(c echo.Context) error {
	sess, err := a.session(c)
	if err != nil {
		return err
	}
	ctx, gen, cancel := sess.Navigate(c.Request().Context())
	defer cancel()

	sess.Lock()
	defer a.release(sess)

	env := newEnvelope(gen, a.Logger)
	ctrl := a.controller(sess, guard(env, sess.Live(gen)))
	m := ctrl.Dispatch(ctx, c.QueryParam("route"))
	if !m.Matched() {
		a.Logger.Debug("unmatched route", zap.String("path", m.Path))
	}
	return reply(c, env)
}

// action runs fn against the session's current view. Writes are dropped
// if a navigation starts while fn runs.
func (a *App) action(c echo.Context, fn func(ctx context.Context, ctrl *Controller)) error {
	return a.sessionAction(c, func(ctx context.Context, _ *Session, ctrl *Controller) {
		fn(ctx, ctrl)
	})
}

func (a *App) sessionAction(c echo.Context, fn func(ctx context.Context, sess *Session, ctrl *Controller)) error {
	sess, err := a.session(c)
	if err != nil {
		return err
	}
	gen := sess.Generation()

	sess.Lock()
	defer a.release(sess)

	env := newEnvelope(gen, a.Logger)
	fn(c.Request().Context(), sess, a.controller(sess, guard(env, sess.Live(gen))))
	return reply(c, env)
}

func (a *App) handleCategory(c echo.Context) error {
	slug := strings.TrimSpace(c.FormValue("category"))
	return a.action(c, func(ctx context.Context, ctrl *Controller) {
		ctrl.SelectCategory(ctx, slug)
	})
}

func (a *App) handlePage(c echo.Context) error {
	step := c.FormValue("step")
	var page int
	if step == "" {
		n, err := strconv.Atoi(c.FormValue("page"))
		if err != nil || n < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid page")
		}
		page = n
	}
	return a.action(c, func(ctx context.Context, ctrl *Controller) {
		switch step {
		case "prev":
			ctrl.PrevPage(ctx)
		case "next":
			ctrl.NextPage(ctx)
		default:
			ctrl.GoToPage(ctx, page)
		}
	})
}

func (a *App) handleDelete(c echo.Context) error {
	id := c.FormValue("id")
	if route.Parse(detailPath(id)).Kind != route.KindDetail {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid post id")
	}
	return a.action(c, func(ctx context.Context, ctrl *Controller) {
		ctrl.DeletePost(ctx, id)
	})
}

func (a *App) handleSubmit(c echo.Context) error {
	form := PostForm{
		Mode:     route.Mode(c.FormValue("mode")),
		ID:       c.FormValue("id"),
		Title:    c.FormValue("title"),
		Content:  c.FormValue("content"),
		Category: c.FormValue("category"),
	}
	return a.action(c, func(ctx context.Context, ctrl *Controller) {
		ctrl.SubmitPost(ctx, form)
	})
}

func (a *App) handleLogin(c echo.Context) error {
	ip := c.RealIP()
	username := strings.TrimSpace(c.FormValue("username"))
	password := c.FormValue("password")

	if !a.limiter.Check(ip) {
		c.Response().Header().Set("Retry-After", strconv.Itoa(int(a.limiter.RetryAfter(ip).Seconds())+1))
		a.Logger.Warn("login throttled", zap.String("ip", ip))
		return a.action(c, func(_ context.Context, ctrl *Controller) {
			ctrl.RejectLogin(msgTooManyLogins)
		})
	}
	return a.action(c, func(ctx context.Context, ctrl *Controller) {
		err := ctrl.Login(ctx, username, password)
		switch {
		case err == nil:
			a.limiter.Succeed(ip)
		case !api.IsTransport(err):
			a.limiter.Fail(ip)
		}
	})
}

func (a *App) handleRegister(c echo.Context) error {
	username := strings.TrimSpace(c.FormValue("username"))
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")
	return a.action(c, func(ctx context.Context, ctrl *Controller) {
		ctrl.Register(ctx, username, email, password)
	})
}

// handleLogout clears the tab's credential and drops its session; the
// tab's next request starts a fresh one.
func (a *App) handleLogout(c echo.Context) error {
	return a.sessionAction(c, func(ctx context.Context, sess *Session, ctrl *Controller) {
		ctrl.Logout(ctx)
		sess.End()
	})
}

func (a *App) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": a.Sessions.Len(),
	})
}

func (a *App) controller(sess *Session, screen Screen) *Controller {
	tokens := sess.Tokens()
	return NewController(ControllerDeps{
		API:        a.Client.WithTokens(tokens),
		Tokens:     tokens,
		State:      sess.State(),
		Screen:     screen,
		Templates:  a.templates,
		Markdown:   a.md,
		Pager:      a.pager,
		Categories: a.Config.Categories,
		Log:        a.Logger.With(zap.String("session", sess.ID)),
	})
}

// release persists the session, or forgets it once ended, and lets its
// next handler run.
func (a *App) release(sess *Session) {
	defer sess.Unlock()
	if sess.Ended() {
		if err := a.Sessions.Forget(sess.ID); err != nil {
			a.Logger.Warn("session delete failed", zap.String("session", sess.ID), zap.Error(err))
		}
		return
	}
	if err := a.Sessions.Save(sess); err != nil {
		a.Logger.Warn("session save failed", zap.String("session", sess.ID), zap.Error(err))
	}
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	he, ok := err.(*echo.HTTPError)
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.Error("server error", zap.String("uri", c.Request().RequestURI), zap.Error(err))
	} else {
		a.Logger.Debug("request rejected", zap.String("uri", c.Request().RequestURI), zap.Error(err))
	}

	// The shell and static files are loaded by the browser, not the shell
	// script, so they get plain responses.
	path := c.Request().URL.Path
	if path == "/" || strings.HasPrefix(path, "/public/") {
		if code >= 500 {
			_ = c.String(code, msgServerError)
			return
		}
		a.Echo.DefaultHTTPErrorHandler(err, c)
		return
	}
	_ = replyError(c, code, errorMessage(code))
}

// errorMessage is the alert shown for a failed request with status code.
func errorMessage(code int) string {
	switch {
	case code >= 500:
		return msgServerError
	case code == http.StatusForbidden:
		return msgForbidden
	case code == http.StatusNotFound, code == http.StatusMethodNotAllowed:
		return msgNoEndpoint
	}
	return msgBadRequest
}
