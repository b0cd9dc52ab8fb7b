// Package blogfront hosts the blog front-end: a single page whose views,
// pagination and auth state are driven server-side against the blog API.
//
// The browser loads one shell page and, on every hash change or user
// action, asks blogfront for an envelope describing what to draw. Session
// storage, list state and stale-response bookkeeping live in a server-side
// Session per browser tab, keyed by a signed cookie and a tab id.
package blogfront

import (
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/blogfront/api"
	"github.com/eringen/blogfront/markdown"
	"github.com/eringen/blogfront/paging"
	"github.com/eringen/blogfront/views"
)

// App is the central blogfront application. It wires together the API
// client, session cache, handlers, middleware and templates.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Logger   *zap.Logger
	Client   *api.Client
	Store    *SessionStore
	Sessions *SessionCache

	templates   *template.Template
	md          *markdown.Renderer
	pager       paging.Pager
	limiter     *LoginLimiter
	stopSweeper func()
	staticDir   string
	ready       bool
}

// New creates a blogfront App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		pager:     paging.Default(),
		staticDir: "public",
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	if a.Logger == nil {
		l, err := zap.NewProduction()
		if err != nil {
			l = zap.NewNop()
		}
		a.Logger = l
	}
	return a
}

// Init validates the configuration, opens the session store and registers
// middleware and routes. Start calls it when it has not run yet.
func (a *App) Init() error {
	if a.ready {
		return nil
	}
	if err := a.Config.Validate(); err != nil {
		return err
	}
	mode, err := markdown.ParseMode(a.Config.MarkdownMode)
	if err != nil {
		return fmt.Errorf("blogfront: %w", err)
	}
	a.md = markdown.New(mode, markdown.WithStyle(a.Config.CodeStyle))

	store, err := NewSessionStore(a.Config.SessionDatabasePath)
	if err != nil {
		return fmt.Errorf("blogfront: init session store: %w", err)
	}
	a.Store = store
	a.Sessions = NewSessionCache(store, a.Config.SessionIdleTTL, a.Logger)

	a.Client = api.New(a.Config.APIBaseURL,
		api.WithTimeout(a.Config.APITimeout),
		api.WithLogger(a.Logger.Named("api")),
	)
	a.limiter = NewLoginLimiter(a.Config.LoginMaxAttempts, a.Config.LoginWindow)
	a.templates = views.Templates()

	a.setupMiddleware()
	a.setupRoutes()
	a.ready = true
	return nil
}

// Start initializes the app if needed, starts the session sweeper and
// serves until the server is shut down.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.stopSweeper = a.startSweeper(time.Minute)

	a.Logger.Info("listening",
		zap.String("addr", a.Config.Addr),
		zap.String("api", a.Client.BaseURL()),
		zap.Stringer("markdown", a.md.Mode()),
	)
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)
	e.GET("/healthz", a.handleHealth)

	e.GET("/", a.handleShell)
	e.GET("/view", a.handleView)

	act := e.Group("/action")
	act.POST("/category", a.handleCategory)
	act.POST("/page", a.handlePage)
	act.POST("/delete", a.handleDelete)
	act.POST("/posts", a.handleSubmit)
	act.POST("/login", a.handleLogin)
	act.POST("/register", a.handleRegister)
	act.POST("/logout", a.handleLogout)
}

// startSweeper runs sweep every interval. The returned func stops it.
func (a *App) startSweeper(interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case now := <-ticker.C:
				a.sweep(now)
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

// sweep drops idle sessions, expired session records and stale login
// failures.
func (a *App) sweep(now time.Time) {
	a.Sessions.Sweep(now, a.Config.SessionRetention)
	a.limiter.Sweep()
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.stopSweeper != nil {
		a.stopSweeper()
	}
	if a.Store != nil {
		a.Store.Close()
	}
	_ = a.Logger.Sync()
	return nil
}
