// Package folio serves an artist's portfolio: public gallery pages rendered
// from a live read model of the document store, and an admin panel that
// writes back to it. Every committed change is pushed to open browser tabs.
package folio

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/eringen/folio/auth"
	"github.com/eringen/folio/docstore"
	"github.com/eringen/folio/live"
)

// App is the central folio application. It wires together the document
// store, auth provider, live layer, handlers and middleware.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Docs   *docstore.Store
	Auth   *auth.Provider
	Layer  *live.Layer
	Cache  *FeedCache
	Log    zerolog.Logger

	hub          *LiveHub
	customLog    bool
	customRoutes []func(*App)
	staticDir    string
	now          func() time.Time
	cancel       context.CancelFunc
	initialized  bool
}

// New creates a new App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		staticDir: cfg.StaticDir,
		now:       time.Now,
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}
	if !a.customLog {
		a.Log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}
	return a
}

// Init opens the store, starts the live layer and registers middleware and
// routes. Start calls it; tests call it directly and drive a.Echo.
func (a *App) Init() error {
	if a.initialized {
		return nil
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("folio: SessionSecret is required")
	}

	docs, err := docstore.Open(a.Config.DatabasePath, docstore.WithLogger(a.Log))
	if err != nil {
		return fmt.Errorf("folio: open store: %w", err)
	}
	a.Docs = docs

	provider, err := auth.NewProvider(docs.DB(), []byte(a.Config.SessionSecret), a.Config.SessionTTL)
	if err != nil {
		docs.Close()
		return fmt.Errorf("folio: init auth: %w", err)
	}
	a.Auth = provider

	if a.Config.AdminEmail != "" && a.Config.AdminPassword != "" {
		if _, err := provider.SetPassword(context.Background(), a.Config.AdminEmail, a.Config.AdminPassword); err != nil {
			docs.Close()
			return fmt.Errorf("folio: bootstrap admin: %w", err)
		}
	}

	a.Layer = live.New(docs,
		live.WithLogger(a.Log),
		live.WithSeedOnEmpty(!a.Config.SkipSeed),
		live.WithClock(a.now),
	)
	a.Layer.Start()

	a.Cache = NewFeedCache(a.Config.FeedCacheTTL)

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.hub = NewLiveHub(a.Log)
	go a.hub.Run(ctx)
	go a.forwardChanges(ctx)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}

	a.initialized = true
	return nil
}

// Start initializes the app and serves HTTP until the server is shut down.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.Log.Info().Str("addr", a.Config.Addr).Str("db", a.Config.DatabasePath).Msg("listening")
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for active ones.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

// forwardChanges invalidates the feed cache and notifies live clients after
// every collection replacement.
func (a *App) forwardChanges(ctx context.Context) {
	changes, unsub := a.Layer.Subscribe()
	defer unsub()
	for {
		select {
		case ch, ok := <-changes:
			if !ok {
				return
			}
			a.Cache.Invalidate()
			a.hub.Broadcast(ch)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Embedded assets are served under /public/ ahead of the static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/live.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.GET("/public/folio.css", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))

	e.Static("/public", a.staticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/live/", a.handleLive)

	// Public routes
	e.GET("/", a.handleHome)
	e.GET("/portfolio/", a.handlePortfolio)
	e.GET("/project/:id/", a.handleProject)
	e.GET("/about/", a.handleAbout)
	e.GET("/contact/", a.handleContact)

	// Admin routes
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", a.handleAdminLogout)
	e.POST("/admin/projects/draft/", a.handleProjectDraft)
	e.DELETE("/admin/projects/:id/", a.handleProjectDelete)
	e.POST("/admin/categories/", a.handleCategorySave)
	e.DELETE("/admin/categories/:id/", a.handleCategoryDelete)
	e.POST("/admin/contacts/", a.handleContactSave)
	e.DELETE("/admin/contacts/:id/", a.handleContactDelete)
	e.POST("/admin/settings/", a.handleSettingsSave)
	e.POST("/admin/about/draft/", a.handleAboutDraft)
	e.POST("/admin/uploads/", a.handleUploadCreate)
	e.DELETE("/admin/uploads/:filename/", a.handleUploadDelete)
}

// Close waits briefly for in-flight writes, stops the live layer and closes
// the store. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Layer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.Layer.Flush(ctx); err != nil {
			a.Log.Warn().Err(err).Msg("pending writes not flushed")
		}
		cancel()
		a.Layer.Close()
	}
	if a.cancel != nil {
		a.cancel()
	}
	if a.Docs != nil {
		return a.Docs.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
