// Package mkmtrees is the site engine for a tree-surgery business: a public
// marketing site with blog, portfolio, reviews and products, and a JSON
// admin API behind a cookie session. It is built with Echo, templ and
// SQLite, and keeps uploaded media in an R2 bucket or a local directory.
package mkmtrees

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ejrshadbolt/mkmtrees-sub001/blob"
	"github.com/ejrshadbolt/mkmtrees-sub001/turnstile"
)

// App wires together the store, blob storage, handlers and middleware.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Store    *Store
	Blob     blob.Store
	Verifier turnstile.Verifier

	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	staticDir    string
	ownsStore    bool
}

// New creates an App with the given configuration. Nothing is opened until
// Open or Start is called.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:       cfg,
		Echo:         echo.New(),
		loginLimiter: NewLoginLimiter(5, time.Minute),
		staticDir:    "public",
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Open initializes the database, blob store and bot verifier unless they
// were supplied as options.
func (a *App) Open(ctx context.Context) error {
	if a.Store == nil {
		store, err := NewStore(a.Config.DatabasePath)
		if err != nil {
			return fmt.Errorf("mkmtrees: init store: %w", err)
		}
		a.Store = store
		a.ownsStore = true
	}

	if a.Blob == nil {
		if a.Config.r2Configured() {
			s3, err := blob.NewS3(ctx, a.Config.R2)
			if err != nil {
				return fmt.Errorf("mkmtrees: init r2: %w", err)
			}
			a.Blob = s3
		} else {
			dir, err := blob.NewDir(a.Config.MediaDir)
			if err != nil {
				return fmt.Errorf("mkmtrees: init media dir: %w", err)
			}
			a.Blob = dir
		}
	}

	if a.Verifier == nil && a.Config.TurnstileSecretKey != "" {
		a.Verifier = turnstile.New(a.Config.TurnstileSecretKey)
	}
	return nil
}

// Setup installs middleware and routes. It is separate from Start so tests
// can drive a.Echo directly.
func (a *App) Setup() {
	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
}

// Start opens resources, sets up the server and blocks serving requests.
func (a *App) Start() error {
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("mkmtrees: SessionSecret is required")
	}
	if err := a.Open(context.Background()); err != nil {
		return err
	}
	a.Setup()

	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo
	limit := a.formRateLimit()

	e.Static("/public", a.staticDir)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/media/:filename", a.handleMediaFile)

	// Pages
	e.GET("/", a.handleHome)
	e.GET("/blog", handleBlogRedirect)
	e.GET("/blog/", a.handleBlogPage)
	e.GET("/blog/:slug/", a.handlePostPage)
	e.GET("/portfolio/", a.handlePortfolioPage)
	e.GET("/portfolio/:slug/", a.handleProjectPage)
	e.GET("/contact/", a.handleContactPage)
	e.POST("/contact/", a.handleContactForm, limit)

	// Public API
	api := e.Group("/api")
	api.GET("/blog/posts", a.handlePublicPosts)
	api.GET("/blog/posts/:slug", a.handlePublicPost)
	api.GET("/blog/tags", a.handlePublicTags)
	api.GET("/portfolio/projects", a.handlePublicProjects)
	api.GET("/portfolio/projects/:slug", a.handlePublicProject)
	api.GET("/portfolio/categories", a.handlePublicCategories)
	api.GET("/reviews", a.handlePublicReviews)
	api.GET("/products", a.handlePublicProducts)

	api.POST("/contact", a.handleContact, limit)
	api.POST("/newsletter", a.handleNewsletter, limit)
	api.POST("/newsletter/unsubscribe", a.handleUnsubscribe, limit)

	api.POST("/auth/login", a.handleLogin)
	api.POST("/auth/logout", a.handleLogout)
	api.GET("/auth/me", a.handleMe, a.requireAdmin)

	// Admin API. Stats answers zeros without a database, so it only needs
	// the session.
	api.GET("/admin/stats", a.handleAdminStats, a.requireSession)

	admin := api.Group("/admin", a.requireAdmin)

	admin.GET("/posts", a.handleAdminPosts)
	admin.POST("/posts", a.handleAdminCreatePost)
	admin.GET("/posts/:id", a.handleAdminPost)
	admin.PUT("/posts/:id", a.handleAdminUpdatePost)
	admin.DELETE("/posts/:id", a.handleAdminDeletePost)
	admin.GET("/tags", a.handleAdminTags)
	admin.DELETE("/tags/:id", a.handleAdminDeleteTag)

	admin.GET("/authors", a.handleAdminAuthors)
	admin.POST("/authors", a.handleAdminCreateAuthor)
	admin.GET("/authors/:id", a.handleAdminAuthor)
	admin.PUT("/authors/:id", a.handleAdminUpdateAuthor)
	admin.DELETE("/authors/:id", a.handleAdminDeleteAuthor)

	admin.GET("/portfolio/categories", a.handleAdminCategories)
	admin.POST("/portfolio/categories", a.handleAdminCreateCategory)
	admin.GET("/portfolio/categories/:id", a.handleAdminCategory)
	admin.PUT("/portfolio/categories/:id", a.handleAdminUpdateCategory)
	admin.DELETE("/portfolio/categories/:id", a.handleAdminDeleteCategory)

	admin.GET("/portfolio/projects", a.handleAdminProjects)
	admin.POST("/portfolio/projects", a.handleAdminCreateProject)
	admin.GET("/portfolio/projects/:id", a.handleAdminProject)
	admin.PUT("/portfolio/projects/:id", a.handleAdminUpdateProject)
	admin.DELETE("/portfolio/projects/:id", a.handleAdminDeleteProject)
	admin.GET("/portfolio/projects/:id/images", a.handleAdminProjectImages)
	admin.POST("/portfolio/projects/:id/images", a.handleAdminAddProjectImage)
	admin.PUT("/portfolio/projects/:id/images/:imageId", a.handleAdminUpdateProjectImage)
	admin.DELETE("/portfolio/projects/:id/images/:imageId", a.handleAdminDeleteProjectImage)

	admin.GET("/media", a.handleAdminMedia)
	admin.POST("/media", a.handleAdminUpload)
	admin.POST("/media/reconcile", a.handleAdminReconcileMedia)
	admin.GET("/media/:id", a.handleAdminMediaItem)
	admin.PUT("/media/:id", a.handleAdminUpdateMedia)
	admin.DELETE("/media/:id", a.handleAdminDeleteMedia)

	admin.GET("/reviews", a.handleAdminReviews)
	admin.POST("/reviews", a.handleAdminCreateReview)
	admin.GET("/reviews/:id", a.handleAdminReview)
	admin.PUT("/reviews/:id", a.handleAdminUpdateReview)
	admin.DELETE("/reviews/:id", a.handleAdminDeleteReview)

	admin.GET("/submissions", a.handleAdminSubmissions)
	admin.GET("/submissions/:id", a.handleAdminSubmission)
	admin.PUT("/submissions/:id", a.handleAdminUpdateSubmission)
	admin.DELETE("/submissions/:id", a.handleAdminDeleteSubmission)

	admin.GET("/newsletter", a.handleAdminSubscribers)
	admin.PUT("/newsletter/:id", a.handleAdminUpdateSubscriber)
	admin.DELETE("/newsletter/:id", a.handleAdminDeleteSubscriber)

	admin.GET("/products", a.handleAdminProducts)
	admin.POST("/products", a.handleAdminCreateProduct)
	admin.GET("/products/:id", a.handleAdminProduct)
	admin.PUT("/products/:id", a.handleAdminUpdateProduct)
	admin.DELETE("/products/:id", a.handleAdminDeleteProduct)
}

// Close cleans up resources. Call this when the app is shutting down.
// A store passed in with WithStore is left open for its owner.
func (a *App) Close() error {
	if a.Store != nil && a.ownsStore {
		return a.Store.Close()
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

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("mkmtrees: required environment variable %s is not set", key)
	}
	return v
}
