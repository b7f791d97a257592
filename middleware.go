package mkmtrees

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/httprate"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/cors"

	"github.com/ejrshadbolt/mkmtrees-sub001/views"
)

func isAPI(path string) bool {
	return strings.HasPrefix(path, "/api/")
}

func (a *App) setupMiddleware() {
	e := a.Echo

	e.Logger.SetLevel(logLevel(a.Config.LogLevel))

	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)

	e.HTTPErrorHandler = a.httpErrorHandler

	e.Pre(middleware.NonWWWRedirect())
	e.Pre(a.corsMiddleware())

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			c.Logger().Infof("%s %s -> %d (%s) %s", v.Method, v.URI, v.Status, v.Latency, v.RemoteIP)
			return nil
		},
	}))

	e.Use(middleware.Recover())

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return strings.HasPrefix(path, "/public/") || strings.HasPrefix(path, "/media/")
		},
	}))

	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: a.contentSecurityPolicy(),
		HSTSMaxAge:            31536000,
		HSTSExcludeSubdomains: false,
	}))

	e.Use(session.Middleware(a.newSessionStore()))

	e.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		ContextKey:  middleware.DefaultCSRFConfig.ContextKey,
		TokenLookup: "header:X-CSRF-Token,form:_csrf",
		CookieName:  "_csrf",
		CookiePath:  "/",
		CookieSameSite: func() http.SameSite {
			return http.SameSiteLaxMode
		}(),
		CookieSecure: a.Config.CookieSecure,
		Skipper: func(c echo.Context) bool {
			// JSON API callers authenticate with the SameSite session cookie.
			path := c.Request().URL.Path
			return isAPI(path) || strings.HasPrefix(path, "/media/")
		},
		ErrorHandler: func(err error, c echo.Context) error {
			return c.String(http.StatusForbidden, "Forbidden")
		},
	}))

	e.Use(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return strings.HasPrefix(path, "/public") ||
				strings.HasPrefix(path, "/api/") ||
				strings.HasPrefix(path, "/media/") ||
				path == "/feed.xml"
		},
	}))

	e.Use(cacheControlMiddleware)
}

func (a *App) contentSecurityPolicy() string {
	img := "'self' data:"
	if u := strings.TrimRight(a.Config.MediaPublicURL, "/"); u != "" {
		img += " " + u
	}
	frame := "https://challenges.cloudflare.com"
	return "default-src 'self'; " +
		"script-src 'self' 'unsafe-inline' " + frame + "; " +
		"style-src 'self' 'unsafe-inline'; " +
		"img-src " + img + "; " +
		"font-src 'self'; " +
		"connect-src 'self'; " +
		"frame-src " + frame
}

func cacheControlMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.Request().URL.Path
		switch {
		case strings.HasPrefix(path, "/public/"):
			c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		case strings.HasPrefix(path, "/media/"):
			c.Response().Header().Set("Cache-Control", mediaCacheControl)
		case path == "/feed.xml":
			c.Response().Header().Set("Cache-Control", "public, max-age=86400")
		case isAPI(path), path == "/contact/":
			c.Response().Header().Set("Cache-Control", "no-store")
		default:
			c.Response().Header().Set("Cache-Control", "public, max-age=3600")
		}
		return next(c)
	}
}

// corsMiddleware applies the CORS policy to /api/ requests only. Preflight
// requests are answered before routing.
func (a *App) corsMiddleware() echo.MiddlewareFunc {
	origins := a.Config.CORSOrigins
	if len(origins) == 0 {
		origins = []string{strings.TrimRight(a.Config.URL, "/")}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           600,
	})
	wrap := echo.WrapMiddleware(c.Handler)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		withCORS := wrap(next)
		return func(ctx echo.Context) error {
			if isAPI(ctx.Request().URL.Path) {
				return withCORS(ctx)
			}
			return next(ctx)
		}
	}
}

// formRateLimit limits public form posts per client IP and endpoint.
func (a *App) formRateLimit() echo.MiddlewareFunc {
	return echo.WrapMiddleware(httprate.Limit(
		a.Config.FormRateLimit,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByRealIP, httprate.KeyByEndpoint),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(apiError{Error: "Too many requests. Please try again later."})
		}),
	))
}

func (a *App) newSessionStore() *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(a.Config.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   60 * 60 * 12,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
	}
	return store
}

// CsrfToken extracts the CSRF token from the Echo context.
func CsrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}

// httpErrorHandler answers /api/ paths with the JSON error envelope and
// everything else with the styled HTML pages.
func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	}
	if code >= 500 {
		if he != nil && he.Internal != nil {
			c.Logger().Errorf("%s %s: %v: %v", c.Request().Method, c.Request().URL.Path, he.Message, he.Internal)
		} else {
			c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
		}
	}

	if isAPI(c.Request().URL.Path) {
		body := apiError{Error: http.StatusText(code)}
		if he != nil {
			switch m := he.Message.(type) {
			case apiError:
				body = m
			case string:
				body.Error = m
			}
		}
		if code >= 500 && (he == nil || he.Message == nil) {
			body = apiError{Error: "Internal server error"}
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
		return
	}

	switch {
	case code == http.StatusNotFound:
		_ = RenderStatus(c, code, views.NotFound(a.site()))
	case code >= 500:
		_ = RenderStatus(c, code, views.ServerError(a.site()))
	default:
		a.Echo.DefaultHTTPErrorHandler(err, c)
	}
}
