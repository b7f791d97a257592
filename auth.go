package mkmtrees

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const (
	sessionName = "admin_session"
	userIDKey   = "user_id"
)

// sessionUserID returns the authenticated user id, or 0.
func sessionUserID(c echo.Context) int64 {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return 0
	}
	id, _ := sess.Values[userIDKey].(int64)
	return id
}

// IsAdmin reports whether the request carries an authenticated session.
func IsAdmin(c echo.Context) bool {
	return sessionUserID(c) > 0
}

func setAdminSession(c echo.Context, userID int64) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values[userIDKey] = userID
	return sess.Save(c.Request(), c.Response())
}

func clearAdminSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	delete(sess.Values, userIDKey)
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// requireSession rejects requests without an authenticated session before
// anything touches the database.
func (a *App) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := sessionUserID(c)
		if id == 0 {
			return unauthorized()
		}
		c.Set(userIDKey, id)
		return next(c)
	}
}

// requireAdmin is requireSession plus a configured database.
func (a *App) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return a.requireSession(func(c echo.Context) error {
		if a.Store == nil {
			return unavailable("Database")
		}
		return next(c)
	})
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (a *App) handleLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := requireFields(field("email", req.Email), field("password", req.Password)); err != nil {
		return err
	}
	if a.Store == nil {
		return unavailable("Database")
	}
	user, err := a.Store.Authenticate(c.Request().Context(), req.Email, req.Password)
	if errors.Is(err, ErrNotFound) {
		a.loginLimiter.Record(ip)
		c.Logger().Warnf("failed login for %q from %s", strings.ToLower(req.Email), ip)
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}
	if err != nil {
		return internalError("Login failed", err)
	}
	a.loginLimiter.Reset(ip)
	if err := setAdminSession(c, user.ID); err != nil {
		return internalError("Login failed", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (a *App) handleLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return internalError("Logout failed", err)
	}
	return c.JSON(http.StatusOK, apiMessage{Message: "Logged out"})
}

func (a *App) handleMe(c echo.Context) error {
	id := *currentUserID(c)
	user, err := a.Store.GetUser(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return unauthorized()
	}
	if err != nil {
		return internalError("Failed to fetch user", err)
	}
	return c.JSON(http.StatusOK, user)
}
