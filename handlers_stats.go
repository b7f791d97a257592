package mkmtrees

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// handleAdminStats answers zeros rather than an error when the database is
// missing or failing.
func (a *App) handleAdminStats(c echo.Context) error {
	if a.Store == nil {
		return c.JSON(http.StatusOK, Stats{RecentSubmissions: []Submission{}})
	}
	st, err := a.Store.Stats(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("stats: %v", err)
		st = Stats{RecentSubmissions: []Submission{}}
	}
	return c.JSON(http.StatusOK, st)
}
