package mkmtrees

import (
	"encoding/csv"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

func (a *App) handleAdminSubscribers(c echo.Context) error {
	search, status := c.QueryParam("search"), c.QueryParam("status")
	if c.QueryParam("export") == "csv" {
		return a.exportSubscribers(c, search, status)
	}
	res, err := a.Store.ListSubscribers(c.Request().Context(), search, status, pageParams(c, 20))
	if err != nil {
		return internalError("Failed to fetch subscribers", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (a *App) exportSubscribers(c echo.Context, search, status string) error {
	subs, err := a.Store.AllSubscribers(c.Request().Context(), search, status)
	if err != nil {
		return internalError("Failed to export subscribers", err)
	}
	h := c.Response().Header()
	h.Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	h.Set(echo.HeaderContentDisposition, `attachment; filename="newsletter-subscribers.csv"`)
	c.Response().WriteHeader(http.StatusOK)

	w := csv.NewWriter(c.Response())
	w.Write([]string{"email", "status", "subscribed_at", "unsubscribed_at", "source"})
	for _, s := range subs {
		w.Write([]string{csvCell(s.Email), s.Status, s.SubscribedAt, str(s.UnsubscribedAt, ""), csvCell(s.Source)})
	}
	w.Flush()
	return w.Error()
}

// csvCell quotes visitor-supplied values that a spreadsheet would otherwise
// evaluate as a formula.
func csvCell(v string) string {
	if v != "" && strings.ContainsRune("=+-@\t\r", rune(v[0])) {
		return "'" + v
	}
	return v
}

func (a *App) handleAdminUpdateSubscriber(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := requireFields(field("status", req.Status)); err != nil {
		return err
	}
	if !validSubscriberStatus(req.Status) {
		return badRequest("Invalid status")
	}
	ctx := c.Request().Context()
	if err := a.Store.SetSubscriberStatus(ctx, id, req.Status, timestamp(now())); err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound("Subscriber")
		}
		return internalError("Failed to update subscriber", err)
	}
	sub, err := a.Store.GetSubscriber(ctx, id)
	if err != nil {
		return internalError("Failed to fetch subscriber", err)
	}
	return c.JSON(http.StatusOK, sub)
}

func (a *App) handleAdminDeleteSubscriber(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := a.Store.DeleteSubscriber(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound("Subscriber")
		}
		return internalError("Failed to delete subscriber", err)
	}
	return c.JSON(http.StatusOK, apiMessage{Message: "Subscriber deleted"})
}
