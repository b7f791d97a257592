package mkmtrees

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

func (a *App) handleAdminSubmissions(c echo.Context) error {
	res, err := a.Store.ListSubmissions(c.Request().Context(), c.QueryParam("search"), c.QueryParam("status"), pageParams(c, 20))
	if err != nil {
		return internalError("Failed to fetch submissions", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (a *App) handleAdminSubmission(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	sub, err := a.Store.GetSubmission(c.Request().Context(), id)
	if err != nil {
		return lookupError("Submission", err)
	}
	return c.JSON(http.StatusOK, sub)
}

func (a *App) handleAdminUpdateSubmission(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req struct {
		Processed *bool `json:"processed"`
	}
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if req.Processed == nil {
		return badRequest("Missing required fields: processed")
	}
	ctx := c.Request().Context()
	if err := a.Store.SetSubmissionProcessed(ctx, id, *req.Processed); err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound("Submission")
		}
		return internalError("Failed to update submission", err)
	}
	sub, err := a.Store.GetSubmission(ctx, id)
	if err != nil {
		return internalError("Failed to fetch submission", err)
	}
	return c.JSON(http.StatusOK, sub)
}

func (a *App) handleAdminDeleteSubmission(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := a.Store.DeleteSubmission(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound("Submission")
		}
		return internalError("Failed to delete submission", err)
	}
	return c.JSON(http.StatusOK, apiMessage{Message: "Submission deleted"})
}
