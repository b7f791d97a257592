package mkmtrees

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type reviewRequest struct {
	ReviewerName     *string `json:"reviewer_name"`
	ReviewerEmail    *string `json:"reviewer_email"`
	ReviewerLocation *string `json:"reviewer_location"`
	Rating           *int    `json:"rating"`
	Title            *string `json:"title"`
	Content          *string `json:"content"`
	ServiceType      *string `json:"service_type"`
	Approved         *bool   `json:"approved"`
}

func validRating(r int) bool { return r >= 1 && r <= 5 }

func (a *App) handleAdminReviews(c echo.Context) error {
	rating, _ := strconv.Atoi(c.QueryParam("rating"))
	res, err := a.Store.ListReviews(c.Request().Context(), ReviewFilter{
		Search:    c.QueryParam("search"),
		Status:    c.QueryParam("status"),
		Rating:    rating,
		SortBy:    c.QueryParam("sort_by"),
		SortOrder: c.QueryParam("sort_order"),
	}, pageParams(c, 20))
	if err != nil {
		return internalError("Failed to fetch reviews", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (a *App) handleAdminReview(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	r, err := a.Store.GetReview(c.Request().Context(), id)
	if err != nil {
		return lookupError("Review", err)
	}
	return c.JSON(http.StatusOK, r)
}

func (a *App) handleAdminCreateReview(c echo.Context) error {
	var req reviewRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	name, content := str(req.ReviewerName, ""), str(req.Content, "")
	rating := ""
	if req.Rating != nil {
		rating = strconv.Itoa(*req.Rating)
	}
	if err := requireFields(field("reviewer_name", name), field("rating", rating), field("content", content)); err != nil {
		return err
	}
	if !validRating(*req.Rating) {
		return badRequest("Rating must be between 1 and 5")
	}
	ts := timestamp(now())
	ctx := c.Request().Context()
	id, err := a.Store.CreateReview(ctx, Review{
		ReviewerName:     name,
		ReviewerEmail:    str(req.ReviewerEmail, ""),
		ReviewerLocation: str(req.ReviewerLocation, ""),
		Rating:           *req.Rating,
		Title:            str(req.Title, ""),
		Content:          content,
		ServiceType:      str(req.ServiceType, ""),
		Approved:         boolOr(req.Approved, false),
		CreatedAt:        ts,
		UpdatedAt:        ts,
	})
	if err != nil {
		return internalError("Failed to create review", err)
	}
	r, err := a.Store.GetReview(ctx, id)
	if err != nil {
		return internalError("Failed to fetch review", err)
	}
	return c.JSON(http.StatusCreated, r)
}

func (a *App) handleAdminUpdateReview(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req reviewRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	r, err := a.Store.GetReview(ctx, id)
	if err != nil {
		return lookupError("Review", err)
	}
	r.ReviewerName = str(req.ReviewerName, r.ReviewerName)
	r.Content = str(req.Content, r.Content)
	if err := requireFields(field("reviewer_name", r.ReviewerName), field("content", r.Content)); err != nil {
		return err
	}
	r.Rating = intOr(req.Rating, r.Rating)
	if !validRating(r.Rating) {
		return badRequest("Rating must be between 1 and 5")
	}
	r.ReviewerEmail = str(req.ReviewerEmail, r.ReviewerEmail)
	r.ReviewerLocation = str(req.ReviewerLocation, r.ReviewerLocation)
	r.Title = str(req.Title, r.Title)
	r.ServiceType = str(req.ServiceType, r.ServiceType)
	r.Approved = boolOr(req.Approved, r.Approved)
	r.UpdatedAt = timestamp(now())
	if err := a.Store.UpdateReview(ctx, r); err != nil {
		return internalError("Failed to update review", err)
	}
	updated, err := a.Store.GetReview(ctx, id)
	if err != nil {
		return internalError("Failed to fetch review", err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (a *App) handleAdminDeleteReview(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := a.Store.DeleteReview(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound("Review")
		}
		return internalError("Failed to delete review", err)
	}
	return c.JSON(http.StatusOK, apiMessage{Message: "Review deleted"})
}
