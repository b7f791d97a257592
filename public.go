package mkmtrees

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ejrshadbolt/mkmtrees-sub001/paging"
)

// listOrEmpty answers an empty page when the database is not configured so
// the public site keeps rendering.
func listOrEmpty[T any](a *App, c echo.Context, what string, p paging.Params, list func() (paging.Result[T], error)) error {
	if a.Store == nil {
		return c.JSON(http.StatusOK, paging.Empty[T](p))
	}
	res, err := list()
	if err != nil {
		return internalError("Failed to fetch "+what, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (a *App) handlePublicPosts(c echo.Context) error {
	p := pageParams(c, 10)
	return listOrEmpty(a, c, "posts", p, func() (paging.Result[Post], error) {
		return a.Store.ListPosts(c.Request().Context(), PostFilter{
			Search:        c.QueryParam("search"),
			Tag:           c.QueryParam("tag"),
			PublishedOnly: true,
		}, p)
	})
}

func (a *App) handlePublicPost(c echo.Context) error {
	if a.Store == nil {
		return unavailable("Database")
	}
	post, err := a.Store.GetPublishedPost(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return lookupError("Post", err)
	}
	return c.JSON(http.StatusOK, post)
}

func (a *App) handlePublicTags(c echo.Context) error {
	p := pageParams(c, 50)
	return listOrEmpty(a, c, "tags", p, func() (paging.Result[Tag], error) {
		return a.Store.ListTags(c.Request().Context(), c.QueryParam("search"), true, p)
	})
}

func (a *App) handlePublicProjects(c echo.Context) error {
	p := pageParams(c, 12)
	return listOrEmpty(a, c, "projects", p, func() (paging.Result[PortfolioProject], error) {
		return a.Store.ListProjects(c.Request().Context(), ProjectFilter{
			Search:        c.QueryParam("search"),
			Category:      c.QueryParam("category"),
			PublishedOnly: true,
		}, p)
	})
}

func (a *App) handlePublicProject(c echo.Context) error {
	if a.Store == nil {
		return unavailable("Database")
	}
	project, err := a.Store.GetPublishedProject(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return lookupError("Project", err)
	}
	return c.JSON(http.StatusOK, project)
}

func (a *App) handlePublicCategories(c echo.Context) error {
	p := pageParams(c, 50)
	return listOrEmpty(a, c, "categories", p, func() (paging.Result[PortfolioCategory], error) {
		return a.Store.ListCategories(c.Request().Context(), "", true, p)
	})
}

func (a *App) handlePublicReviews(c echo.Context) error {
	p := pageParams(c, 10)
	rating, _ := strconv.Atoi(c.QueryParam("rating"))
	return listOrEmpty(a, c, "reviews", p, func() (paging.Result[Review], error) {
		res, err := a.Store.ListReviews(c.Request().Context(), ReviewFilter{
			Rating:       rating,
			ApprovedOnly: true,
			SortBy:       c.QueryParam("sort_by"),
			SortOrder:    c.QueryParam("sort_order"),
		}, p)
		// Reviewer emails are for the admin only.
		for i := range res.Items {
			res.Items[i].ReviewerEmail = ""
		}
		return res, err
	})
}

func (a *App) handlePublicProducts(c echo.Context) error {
	p := pageParams(c, 50)
	available := true
	return listOrEmpty(a, c, "products", p, func() (paging.Result[Product], error) {
		return a.Store.ListProducts(c.Request().Context(), ProductFilter{
			Category:  c.QueryParam("category"),
			Available: &available,
		}, p)
	})
}
