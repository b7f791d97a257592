package mkmtrees

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

type authorRequest struct {
	Name      *string `json:"name"`
	Slug      *string `json:"slug"`
	Bio       *string `json:"bio"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Website   *string `json:"website"`
	AvatarURL *string `json:"avatar_url"`
	IsDefault *bool   `json:"is_default"`
}

func (a *App) handleAdminAuthors(c echo.Context) error {
	res, err := a.Store.ListAuthors(c.Request().Context(), c.QueryParam("search"), pageParams(c, 50))
	if err != nil {
		return internalError("Failed to fetch authors", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (a *App) handleAdminAuthor(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	author, err := a.Store.GetAuthor(c.Request().Context(), id)
	if err != nil {
		return lookupError("Author", err)
	}
	return c.JSON(http.StatusOK, author)
}

func (a *App) authorSlug(c echo.Context, slug string, excludeID int64) error {
	taken, err := a.Store.AuthorSlugTaken(c.Request().Context(), slug, excludeID)
	if err != nil {
		return internalError("Failed to check slug", err)
	}
	if taken {
		return conflict("Slug already exists", "An author with slug "+slug+" already exists")
	}
	return nil
}

func (a *App) handleAdminCreateAuthor(c echo.Context) error {
	var req authorRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	name := str(req.Name, "")
	if err := requireFields(field("name", name)); err != nil {
		return err
	}
	slug := SlugOr(str(req.Slug, ""), name)
	if err := a.authorSlug(c, slug, 0); err != nil {
		return err
	}
	ts := timestamp(now())
	ctx := c.Request().Context()
	id, err := a.Store.CreateAuthor(ctx, Author{
		Name:      name,
		Slug:      slug,
		Bio:       str(req.Bio, ""),
		Email:     str(req.Email, ""),
		Phone:     str(req.Phone, ""),
		Website:   str(req.Website, ""),
		AvatarURL: str(req.AvatarURL, ""),
		IsDefault: boolOr(req.IsDefault, false),
		CreatedAt: ts,
		UpdatedAt: ts,
	})
	if err != nil {
		return internalError("Failed to create author", err)
	}
	author, err := a.Store.GetAuthor(ctx, id)
	if err != nil {
		return internalError("Failed to fetch author", err)
	}
	return c.JSON(http.StatusCreated, author)
}

func (a *App) handleAdminUpdateAuthor(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req authorRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	existing, err := a.Store.GetAuthor(ctx, id)
	if err != nil {
		return lookupError("Author", err)
	}
	author := existing
	author.Name = str(req.Name, existing.Name)
	if err := requireFields(field("name", author.Name)); err != nil {
		return err
	}
	if req.Slug != nil {
		author.Slug = SlugOr(*req.Slug, author.Name)
	}
	if author.Slug != existing.Slug {
		if err := a.authorSlug(c, author.Slug, id); err != nil {
			return err
		}
	}
	author.Bio = str(req.Bio, existing.Bio)
	author.Email = str(req.Email, existing.Email)
	author.Phone = str(req.Phone, existing.Phone)
	author.Website = str(req.Website, existing.Website)
	author.AvatarURL = str(req.AvatarURL, existing.AvatarURL)
	author.IsDefault = boolOr(req.IsDefault, existing.IsDefault)
	author.UpdatedAt = timestamp(now())

	if err := a.Store.UpdateAuthor(ctx, author); err != nil {
		if errors.Is(err, ErrDefaultAuthor) {
			return conflict("Cannot unset default author", err.Error())
		}
		return internalError("Failed to update author", err)
	}
	updated, err := a.Store.GetAuthor(ctx, id)
	if err != nil {
		return internalError("Failed to fetch author", err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (a *App) handleAdminDeleteAuthor(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	err = a.Store.DeleteAuthor(ctx, id)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, apiMessage{Message: "Author deleted"})
	case errors.Is(err, ErrNotFound):
		return notFound("Author")
	case errors.Is(err, ErrLastAuthor):
		return conflict("Cannot delete the last author", "At least one author must exist")
	case errors.Is(err, ErrAuthorInUse):
		posts, projects, uerr := a.Store.AuthorUsage(ctx, id)
		if uerr != nil {
			return internalError("Failed to delete author", uerr)
		}
		return conflict("Author is in use",
			fmt.Sprintf("Assigned to %d post(s) and %d project(s)", posts, projects))
	}
	return internalError("Failed to delete author", err)
}
