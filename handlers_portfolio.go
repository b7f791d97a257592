package mkmtrees

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type categoryRequest struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	SortOrder   *int    `json:"sort_order"`
}

func (a *App) handleAdminCategories(c echo.Context) error {
	res, err := a.Store.ListCategories(c.Request().Context(), c.QueryParam("search"), false, pageParams(c, 50))
	if err != nil {
		return internalError("Failed to fetch categories", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (a *App) handleAdminCategory(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	cat, err := a.Store.GetCategory(c.Request().Context(), id)
	if err != nil {
		return lookupError("Category", err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (a *App) categorySlug(c echo.Context, slug string, excludeID int64) error {
	taken, err := a.Store.CategorySlugTaken(c.Request().Context(), slug, excludeID)
	if err != nil {
		return internalError("Failed to check slug", err)
	}
	if taken {
		return conflict("Slug already exists", "A category with slug "+slug+" already exists")
	}
	return nil
}

func (a *App) handleAdminCreateCategory(c echo.Context) error {
	var req categoryRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	name := str(req.Name, "")
	if err := requireFields(field("name", name)); err != nil {
		return err
	}
	slug := SlugOr(str(req.Slug, ""), name)
	if err := a.categorySlug(c, slug, 0); err != nil {
		return err
	}
	ts := timestamp(now())
	ctx := c.Request().Context()
	id, err := a.Store.CreateCategory(ctx, PortfolioCategory{
		Name:        name,
		Slug:        slug,
		Description: str(req.Description, ""),
		SortOrder:   intOr(req.SortOrder, 0),
		CreatedAt:   ts,
		UpdatedAt:   ts,
	})
	if err != nil {
		return internalError("Failed to create category", err)
	}
	cat, err := a.Store.GetCategory(ctx, id)
	if err != nil {
		return internalError("Failed to fetch category", err)
	}
	return c.JSON(http.StatusCreated, cat)
}

func (a *App) handleAdminUpdateCategory(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req categoryRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	existing, err := a.Store.GetCategory(ctx, id)
	if err != nil {
		return lookupError("Category", err)
	}
	cat := existing
	cat.Name = str(req.Name, existing.Name)
	if err := requireFields(field("name", cat.Name)); err != nil {
		return err
	}
	if req.Slug != nil {
		cat.Slug = SlugOr(*req.Slug, cat.Name)
	}
	if cat.Slug != existing.Slug {
		if err := a.categorySlug(c, cat.Slug, id); err != nil {
			return err
		}
	}
	cat.Description = str(req.Description, existing.Description)
	cat.SortOrder = intOr(req.SortOrder, existing.SortOrder)
	cat.UpdatedAt = timestamp(now())
	if err := a.Store.UpdateCategory(ctx, cat); err != nil {
		return internalError("Failed to update category", err)
	}
	updated, err := a.Store.GetCategory(ctx, id)
	if err != nil {
		return internalError("Failed to fetch category", err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (a *App) handleAdminDeleteCategory(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	err = a.Store.DeleteCategory(c.Request().Context(), id)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, apiMessage{Message: "Category deleted"})
	case errors.Is(err, ErrNotFound):
		return notFound("Category")
	case errors.Is(err, ErrCategoryInUse):
		return conflict("Category is in use", "Move or delete its projects first")
	}
	return internalError("Failed to delete category", err)
}

type projectRequest struct {
	Title           *string `json:"title"`
	Slug            *string `json:"slug"`
	Description     *string `json:"description"`
	ClientName      *string `json:"client_name"`
	Location        *string `json:"location"`
	ProjectURL      *string `json:"project_url"`
	CategoryID      *int64  `json:"category_id"`
	FeaturedImageID *int64  `json:"featured_image_id"`
	AuthorID        *int64  `json:"author_id"`
	Published       *bool   `json:"published"`
	SortOrder       *int    `json:"sort_order"`
	CompletedAt     *string `json:"completed_at"`
}

func (a *App) handleAdminProjects(c echo.Context) error {
	res, err := a.Store.ListProjects(c.Request().Context(), ProjectFilter{
		Search:   c.QueryParam("search"),
		Category: c.QueryParam("category"),
		Status:   c.QueryParam("status"),
	}, pageParams(c, 20))
	if err != nil {
		return internalError("Failed to fetch projects", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (a *App) handleAdminProject(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	p, err := a.Store.GetProject(c.Request().Context(), id)
	if err != nil {
		return lookupError("Project", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (a *App) projectSlug(c echo.Context, slug string, excludeID int64) error {
	taken, err := a.Store.ProjectSlugTaken(c.Request().Context(), slug, excludeID)
	if err != nil {
		return internalError("Failed to check slug", err)
	}
	if taken {
		return conflict("Slug already exists", "A project with slug "+slug+" already exists")
	}
	return nil
}

func (a *App) checkCategory(c echo.Context, id *int64) error {
	if id == nil {
		return nil
	}
	ok, err := a.Store.exists(c.Request().Context(), "portfolio_categories", *id)
	if err != nil {
		return internalError("Failed to check category", err)
	}
	if !ok {
		return badRequest("Category not found")
	}
	return nil
}

// optionalString maps an absent or blank body value to NULL.
func optionalString(p *string, fallback *string) *string {
	if p == nil {
		return fallback
	}
	if v := str(p, ""); v != "" {
		return &v
	}
	return nil
}

func (a *App) handleAdminCreateProject(c echo.Context) error {
	var req projectRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	title := str(req.Title, "")
	if err := requireFields(field("title", title)); err != nil {
		return err
	}
	slug := SlugOr(str(req.Slug, ""), title)
	if err := a.projectSlug(c, slug, 0); err != nil {
		return err
	}
	categoryID := refOr(req.CategoryID, nil)
	if err := a.checkCategory(c, categoryID); err != nil {
		return err
	}
	imageID, authorID := refOr(req.FeaturedImageID, nil), refOr(req.AuthorID, nil)
	if err := a.checkRefs(c, imageID, authorID); err != nil {
		return err
	}

	ts := timestamp(now())
	ctx := c.Request().Context()
	id, err := a.Store.CreateProject(ctx, PortfolioProject{
		Title:           title,
		Slug:            slug,
		Description:     str(req.Description, ""),
		ClientName:      str(req.ClientName, ""),
		Location:        str(req.Location, ""),
		ProjectURL:      str(req.ProjectURL, ""),
		CategoryID:      categoryID,
		FeaturedImageID: imageID,
		AuthorID:        authorID,
		Published:       boolOr(req.Published, false),
		SortOrder:       intOr(req.SortOrder, 0),
		CompletedAt:     optionalString(req.CompletedAt, nil),
		CreatedBy:       currentUserID(c),
		CreatedAt:       ts,
		UpdatedAt:       ts,
	})
	if err != nil {
		return internalError("Failed to create project", err)
	}
	p, err := a.Store.GetProject(ctx, id)
	if err != nil {
		return internalError("Failed to fetch project", err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (a *App) handleAdminUpdateProject(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req projectRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	existing, err := a.Store.GetProject(ctx, id)
	if err != nil {
		return lookupError("Project", err)
	}
	p := existing
	p.Title = str(req.Title, existing.Title)
	if err := requireFields(field("title", p.Title)); err != nil {
		return err
	}
	if req.Slug != nil {
		p.Slug = SlugOr(*req.Slug, p.Title)
	}
	if p.Slug != existing.Slug {
		if err := a.projectSlug(c, p.Slug, id); err != nil {
			return err
		}
	}
	if err := a.checkCategory(c, changedRef(req.CategoryID)); err != nil {
		return err
	}
	if err := a.checkRefs(c, changedRef(req.FeaturedImageID), changedRef(req.AuthorID)); err != nil {
		return err
	}
	p.Description = str(req.Description, existing.Description)
	p.ClientName = str(req.ClientName, existing.ClientName)
	p.Location = str(req.Location, existing.Location)
	p.ProjectURL = str(req.ProjectURL, existing.ProjectURL)
	p.CategoryID = refOr(req.CategoryID, existing.CategoryID)
	p.FeaturedImageID = refOr(req.FeaturedImageID, existing.FeaturedImageID)
	p.AuthorID = refOr(req.AuthorID, existing.AuthorID)
	p.Published = boolOr(req.Published, existing.Published)
	p.SortOrder = intOr(req.SortOrder, existing.SortOrder)
	p.CompletedAt = optionalString(req.CompletedAt, existing.CompletedAt)
	p.UpdatedAt = timestamp(now())
	if err := a.Store.UpdateProject(ctx, p); err != nil {
		return internalError("Failed to update project", err)
	}
	updated, err := a.Store.GetProject(ctx, id)
	if err != nil {
		return internalError("Failed to fetch project", err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (a *App) handleAdminDeleteProject(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := a.Store.DeleteProject(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound("Project")
		}
		return internalError("Failed to delete project", err)
	}
	return c.JSON(http.StatusOK, apiMessage{Message: "Project deleted"})
}

type projectImageRequest struct {
	MediaID       *int64  `json:"media_id"`
	Caption       *string `json:"caption"`
	SortOrder     *int    `json:"sort_order"`
	ImageCategory *string `json:"image_category"`
}

func (a *App) handleAdminProjectImages(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	ok, err := a.Store.exists(ctx, "portfolio_projects", id)
	if err != nil {
		return internalError("Failed to fetch images", err)
	}
	if !ok {
		return notFound("Project")
	}
	images, err := a.Store.ListProjectImages(ctx, id)
	if err != nil {
		return internalError("Failed to fetch images", err)
	}
	return c.JSON(http.StatusOK, images)
}

func (a *App) handleAdminAddProjectImage(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req projectImageRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if req.MediaID == nil || *req.MediaID <= 0 {
		return badRequest("Missing required fields: media_id")
	}
	category := str(req.ImageCategory, ImageGeneral)
	if !validImageCategory(category) {
		return badRequest("Invalid image_category")
	}
	ctx := c.Request().Context()
	ok, err := a.Store.exists(ctx, "portfolio_projects", id)
	if err != nil {
		return internalError("Failed to add image", err)
	}
	if !ok {
		return notFound("Project")
	}
	if ok, err = a.Store.exists(ctx, "media", *req.MediaID); err != nil {
		return internalError("Failed to add image", err)
	} else if !ok {
		return badRequest("Media not found")
	}
	imageID, err := a.Store.AddProjectImage(ctx, ProjectImage{
		ProjectID:     id,
		MediaID:       *req.MediaID,
		Caption:       str(req.Caption, ""),
		SortOrder:     intOr(req.SortOrder, 0),
		ImageCategory: category,
		CreatedAt:     timestamp(now()),
	})
	if err != nil {
		return internalError("Failed to add image", err)
	}
	img, err := a.Store.GetProjectImage(ctx, id, imageID)
	if err != nil {
		return internalError("Failed to fetch image", err)
	}
	return c.JSON(http.StatusCreated, img)
}

func (a *App) handleAdminUpdateProjectImage(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	imageID, err := parseID(c, "imageId")
	if err != nil {
		return err
	}
	var req projectImageRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	img, err := a.Store.GetProjectImage(ctx, id, imageID)
	if err != nil {
		return lookupError("Image", err)
	}
	img.Caption = str(req.Caption, img.Caption)
	img.SortOrder = intOr(req.SortOrder, img.SortOrder)
	img.ImageCategory = str(req.ImageCategory, img.ImageCategory)
	if !validImageCategory(img.ImageCategory) {
		return badRequest("Invalid image_category")
	}
	if err := a.Store.UpdateProjectImage(ctx, img); err != nil {
		return internalError("Failed to update image", err)
	}
	updated, err := a.Store.GetProjectImage(ctx, id, imageID)
	if err != nil {
		return internalError("Failed to fetch image", err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (a *App) handleAdminDeleteProjectImage(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	imageID, err := parseID(c, "imageId")
	if err != nil {
		return err
	}
	if err := a.Store.DeleteProjectImage(c.Request().Context(), id, imageID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound("Image")
		}
		return internalError("Failed to delete image", err)
	}
	return c.JSON(http.StatusOK, apiMessage{Message: "Image removed"})
}
