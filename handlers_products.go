package mkmtrees

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type productRequest struct {
	Name        *string  `json:"name"`
	Slug        *string  `json:"slug"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Price       *float64 `json:"price"`
	ClearPrice  bool     `json:"clear_price"`
	PriceUnit   *string  `json:"price_unit"`
	Available   *bool    `json:"available"`
	SortOrder   *int     `json:"sort_order"`
}

func (a *App) handleAdminProducts(c echo.Context) error {
	res, err := a.Store.ListProducts(c.Request().Context(), ProductFilter{
		Search:    c.QueryParam("search"),
		Category:  c.QueryParam("category"),
		Available: queryBool(c, "available"),
		SortBy:    c.QueryParam("sort_by"),
		SortOrder: c.QueryParam("sort_order"),
	}, pageParams(c, 20))
	if err != nil {
		return internalError("Failed to fetch products", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (a *App) handleAdminProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	p, err := a.Store.GetProduct(c.Request().Context(), id)
	if err != nil {
		return lookupError("Product", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (a *App) productSlug(c echo.Context, slug string, excludeID int64) error {
	taken, err := a.Store.ProductSlugTaken(c.Request().Context(), slug, excludeID)
	if err != nil {
		return internalError("Failed to check slug", err)
	}
	if taken {
		return conflict("Slug already exists", "A product with slug "+slug+" already exists")
	}
	return nil
}

func (a *App) handleAdminCreateProduct(c echo.Context) error {
	var req productRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	name := str(req.Name, "")
	if err := requireFields(field("name", name)); err != nil {
		return err
	}
	if req.Price != nil && *req.Price < 0 {
		return badRequest("Price cannot be negative")
	}
	slug := SlugOr(str(req.Slug, ""), name)
	if err := a.productSlug(c, slug, 0); err != nil {
		return err
	}
	ts := timestamp(now())
	ctx := c.Request().Context()
	id, err := a.Store.CreateProduct(ctx, Product{
		Name:        name,
		Slug:        slug,
		Description: str(req.Description, ""),
		Category:    str(req.Category, ""),
		Price:       req.Price,
		PriceUnit:   str(req.PriceUnit, ""),
		Available:   boolOr(req.Available, true),
		SortOrder:   intOr(req.SortOrder, 0),
		CreatedAt:   ts,
		UpdatedAt:   ts,
	})
	if err != nil {
		return internalError("Failed to create product", err)
	}
	p, err := a.Store.GetProduct(ctx, id)
	if err != nil {
		return internalError("Failed to fetch product", err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (a *App) handleAdminUpdateProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req productRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	existing, err := a.Store.GetProduct(ctx, id)
	if err != nil {
		return lookupError("Product", err)
	}
	p := existing
	p.Name = str(req.Name, existing.Name)
	if err := requireFields(field("name", p.Name)); err != nil {
		return err
	}
	if req.Slug != nil {
		p.Slug = SlugOr(*req.Slug, p.Name)
	}
	if p.Slug != existing.Slug {
		if err := a.productSlug(c, p.Slug, id); err != nil {
			return err
		}
	}
	switch {
	case req.ClearPrice:
		p.Price = nil
	case req.Price != nil:
		if *req.Price < 0 {
			return badRequest("Price cannot be negative")
		}
		p.Price = req.Price
	}
	p.Description = str(req.Description, existing.Description)
	p.Category = str(req.Category, existing.Category)
	p.PriceUnit = str(req.PriceUnit, existing.PriceUnit)
	p.Available = boolOr(req.Available, existing.Available)
	p.SortOrder = intOr(req.SortOrder, existing.SortOrder)
	p.UpdatedAt = timestamp(now())
	if err := a.Store.UpdateProduct(ctx, p); err != nil {
		return internalError("Failed to update product", err)
	}
	updated, err := a.Store.GetProduct(ctx, id)
	if err != nil {
		return internalError("Failed to fetch product", err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (a *App) handleAdminDeleteProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := a.Store.DeleteProduct(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound("Product")
		}
		return internalError("Failed to delete product", err)
	}
	return c.JSON(http.StatusOK, apiMessage{Message: "Product deleted"})
}
