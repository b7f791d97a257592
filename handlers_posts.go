package mkmtrees

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type postRequest struct {
	Title           *string  `json:"title"`
	Slug            *string  `json:"slug"`
	Content         *string  `json:"content"`
	Excerpt         *string  `json:"excerpt"`
	Published       *bool    `json:"published"`
	FeaturedImageID *int64   `json:"featured_image_id"`
	AuthorID        *int64   `json:"author_id"`
	MetaTitle       *string  `json:"meta_title"`
	MetaDescription *string  `json:"meta_description"`
	Tags            []string `json:"tags"`
}

// publishedAt applies the publish transition: false to true stamps ts, true
// to false clears, no change keeps the stored value.
func publishedAt(was, is bool, stored *string, ts string) *string {
	switch {
	case is && !was:
		return &ts
	case !is:
		return nil
	}
	return stored
}

func (a *App) handleAdminPosts(c echo.Context) error {
	authorID, _ := strconv.ParseInt(c.QueryParam("author"), 10, 64)
	res, err := a.Store.ListPosts(c.Request().Context(), PostFilter{
		Search:   c.QueryParam("search"),
		Status:   c.QueryParam("status"),
		Tag:      c.QueryParam("tag"),
		AuthorID: authorID,
	}, pageParams(c, 20))
	if err != nil {
		return internalError("Failed to fetch posts", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (a *App) handleAdminPost(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	post, err := a.Store.GetPost(c.Request().Context(), id)
	if err != nil {
		return lookupError("Post", err)
	}
	return c.JSON(http.StatusOK, post)
}

// checkRefs verifies optional media and author references exist.
func (a *App) checkRefs(c echo.Context, imageID, authorID *int64) error {
	ctx := c.Request().Context()
	if imageID != nil {
		ok, err := a.Store.exists(ctx, "media", *imageID)
		if err != nil {
			return internalError("Failed to check media", err)
		}
		if !ok {
			return badRequest("Featured image not found")
		}
	}
	if authorID != nil {
		ok, err := a.Store.exists(ctx, "authors", *authorID)
		if err != nil {
			return internalError("Failed to check author", err)
		}
		if !ok {
			return badRequest("Author not found")
		}
	}
	return nil
}

func (a *App) handleAdminCreatePost(c echo.Context) error {
	var req postRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	title := str(req.Title, "")
	content := str(req.Content, "")
	if err := requireFields(field("title", title), field("content", content)); err != nil {
		return err
	}
	slug := SlugOr(str(req.Slug, ""), title)
	if slug == "" {
		return badRequest("Slug could not be derived from title")
	}
	ctx := c.Request().Context()
	taken, err := a.Store.PostSlugTaken(ctx, slug, 0)
	if err != nil {
		return internalError("Failed to create post", err)
	}
	if taken {
		return conflict("Slug already exists", "A post with slug "+slug+" already exists")
	}

	authorID := refOr(req.AuthorID, nil)
	if authorID == nil {
		def, err := a.Store.DefaultAuthorID(ctx)
		if err != nil {
			return internalError("Failed to create post", err)
		}
		if def > 0 {
			authorID = &def
		}
	}
	imageID := refOr(req.FeaturedImageID, nil)
	if err := a.checkRefs(c, imageID, authorID); err != nil {
		return err
	}

	ts := timestamp(now())
	published := boolOr(req.Published, false)
	post := Post{
		Title:           title,
		Slug:            slug,
		Content:         content,
		Excerpt:         str(req.Excerpt, ""),
		Published:       published,
		PublishedAt:     publishedAt(false, published, nil, ts),
		FeaturedImageID: imageID,
		AuthorID:        authorID,
		MetaTitle:       str(req.MetaTitle, ""),
		MetaDescription: str(req.MetaDescription, ""),
		CreatedBy:       currentUserID(c),
		CreatedAt:       ts,
		UpdatedAt:       ts,
	}
	id, err := a.Store.CreatePost(ctx, post, FilterEmpty(req.Tags))
	if err != nil {
		return internalError("Failed to create post", err)
	}
	created, err := a.Store.GetPost(ctx, id)
	if err != nil {
		return internalError("Failed to fetch post", err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (a *App) handleAdminUpdatePost(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req postRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	existing, err := a.Store.GetPost(ctx, id)
	if err != nil {
		return lookupError("Post", err)
	}

	post := existing
	post.Title = str(req.Title, existing.Title)
	post.Content = str(req.Content, existing.Content)
	if err := requireFields(field("title", post.Title), field("content", post.Content)); err != nil {
		return err
	}
	if req.Slug != nil {
		post.Slug = SlugOr(*req.Slug, post.Title)
	}
	if post.Slug != existing.Slug {
		taken, err := a.Store.PostSlugTaken(ctx, post.Slug, id)
		if err != nil {
			return internalError("Failed to update post", err)
		}
		if taken {
			return conflict("Slug already exists", "A post with slug "+post.Slug+" already exists")
		}
	}
	post.Excerpt = str(req.Excerpt, existing.Excerpt)
	post.MetaTitle = str(req.MetaTitle, existing.MetaTitle)
	post.MetaDescription = str(req.MetaDescription, existing.MetaDescription)
	post.FeaturedImageID = refOr(req.FeaturedImageID, existing.FeaturedImageID)
	post.AuthorID = refOr(req.AuthorID, existing.AuthorID)
	if err := a.checkRefs(c, changedRef(req.FeaturedImageID), changedRef(req.AuthorID)); err != nil {
		return err
	}

	ts := timestamp(now())
	post.Published = boolOr(req.Published, existing.Published)
	post.PublishedAt = publishedAt(existing.Published, post.Published, existing.PublishedAt, ts)
	post.UpdatedAt = ts

	var tags []string
	if req.Tags != nil {
		tags = FilterEmpty(req.Tags)
		if tags == nil {
			tags = []string{}
		}
	}
	if err := a.Store.UpdatePost(ctx, post, tags); err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound("Post")
		}
		return internalError("Failed to update post", err)
	}
	updated, err := a.Store.GetPost(ctx, id)
	if err != nil {
		return internalError("Failed to fetch post", err)
	}
	return c.JSON(http.StatusOK, updated)
}

// changedRef returns the reference an update body sets, or nil when it
// leaves or clears it.
func changedRef(p *int64) *int64 {
	if p == nil || *p == 0 {
		return nil
	}
	return p
}

func (a *App) handleAdminDeletePost(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := a.Store.DeletePost(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound("Post")
		}
		return internalError("Failed to delete post", err)
	}
	return c.JSON(http.StatusOK, apiMessage{Message: "Post deleted"})
}

func (a *App) handleAdminTags(c echo.Context) error {
	res, err := a.Store.ListTags(c.Request().Context(), c.QueryParam("search"), false, pageParams(c, 50))
	if err != nil {
		return internalError("Failed to fetch tags", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (a *App) handleAdminDeleteTag(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := a.Store.DeleteTag(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound("Tag")
		}
		return internalError("Failed to delete tag", err)
	}
	return c.JSON(http.StatusOK, apiMessage{Message: "Tag deleted"})
}

