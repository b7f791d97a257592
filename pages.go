package mkmtrees

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ejrshadbolt/mkmtrees-sub001/paging"
	"github.com/ejrshadbolt/mkmtrees-sub001/views"
)

func (a *App) site() views.Site {
	return views.Site{
		Name:             a.Config.Name,
		URL:              a.Config.URL,
		Description:      a.Config.Description,
		TurnstileSiteKey: a.Config.TurnstileSiteKey,
	}
}

func viewPost(p Post) views.Post {
	v := views.Post{
		Title:      p.Title,
		Slug:       p.Slug,
		Excerpt:    p.Excerpt,
		Content:    p.Content,
		ImageURL:   str(p.FeaturedImageURL, ""),
		AuthorName: str(p.AuthorName, ""),
	}
	v.PublishedAt = str(p.PublishedAt, "")
	for _, t := range p.Tags {
		v.Tags = append(v.Tags, views.Tag{Name: t.Name, Slug: t.Slug})
	}
	return v
}

func viewProject(p PortfolioProject) views.Project {
	v := views.Project{
		Title:       p.Title,
		Slug:        p.Slug,
		Description: p.Description,
		ClientName:  p.ClientName,
		Location:    p.Location,
		Category:    str(p.CategoryName, ""),
		ImageURL:    str(p.FeaturedImageURL, ""),
		CompletedAt: str(p.CompletedAt, ""),
	}
	for _, img := range p.Images {
		v.Images = append(v.Images, views.Image{
			URL:      img.URL,
			Alt:      img.AltText,
			Caption:  img.Caption,
			Category: img.ImageCategory,
		})
	}
	return v
}

func viewReview(r Review) views.Review {
	return views.Review{
		Name:     r.ReviewerName,
		Location: r.ReviewerLocation,
		Rating:   r.Rating,
		Title:    r.Title,
		Content:  r.Content,
	}
}

func viewPager(m paging.Meta, query string) views.Pager {
	return views.Pager{
		Page:       m.Page,
		TotalPages: m.TotalPages,
		HasPrev:    m.HasPrev,
		HasNext:    m.HasNext,
		Query:      query,
	}
}

func mapItems[T, V any](items []T, fn func(T) V) []V {
	out := make([]V, 0, len(items))
	for _, it := range items {
		out = append(out, fn(it))
	}
	return out
}

func (a *App) handleHome(c echo.Context) error {
	site := a.site()
	if a.Store == nil {
		return Render(c, views.Home(site, nil, nil, nil))
	}
	ctx := c.Request().Context()
	first := func(n int) paging.Params { return paging.Params{Page: 1, Limit: n} }
	projects, err := a.Store.ListProjects(ctx, ProjectFilter{PublishedOnly: true}, first(6))
	if err != nil {
		return err
	}
	posts, err := a.Store.RecentPosts(ctx, 3)
	if err != nil {
		return err
	}
	reviews, err := a.Store.ListReviews(ctx, ReviewFilter{ApprovedOnly: true}, first(6))
	if err != nil {
		return err
	}
	return Render(c, views.Home(site,
		mapItems(projects.Items, viewProject),
		mapItems(posts, viewPost),
		mapItems(reviews.Items, viewReview)))
}

func (a *App) handleBlogPage(c echo.Context) error {
	if a.Store == nil {
		return Render(c, views.BlogIndex(a.site(), nil, nil, "", views.Pager{}))
	}
	ctx := c.Request().Context()
	tag := Slugify(c.QueryParam("tag"))
	posts, err := a.Store.ListPosts(ctx, PostFilter{Tag: tag, PublishedOnly: true}, pageParams(c, 10))
	if err != nil {
		return err
	}
	tags, err := a.Store.ListTags(ctx, "", true, paging.Params{Page: 1, Limit: 100})
	if err != nil {
		return err
	}
	query := ""
	if tag != "" {
		query = "tag=" + tag
	}
	return Render(c, views.BlogIndex(a.site(),
		mapItems(posts.Items, viewPost),
		mapItems(tags.Items, func(t Tag) views.Tag { return views.Tag{Name: t.Name, Slug: t.Slug, Count: t.PostCount} }),
		tag, viewPager(posts.Pagination, query)))
}

func (a *App) handlePostPage(c echo.Context) error {
	if a.Store == nil {
		return echo.ErrNotFound
	}
	post, err := a.Store.GetPublishedPost(c.Request().Context(), c.Param("slug"))
	if errors.Is(err, ErrNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}
	return Render(c, views.PostPage(a.site(), viewPost(post)))
}

func (a *App) handlePortfolioPage(c echo.Context) error {
	if a.Store == nil {
		return Render(c, views.PortfolioIndex(a.site(), nil, nil, "", views.Pager{}))
	}
	ctx := c.Request().Context()
	category := Slugify(c.QueryParam("category"))
	projects, err := a.Store.ListProjects(ctx, ProjectFilter{Category: category, PublishedOnly: true}, pageParams(c, 12))
	if err != nil {
		return err
	}
	cats, err := a.Store.ListCategories(ctx, "", true, paging.Params{Page: 1, Limit: 100})
	if err != nil {
		return err
	}
	query := ""
	if category != "" {
		query = "category=" + category
	}
	return Render(c, views.PortfolioIndex(a.site(),
		mapItems(projects.Items, viewProject),
		mapItems(cats.Items, func(pc PortfolioCategory) views.Category {
			return views.Category{Name: pc.Name, Slug: pc.Slug, Count: pc.ProjectCount}
		}),
		category, viewPager(projects.Pagination, query)))
}

func (a *App) handleProjectPage(c echo.Context) error {
	if a.Store == nil {
		return echo.ErrNotFound
	}
	project, err := a.Store.GetPublishedProject(c.Request().Context(), c.Param("slug"))
	if errors.Is(err, ErrNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}
	return Render(c, views.ProjectPage(a.site(), viewProject(project)))
}

func (a *App) handleContactPage(c echo.Context) error {
	return Render(c, views.ContactPage(a.site(), views.ContactState{CSRFToken: CsrfToken(c)}))
}

// handleContactForm is the no-JavaScript path for the contact form. It
// shares validation and storage with POST /api/contact.
func (a *App) handleContactForm(c echo.Context) error {
	var f ContactForm
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest).SetInternal(err)
	}
	st := views.ContactState{
		Name:        f.Name,
		Email:       f.Email,
		Phone:       f.Phone,
		Subject:     f.Subject,
		ServiceType: f.ServiceType,
		Message:     f.Message,
		CSRFToken:   CsrfToken(c),
	}
	err := a.submitContact(c.Request().Context(), f, c.RealIP())
	var he *echo.HTTPError
	switch {
	case err == nil:
		st.Sent = true
		return Render(c, views.ContactPage(a.site(), st))
	case errors.As(err, &he) && he.Code == http.StatusBadRequest:
		st.Error, _ = he.Message.(string)
		return RenderStatus(c, http.StatusBadRequest, views.ContactPage(a.site(), st))
	}
	return err
}

func (a *App) handleFeed(c echo.Context) error {
	var posts []Post
	if a.Store != nil {
		var err error
		if posts, err = a.Store.RecentPosts(c.Request().Context(), 20); err != nil {
			return err
		}
	}
	return a.renderRSS(c, posts)
}

func handleBlogRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/blog/")
}
