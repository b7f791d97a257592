package mkmtrees

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ejrshadbolt/mkmtrees-sub001/paging"
)

// --- Categories ---

func categoryColumns(publishedOnly bool) string {
	countExpr := `(SELECT COUNT(*) FROM portfolio_projects pp WHERE pp.category_id = c.id)`
	if publishedOnly {
		countExpr = `(SELECT COUNT(*) FROM portfolio_projects pp WHERE pp.category_id = c.id AND pp.published = 1)`
	}
	return `c.id, c.name, c.slug, c.description, c.sort_order, ` + countExpr + `, c.created_at, c.updated_at`
}

func scanCategory(s paging.Scanner) (PortfolioCategory, error) {
	var c PortfolioCategory
	err := s.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.SortOrder, &c.ProjectCount, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// ListCategories returns portfolio categories with project counts. With
// publishedOnly the counts include published projects only.
func (s *Store) ListCategories(ctx context.Context, search string, publishedOnly bool, p paging.Params) (paging.Result[PortfolioCategory], error) {
	var w paging.Filter
	w.Search(search, "c.name", "c.description")
	return paging.Query(ctx, s.db, paging.Spec{
		Select:  categoryColumns(publishedOnly),
		From:    "portfolio_categories c",
		OrderBy: "c.sort_order ASC, c.name ASC",
	}, &w, p, scanCategory)
}

// GetCategory returns a category by id.
func (s *Store) GetCategory(ctx context.Context, id int64) (PortfolioCategory, error) {
	return scanCategory(s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns(false)+` FROM portfolio_categories c WHERE c.id = ?`, id))
}

// CategorySlugTaken reports whether another category already uses slug.
func (s *Store) CategorySlugTaken(ctx context.Context, slug string, excludeID int64) (bool, error) {
	return s.slugTaken(ctx, "portfolio_categories", "slug", slug, excludeID)
}

// CreateCategory inserts c.
func (s *Store) CreateCategory(ctx context.Context, c PortfolioCategory) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO portfolio_categories
		(name, slug, description, sort_order, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		c.Name, c.Slug, c.Description, c.SortOrder, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateCategory writes every column of c.
func (s *Store) UpdateCategory(ctx context.Context, c PortfolioCategory) error {
	_, err := s.db.ExecContext(ctx, `UPDATE portfolio_categories SET
		name = ?, slug = ?, description = ?, sort_order = ?, updated_at = ? WHERE id = ?`,
		c.Name, c.Slug, c.Description, c.SortOrder, c.UpdatedAt, c.ID)
	return err
}

// DeleteCategory removes a category that no project references.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		n, err := count(ctx, tx, `SELECT COUNT(*) FROM portfolio_projects WHERE category_id = ?`, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrCategoryInUse
		}
		return deleteByID(ctx, tx, "portfolio_categories", id)
	})
}

// --- Projects ---

// ProjectFilter narrows project listings.
type ProjectFilter struct {
	Search        string
	Category      string // category slug
	Status        string // "published" or "draft"
	PublishedOnly bool
}

const projectColumns = `pp.id, pp.title, pp.slug, pp.description, pp.client_name, pp.location, pp.project_url,
	pp.category_id, c.name, c.slug, pp.featured_image_id, m.url, pp.author_id, pp.published, pp.sort_order,
	pp.completed_at, pp.created_by, pp.created_at, pp.updated_at`

const projectFrom = `portfolio_projects pp
	LEFT JOIN portfolio_categories c ON c.id = pp.category_id
	LEFT JOIN media m ON m.id = pp.featured_image_id`

func scanProject(s paging.Scanner) (PortfolioProject, error) {
	var p PortfolioProject
	var categoryID, imageID, authorID, createdBy sql.NullInt64
	var categoryName, categorySlug, imageURL, completedAt sql.NullString
	err := s.Scan(&p.ID, &p.Title, &p.Slug, &p.Description, &p.ClientName, &p.Location, &p.ProjectURL,
		&categoryID, &categoryName, &categorySlug, &imageID, &imageURL, &authorID, &p.Published, &p.SortOrder,
		&completedAt, &createdBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return PortfolioProject{}, err
	}
	p.CategoryID = nullInt(categoryID)
	p.CategoryName = nullString(categoryName)
	p.CategorySlug = nullString(categorySlug)
	p.FeaturedImageID = nullInt(imageID)
	p.FeaturedImageURL = nullString(imageURL)
	p.AuthorID = nullInt(authorID)
	p.CompletedAt = nullString(completedAt)
	p.CreatedBy = nullInt(createdBy)
	return p, nil
}

// ListProjects returns one page of projects. Predicates: search, then
// category, then published state.
func (s *Store) ListProjects(ctx context.Context, f ProjectFilter, p paging.Params) (paging.Result[PortfolioProject], error) {
	var w paging.Filter
	w.Search(f.Search, "pp.title", "pp.description", "pp.client_name", "pp.location")
	if cat := strings.TrimSpace(f.Category); cat != "" {
		w.Where("c.slug = ?", cat)
	}
	switch {
	case f.PublishedOnly, f.Status == "published":
		w.Where("pp.published = 1")
	case f.Status == "draft":
		w.Where("pp.published = 0")
	}
	return paging.Query(ctx, s.db, paging.Spec{
		Select:  projectColumns,
		From:    projectFrom,
		OrderBy: "pp.sort_order ASC, pp.created_at DESC, pp.id DESC",
	}, &w, p, scanProject)
}

// GetProject returns a project by id, with its gallery.
func (s *Store) GetProject(ctx context.Context, id int64) (PortfolioProject, error) {
	return s.getProject(ctx, "pp.id = ?", id)
}

// GetPublishedProject returns a published project by slug, with its gallery.
func (s *Store) GetPublishedProject(ctx context.Context, slug string) (PortfolioProject, error) {
	return s.getProject(ctx, "pp.slug = ? AND pp.published = 1", slug)
}

func (s *Store) getProject(ctx context.Context, where string, arg any) (PortfolioProject, error) {
	p, err := scanProject(s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM `+projectFrom+` WHERE `+where, arg))
	if err != nil {
		return PortfolioProject{}, err
	}
	if p.Images, err = s.ListProjectImages(ctx, p.ID); err != nil {
		return PortfolioProject{}, err
	}
	return p, nil
}

// ProjectSlugTaken reports whether another project already uses slug.
func (s *Store) ProjectSlugTaken(ctx context.Context, slug string, excludeID int64) (bool, error) {
	return s.slugTaken(ctx, "portfolio_projects", "slug", slug, excludeID)
}

// CreateProject inserts p.
func (s *Store) CreateProject(ctx context.Context, p PortfolioProject) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO portfolio_projects
		(title, slug, description, client_name, location, project_url, category_id, featured_image_id,
		 author_id, published, sort_order, completed_at, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Title, p.Slug, p.Description, p.ClientName, p.Location, p.ProjectURL, argInt(p.CategoryID),
		argInt(p.FeaturedImageID), argInt(p.AuthorID), p.Published, p.SortOrder, argString(p.CompletedAt),
		argInt(p.CreatedBy), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateProject writes every column of p.
func (s *Store) UpdateProject(ctx context.Context, p PortfolioProject) error {
	_, err := s.db.ExecContext(ctx, `UPDATE portfolio_projects SET
		title = ?, slug = ?, description = ?, client_name = ?, location = ?, project_url = ?, category_id = ?,
		featured_image_id = ?, author_id = ?, published = ?, sort_order = ?, completed_at = ?, updated_at = ?
		WHERE id = ?`,
		p.Title, p.Slug, p.Description, p.ClientName, p.Location, p.ProjectURL, argInt(p.CategoryID),
		argInt(p.FeaturedImageID), argInt(p.AuthorID), p.Published, p.SortOrder, argString(p.CompletedAt),
		p.UpdatedAt, p.ID)
	return err
}

// DeleteProject removes a project and its gallery rows. Media items stay.
func (s *Store) DeleteProject(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM portfolio_project_images WHERE project_id = ?`, id); err != nil {
			return err
		}
		return deleteByID(ctx, tx, "portfolio_projects", id)
	})
}

// --- Project images ---

const projectImageColumns = `pi.id, pi.project_id, pi.media_id, m.url, m.alt_text, pi.caption, pi.sort_order,
	pi.image_category, pi.created_at`

func scanProjectImage(s paging.Scanner) (ProjectImage, error) {
	var img ProjectImage
	err := s.Scan(&img.ID, &img.ProjectID, &img.MediaID, &img.URL, &img.AltText, &img.Caption, &img.SortOrder,
		&img.ImageCategory, &img.CreatedAt)
	return img, err
}

// ListProjectImages returns a project's gallery in display order.
func (s *Store) ListProjectImages(ctx context.Context, projectID int64) ([]ProjectImage, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+projectImageColumns+`
		FROM portfolio_project_images pi JOIN media m ON m.id = pi.media_id
		WHERE pi.project_id = ? ORDER BY pi.sort_order ASC, pi.id ASC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	images := []ProjectImage{}
	for rows.Next() {
		img, err := scanProjectImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// GetProjectImage returns one gallery row belonging to projectID.
func (s *Store) GetProjectImage(ctx context.Context, projectID, imageID int64) (ProjectImage, error) {
	return scanProjectImage(s.db.QueryRowContext(ctx, `SELECT `+projectImageColumns+`
		FROM portfolio_project_images pi JOIN media m ON m.id = pi.media_id
		WHERE pi.project_id = ? AND pi.id = ?`, projectID, imageID))
}

// AddProjectImage attaches a media item to a project.
func (s *Store) AddProjectImage(ctx context.Context, img ProjectImage) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO portfolio_project_images
		(project_id, media_id, caption, sort_order, image_category, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		img.ProjectID, img.MediaID, img.Caption, img.SortOrder, img.ImageCategory, img.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateProjectImage writes caption, order and category.
func (s *Store) UpdateProjectImage(ctx context.Context, img ProjectImage) error {
	_, err := s.db.ExecContext(ctx, `UPDATE portfolio_project_images SET
		caption = ?, sort_order = ?, image_category = ? WHERE id = ? AND project_id = ?`,
		img.Caption, img.SortOrder, img.ImageCategory, img.ID, img.ProjectID)
	return err
}

// DeleteProjectImage detaches a gallery row. The media item stays.
func (s *Store) DeleteProjectImage(ctx context.Context, projectID, imageID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM portfolio_project_images WHERE id = ? AND project_id = ?`, imageID, projectID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
