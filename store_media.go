package mkmtrees

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ejrshadbolt/mkmtrees-sub001/paging"
)

const mediaColumns = `id, filename, original_filename, mime_type, size, width, height, url, r2_key, alt_text,
	uploaded_by, created_at, updated_at`

func scanMedia(s paging.Scanner) (Media, error) {
	var m Media
	var uploadedBy sql.NullInt64
	err := s.Scan(&m.ID, &m.Filename, &m.OriginalFilename, &m.MimeType, &m.Size, &m.Width, &m.Height,
		&m.URL, &m.R2Key, &m.AltText, &uploadedBy, &m.CreatedAt, &m.UpdatedAt)
	m.UploadedBy = nullInt(uploadedBy)
	return m, err
}

// ListMedia returns one page of media. mimePrefix filters by type, e.g.
// "image/".
func (s *Store) ListMedia(ctx context.Context, search, mimePrefix string, p paging.Params) (paging.Result[Media], error) {
	var w paging.Filter
	w.Search(search, "filename", "original_filename", "alt_text")
	if mimePrefix = strings.TrimSpace(mimePrefix); mimePrefix != "" {
		w.Where("mime_type LIKE ?", mimePrefix+"%")
	}
	return paging.Query(ctx, s.db, paging.Spec{
		Select:  mediaColumns,
		From:    "media",
		OrderBy: "created_at DESC, id DESC",
	}, &w, p, scanMedia)
}

// GetMedia returns a media row by id.
func (s *Store) GetMedia(ctx context.Context, id int64) (Media, error) {
	return scanMedia(s.db.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media WHERE id = ?`, id))
}

// GetMediaByFilename returns a media row by its generated filename.
func (s *Store) GetMediaByFilename(ctx context.Context, filename string) (Media, error) {
	return scanMedia(s.db.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media WHERE filename = ?`, filename))
}

// CreateMedia inserts m.
func (s *Store) CreateMedia(ctx context.Context, m Media) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO media
		(filename, original_filename, mime_type, size, width, height, url, r2_key, alt_text, uploaded_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Filename, m.OriginalFilename, m.MimeType, m.Size, m.Width, m.Height, m.URL, m.R2Key, m.AltText,
		argInt(m.UploadedBy), m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateMediaAlt sets the alt text.
func (s *Store) UpdateMediaAlt(ctx context.Context, id int64, alt, updatedAt string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE media SET alt_text = ?, updated_at = ? WHERE id = ?`, alt, updatedAt, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// MediaUsage counts the references that block deleting a media item.
type MediaUsage struct {
	Posts    int `json:"posts"`
	Projects int `json:"projects"`
	Gallery  int `json:"gallery"`
}

// InUse reports whether any reference exists.
func (u MediaUsage) InUse() bool {
	return u.Posts+u.Projects+u.Gallery > 0
}

// GetMediaUsage counts featured-image and gallery references to a media item.
func (s *Store) GetMediaUsage(ctx context.Context, id int64) (MediaUsage, error) {
	var u MediaUsage
	err := s.db.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM posts WHERE featured_image_id = ?),
		(SELECT COUNT(*) FROM portfolio_projects WHERE featured_image_id = ?),
		(SELECT COUNT(*) FROM portfolio_project_images WHERE media_id = ?)`, id, id, id).
		Scan(&u.Posts, &u.Projects, &u.Gallery)
	return u, err
}

// DeleteMedia removes the media row only; the blob is the caller's concern.
func (s *Store) DeleteMedia(ctx context.Context, id int64) error {
	return deleteByID(ctx, s.db, "media", id)
}

// PurgeMedia deletes a media row together with every reference to it:
// featured images are cleared and gallery entries dropped.
func (s *Store) PurgeMedia(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, q := range []string{
			`UPDATE posts SET featured_image_id = NULL WHERE featured_image_id = ?`,
			`UPDATE portfolio_projects SET featured_image_id = NULL WHERE featured_image_id = ?`,
			`DELETE FROM portfolio_project_images WHERE media_id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return err
			}
		}
		return deleteByID(ctx, tx, "media", id)
	})
}

// MediaWithKeys returns every media row that references an object key.
func (s *Store) MediaWithKeys(ctx context.Context) ([]Media, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+mediaColumns+` FROM media WHERE r2_key != '' ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
