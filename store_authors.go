package mkmtrees

import (
	"context"
	"database/sql"

	"github.com/ejrshadbolt/mkmtrees-sub001/paging"
)

const authorColumns = `id, name, slug, bio, email, phone, website, avatar_url, is_default, created_at, updated_at`

func scanAuthor(s paging.Scanner) (Author, error) {
	var a Author
	err := s.Scan(&a.ID, &a.Name, &a.Slug, &a.Bio, &a.Email, &a.Phone, &a.Website, &a.AvatarURL,
		&a.IsDefault, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// ListAuthors returns authors, default first.
func (s *Store) ListAuthors(ctx context.Context, search string, p paging.Params) (paging.Result[Author], error) {
	var w paging.Filter
	w.Search(search, "name", "email")
	return paging.Query(ctx, s.db, paging.Spec{
		Select:  authorColumns,
		From:    "authors",
		OrderBy: "is_default DESC, name ASC",
	}, &w, p, scanAuthor)
}

// GetAuthor returns an author by id.
func (s *Store) GetAuthor(ctx context.Context, id int64) (Author, error) {
	return scanAuthor(s.db.QueryRowContext(ctx, `SELECT `+authorColumns+` FROM authors WHERE id = ?`, id))
}

// DefaultAuthorID returns the id of the default author, or 0 if none is
// flagged.
func (s *Store) DefaultAuthorID(ctx context.Context) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM authors WHERE is_default = 1 ORDER BY id LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return id, err
}

// AuthorSlugTaken reports whether another author already uses slug.
func (s *Store) AuthorSlugTaken(ctx context.Context, slug string, excludeID int64) (bool, error) {
	return s.slugTaken(ctx, "authors", "slug", slug, excludeID)
}

// CreateAuthor inserts a. A new default author takes the flag from the
// previous one.
func (s *Store) CreateAuthor(ctx context.Context, a Author) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if a.IsDefault {
			if _, err := tx.ExecContext(ctx, `UPDATE authors SET is_default = 0 WHERE is_default = 1`); err != nil {
				return err
			}
		}
		res, err := tx.ExecContext(ctx, `INSERT INTO authors
			(name, slug, bio, email, phone, website, avatar_url, is_default, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.Name, a.Slug, a.Bio, a.Email, a.Phone, a.Website, a.AvatarURL, a.IsDefault, a.CreatedAt, a.UpdatedAt)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	return id, err
}

// UpdateAuthor writes every column of a. Promoting a to default demotes the
// others; demoting the current default is rejected with ErrDefaultAuthor.
func (s *Store) UpdateAuthor(ctx context.Context, a Author) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var wasDefault bool
		if err := tx.QueryRowContext(ctx, `SELECT is_default FROM authors WHERE id = ?`, a.ID).Scan(&wasDefault); err != nil {
			return err
		}
		if wasDefault && !a.IsDefault {
			return ErrDefaultAuthor
		}
		if a.IsDefault && !wasDefault {
			if _, err := tx.ExecContext(ctx, `UPDATE authors SET is_default = 0 WHERE is_default = 1`); err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx, `UPDATE authors SET
			name = ?, slug = ?, bio = ?, email = ?, phone = ?, website = ?, avatar_url = ?, is_default = ?, updated_at = ?
			WHERE id = ?`,
			a.Name, a.Slug, a.Bio, a.Email, a.Phone, a.Website, a.AvatarURL, a.IsDefault, a.UpdatedAt, a.ID)
		return err
	})
}

// AuthorUsage counts posts and projects bylined to an author.
func (s *Store) AuthorUsage(ctx context.Context, id int64) (posts, projects int, err error) {
	if posts, err = count(ctx, s.db, `SELECT COUNT(*) FROM posts WHERE author_id = ?`, id); err != nil {
		return 0, 0, err
	}
	projects, err = count(ctx, s.db, `SELECT COUNT(*) FROM portfolio_projects WHERE author_id = ?`, id)
	return posts, projects, err
}

// DeleteAuthor removes an author. The last remaining author and authors in
// use cannot be deleted; deleting the default promotes the oldest remaining
// author.
func (s *Store) DeleteAuthor(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var isDefault bool
		if err := tx.QueryRowContext(ctx, `SELECT is_default FROM authors WHERE id = ?`, id).Scan(&isDefault); err != nil {
			return err
		}
		total, err := count(ctx, tx, `SELECT COUNT(*) FROM authors`)
		if err != nil {
			return err
		}
		if total <= 1 {
			return ErrLastAuthor
		}
		used, err := count(ctx, tx, `SELECT
			(SELECT COUNT(*) FROM posts WHERE author_id = ?) +
			(SELECT COUNT(*) FROM portfolio_projects WHERE author_id = ?)`, id, id)
		if err != nil {
			return err
		}
		if used > 0 {
			return ErrAuthorInUse
		}
		if err := deleteByID(ctx, tx, "authors", id); err != nil {
			return err
		}
		if isDefault {
			_, err = tx.ExecContext(ctx, `UPDATE authors SET is_default = 1
				WHERE id = (SELECT MIN(id) FROM authors)`)
		}
		return err
	})
}
