package mkmtrees

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ejrshadbolt/mkmtrees-sub001/paging"
)

// PostFilter narrows post listings. Zero values mean "no filter".
type PostFilter struct {
	Search        string
	Status        string // "published" or "draft"
	Tag           string // tag slug
	AuthorID      int64
	PublishedOnly bool
}

const postColumns = `p.id, p.title, p.slug, p.content, p.excerpt, p.published, p.published_at,
	p.featured_image_id, m.url, p.author_id, a.name, p.meta_title, p.meta_description,
	p.created_by, p.created_at, p.updated_at`

const postFrom = `posts p
	LEFT JOIN media m ON m.id = p.featured_image_id
	LEFT JOIN authors a ON a.id = p.author_id`

func scanPost(s paging.Scanner) (Post, error) {
	var p Post
	var publishedAt, imageURL, authorName sql.NullString
	var imageID, authorID, createdBy sql.NullInt64
	err := s.Scan(&p.ID, &p.Title, &p.Slug, &p.Content, &p.Excerpt, &p.Published, &publishedAt,
		&imageID, &imageURL, &authorID, &authorName, &p.MetaTitle, &p.MetaDescription,
		&createdBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Post{}, err
	}
	p.PublishedAt = nullString(publishedAt)
	p.FeaturedImageID = nullInt(imageID)
	p.FeaturedImageURL = nullString(imageURL)
	p.AuthorID = nullInt(authorID)
	p.AuthorName = nullString(authorName)
	p.CreatedBy = nullInt(createdBy)
	p.Tags = []Tag{}
	return p, nil
}

// ListPosts returns one page of posts. Predicates are appended in a fixed
// order: search, then status, then tag, then author.
func (s *Store) ListPosts(ctx context.Context, f PostFilter, p paging.Params) (paging.Result[Post], error) {
	var w paging.Filter
	w.Search(f.Search, "p.title", "p.excerpt", "p.content")
	switch {
	case f.PublishedOnly:
		w.Where("p.published = 1")
	case f.Status == "published":
		w.Where("p.published = 1")
	case f.Status == "draft":
		w.Where("p.published = 0")
	}
	if tag := strings.TrimSpace(f.Tag); tag != "" {
		w.Where(`EXISTS (SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
			WHERE pt.post_id = p.id AND t.slug = ?)`, Slugify(tag))
	}
	w.WhereIf(f.AuthorID > 0, "p.author_id = ?", f.AuthorID)

	order := "p.created_at DESC, p.id DESC"
	if f.PublishedOnly {
		order = "p.published_at DESC, p.id DESC"
	}
	res, err := paging.Query(ctx, s.db, paging.Spec{Select: postColumns, From: postFrom, OrderBy: order}, &w, p, scanPost)
	if err != nil {
		return res, err
	}
	if err := s.attachTags(ctx, res.Items); err != nil {
		return res, err
	}
	return res, nil
}

// attachTags fills Tags for each post with a single query.
func (s *Store) attachTags(ctx context.Context, posts []Post) error {
	if len(posts) == 0 {
		return nil
	}
	idx := make(map[int64]int, len(posts))
	placeholders := make([]string, len(posts))
	args := make([]any, len(posts))
	for i, p := range posts {
		idx[p.ID] = i
		placeholders[i] = "?"
		args[i] = p.ID
	}
	rows, err := s.db.QueryContext(ctx, `SELECT pt.post_id, t.id, t.name, t.slug
		FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id IN (`+strings.Join(placeholders, ",")+`)
		ORDER BY t.name`, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var postID int64
		var t Tag
		if err := rows.Scan(&postID, &t.ID, &t.Name, &t.Slug); err != nil {
			return err
		}
		i := idx[postID]
		posts[i].Tags = append(posts[i].Tags, t)
	}
	return rows.Err()
}

// GetPost returns a post by id regardless of published status.
func (s *Store) GetPost(ctx context.Context, id int64) (Post, error) {
	return s.getPost(ctx, "p.id = ?", id)
}

// GetPublishedPost returns a published post by slug.
func (s *Store) GetPublishedPost(ctx context.Context, slug string) (Post, error) {
	return s.getPost(ctx, "p.slug = ? AND p.published = 1", slug)
}

func (s *Store) getPost(ctx context.Context, where string, arg any) (Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM `+postFrom+` WHERE `+where, arg)
	p, err := scanPost(row)
	if err != nil {
		return Post{}, err
	}
	posts := []Post{p}
	if err := s.attachTags(ctx, posts); err != nil {
		return Post{}, err
	}
	return posts[0], nil
}

// PostSlugTaken reports whether another post already uses slug.
func (s *Store) PostSlugTaken(ctx context.Context, slug string, excludeID int64) (bool, error) {
	return s.slugTaken(ctx, "posts", "slug", slug, excludeID)
}

// CreatePost inserts p and links tags in one transaction.
func (s *Store) CreatePost(ctx context.Context, p Post, tags []string) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `INSERT INTO posts
			(title, slug, content, excerpt, published, published_at, featured_image_id, author_id,
			 meta_title, meta_description, created_by, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.Title, p.Slug, p.Content, p.Excerpt, p.Published, argString(p.PublishedAt),
			argInt(p.FeaturedImageID), argInt(p.AuthorID), p.MetaTitle, p.MetaDescription,
			argInt(p.CreatedBy), p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return err
		}
		if id, err = res.LastInsertId(); err != nil {
			return err
		}
		return linkTags(ctx, tx, id, tags)
	})
	return id, err
}

// UpdatePost writes every column of p. When tags is non-nil it replaces the
// post's tag links.
func (s *Store) UpdatePost(ctx context.Context, p Post, tags []string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE posts SET
			title = ?, slug = ?, content = ?, excerpt = ?, published = ?, published_at = ?,
			featured_image_id = ?, author_id = ?, meta_title = ?, meta_description = ?, updated_at = ?
			WHERE id = ?`,
			p.Title, p.Slug, p.Content, p.Excerpt, p.Published, argString(p.PublishedAt),
			argInt(p.FeaturedImageID), argInt(p.AuthorID), p.MetaTitle, p.MetaDescription, p.UpdatedAt, p.ID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		if tags == nil {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM post_tags WHERE post_id = ?`, p.ID); err != nil {
			return err
		}
		return linkTags(ctx, tx, p.ID, tags)
	})
}

// linkTags creates each tag if absent, then links it if not already linked,
// one name at a time.
func linkTags(ctx context.Context, tx *sql.Tx, postID int64, names []string) error {
	for _, name := range names {
		name = strings.TrimSpace(name)
		slug := Slugify(name)
		if slug == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO tags (name, slug) VALUES (?, ?)`, name, slug); err != nil {
			return err
		}
		var tagID int64
		if err := tx.QueryRowContext(ctx, `SELECT id FROM tags WHERE slug = ?`, slug).Scan(&tagID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO post_tags (post_id, tag_id) VALUES (?, ?)`, postID, tagID); err != nil {
			return err
		}
	}
	return nil
}

// DeletePost removes a post and its tag links.
func (s *Store) DeletePost(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM post_tags WHERE post_id = ?`, id); err != nil {
			return err
		}
		return deleteByID(ctx, tx, "posts", id)
	})
}

// RecentPosts returns the newest published posts, for pages and the feed.
func (s *Store) RecentPosts(ctx context.Context, limit int) ([]Post, error) {
	res, err := s.ListPosts(ctx, PostFilter{PublishedOnly: true}, paging.Params{Page: 1, Limit: limit})
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

// ListTags returns tags with post counts. With publishedOnly, counts cover
// published posts only and tags without any are omitted.
func (s *Store) ListTags(ctx context.Context, search string, publishedOnly bool, p paging.Params) (paging.Result[Tag], error) {
	countExpr := `(SELECT COUNT(*) FROM post_tags pt WHERE pt.tag_id = t.id)`
	if publishedOnly {
		countExpr = `(SELECT COUNT(*) FROM post_tags pt JOIN posts p ON p.id = pt.post_id
			WHERE pt.tag_id = t.id AND p.published = 1)`
	}
	var w paging.Filter
	w.Search(search, "t.name")
	w.WhereIf(publishedOnly, countExpr+" > 0")
	return paging.Query(ctx, s.db, paging.Spec{
		Select:  "t.id, t.name, t.slug, " + countExpr,
		From:    "tags t",
		OrderBy: "t.name ASC",
	}, &w, p, func(sc paging.Scanner) (Tag, error) {
		var t Tag
		err := sc.Scan(&t.ID, &t.Name, &t.Slug, &t.PostCount)
		return t, err
	})
}

// DeleteTag removes a tag and unlinks it from every post.
func (s *Store) DeleteTag(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM post_tags WHERE tag_id = ?`, id); err != nil {
			return err
		}
		return deleteByID(ctx, tx, "tags", id)
	})
}
