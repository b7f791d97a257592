package mkmtrees

import (
	"context"

	"github.com/ejrshadbolt/mkmtrees-sub001/paging"
)

// ReviewFilter narrows review listings.
type ReviewFilter struct {
	Search       string
	Status       string // "approved" or "pending"
	Rating       int
	ApprovedOnly bool
	SortBy       string
	SortOrder    string
}

var reviewSorts = map[string]string{
	"created_at":    "created_at",
	"rating":        "rating",
	"reviewer_name": "reviewer_name",
}

const reviewColumns = `id, reviewer_name, reviewer_email, reviewer_location, rating, title, content, service_type,
	approved, created_at, updated_at`

func scanReview(s paging.Scanner) (Review, error) {
	var r Review
	err := s.Scan(&r.ID, &r.ReviewerName, &r.ReviewerEmail, &r.ReviewerLocation, &r.Rating, &r.Title, &r.Content,
		&r.ServiceType, &r.Approved, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

// ListReviews returns one page of reviews. Predicates: search, then status,
// then rating.
func (s *Store) ListReviews(ctx context.Context, f ReviewFilter, p paging.Params) (paging.Result[Review], error) {
	var w paging.Filter
	w.Search(f.Search, "reviewer_name", "title", "content")
	switch {
	case f.ApprovedOnly, f.Status == "approved":
		w.Where("approved = 1")
	case f.Status == "pending":
		w.Where("approved = 0")
	}
	w.WhereIf(f.Rating > 0, "rating = ?", f.Rating)
	return paging.Query(ctx, s.db, paging.Spec{
		Select:  reviewColumns,
		From:    "reviews",
		OrderBy: paging.Sort(reviewSorts, f.SortBy, f.SortOrder, "created_at", "desc") + ", id DESC",
	}, &w, p, scanReview)
}

// GetReview returns a review by id.
func (s *Store) GetReview(ctx context.Context, id int64) (Review, error) {
	return scanReview(s.db.QueryRowContext(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = ?`, id))
}

// CreateReview inserts r.
func (s *Store) CreateReview(ctx context.Context, r Review) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO reviews
		(reviewer_name, reviewer_email, reviewer_location, rating, title, content, service_type, approved, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ReviewerName, r.ReviewerEmail, r.ReviewerLocation, r.Rating, r.Title, r.Content, r.ServiceType,
		r.Approved, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateReview writes every column of r.
func (s *Store) UpdateReview(ctx context.Context, r Review) error {
	_, err := s.db.ExecContext(ctx, `UPDATE reviews SET
		reviewer_name = ?, reviewer_email = ?, reviewer_location = ?, rating = ?, title = ?, content = ?,
		service_type = ?, approved = ?, updated_at = ? WHERE id = ?`,
		r.ReviewerName, r.ReviewerEmail, r.ReviewerLocation, r.Rating, r.Title, r.Content, r.ServiceType,
		r.Approved, r.UpdatedAt, r.ID)
	return err
}

// DeleteReview removes a review.
func (s *Store) DeleteReview(ctx context.Context, id int64) error {
	return deleteByID(ctx, s.db, "reviews", id)
}
