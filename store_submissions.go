package mkmtrees

import (
	"context"

	"github.com/ejrshadbolt/mkmtrees-sub001/paging"
)

const submissionColumns = `id, name, email, phone, subject, service_type, message, processed, created_at`

func scanSubmission(s paging.Scanner) (Submission, error) {
	var sub Submission
	err := s.Scan(&sub.ID, &sub.Name, &sub.Email, &sub.Phone, &sub.Subject, &sub.ServiceType, &sub.Message,
		&sub.Processed, &sub.CreatedAt)
	return sub, err
}

// ListSubmissions returns one page of contact submissions, newest first.
// status is "processed" or "unprocessed".
func (s *Store) ListSubmissions(ctx context.Context, search, status string, p paging.Params) (paging.Result[Submission], error) {
	var w paging.Filter
	w.Search(search, "name", "email", "subject", "message")
	switch status {
	case "processed":
		w.Where("processed = 1")
	case "unprocessed":
		w.Where("processed = 0")
	}
	return paging.Query(ctx, s.db, paging.Spec{
		Select:  submissionColumns,
		From:    "submissions",
		OrderBy: "created_at DESC, id DESC",
	}, &w, p, scanSubmission)
}

// GetSubmission returns a submission by id.
func (s *Store) GetSubmission(ctx context.Context, id int64) (Submission, error) {
	return scanSubmission(s.db.QueryRowContext(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = ?`, id))
}

// CreateSubmission inserts a contact-form entry.
func (s *Store) CreateSubmission(ctx context.Context, sub Submission) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO submissions
		(name, email, phone, subject, service_type, message, processed, created_at) VALUES (?, ?, ?, ?, ?, ?, 0, ?)`,
		sub.Name, sub.Email, sub.Phone, sub.Subject, sub.ServiceType, sub.Message, sub.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// SetSubmissionProcessed flips the processed flag.
func (s *Store) SetSubmissionProcessed(ctx context.Context, id int64, processed bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE submissions SET processed = ? WHERE id = ?`, processed, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSubmission removes a submission.
func (s *Store) DeleteSubmission(ctx context.Context, id int64) error {
	return deleteByID(ctx, s.db, "submissions", id)
}
