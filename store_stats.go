package mkmtrees

import "context"

// Stats gathers the dashboard counts in a single round trip plus the latest
// submissions.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM posts),
		(SELECT COUNT(*) FROM posts WHERE published = 1),
		(SELECT COUNT(*) FROM portfolio_projects),
		(SELECT COUNT(*) FROM media),
		(SELECT COUNT(*) FROM reviews),
		(SELECT COUNT(*) FROM reviews WHERE approved = 0),
		(SELECT COUNT(*) FROM submissions),
		(SELECT COUNT(*) FROM submissions WHERE processed = 0),
		(SELECT COUNT(*) FROM newsletter_subscribers WHERE status = 'active'),
		(SELECT COUNT(*) FROM products)`).
		Scan(&st.Posts, &st.PublishedPosts, &st.Projects, &st.Media, &st.Reviews, &st.PendingReviews,
			&st.Submissions, &st.UnprocessedSubs, &st.ActiveSubscribers, &st.Products)
	if err != nil {
		return Stats{}, err
	}
	st.DraftPosts = st.Posts - st.PublishedPosts

	rows, err := s.db.QueryContext(ctx, `SELECT `+submissionColumns+` FROM submissions ORDER BY created_at DESC, id DESC LIMIT 5`)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()
	st.RecentSubmissions = []Submission{}
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return Stats{}, err
		}
		st.RecentSubmissions = append(st.RecentSubmissions, sub)
	}
	return st, rows.Err()
}
