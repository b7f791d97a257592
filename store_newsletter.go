package mkmtrees

import (
	"context"
	"database/sql"

	"github.com/ejrshadbolt/mkmtrees-sub001/paging"
)

const subscriberColumns = `id, email, status, subscribed_at, unsubscribed_at, source`

func scanSubscriber(s paging.Scanner) (Subscriber, error) {
	var sub Subscriber
	var unsub sql.NullString
	err := s.Scan(&sub.ID, &sub.Email, &sub.Status, &sub.SubscribedAt, &unsub, &sub.Source)
	sub.UnsubscribedAt = nullString(unsub)
	return sub, err
}

func subscriberFilter(search, status string) *paging.Filter {
	var w paging.Filter
	w.Search(search, "email", "source")
	w.WhereIf(validSubscriberStatus(status), "status = ?", status)
	return &w
}

// ListSubscribers returns one page of newsletter subscribers, newest first.
func (s *Store) ListSubscribers(ctx context.Context, search, status string, p paging.Params) (paging.Result[Subscriber], error) {
	return paging.Query(ctx, s.db, paging.Spec{
		Select:  subscriberColumns,
		From:    "newsletter_subscribers",
		OrderBy: "subscribed_at DESC, id DESC",
	}, subscriberFilter(search, status), p, scanSubscriber)
}

// AllSubscribers returns every subscriber matching the filters, for export.
func (s *Store) AllSubscribers(ctx context.Context, search, status string) ([]Subscriber, error) {
	w := subscriberFilter(search, status)
	rows, err := s.db.QueryContext(ctx, `SELECT `+subscriberColumns+` FROM newsletter_subscribers`+
		w.Clause()+` ORDER BY subscribed_at DESC, id DESC`, w.Args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Subscriber{}
	for rows.Next() {
		sub, err := scanSubscriber(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

// GetSubscriber returns a subscriber by id.
func (s *Store) GetSubscriber(ctx context.Context, id int64) (Subscriber, error) {
	return scanSubscriber(s.db.QueryRowContext(ctx,
		`SELECT `+subscriberColumns+` FROM newsletter_subscribers WHERE id = ?`, id))
}

// GetSubscriberByEmail looks a subscriber up by normalized email.
func (s *Store) GetSubscriberByEmail(ctx context.Context, email string) (Subscriber, error) {
	return scanSubscriber(s.db.QueryRowContext(ctx,
		`SELECT `+subscriberColumns+` FROM newsletter_subscribers WHERE email = ?`, email))
}

// CreateSubscriber inserts an active subscriber.
func (s *Store) CreateSubscriber(ctx context.Context, email, source, ts string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO newsletter_subscribers (email, status, subscribed_at, source)
		VALUES (?, ?, ?, ?)`, email, SubscriberActive, ts, source)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ReactivateSubscriber returns an unsubscribed or bounced row to active.
func (s *Store) ReactivateSubscriber(ctx context.Context, id int64, ts string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE newsletter_subscribers
		SET status = ?, unsubscribed_at = NULL, subscribed_at = ? WHERE id = ?`, SubscriberActive, ts, id)
	return err
}

// SetSubscriberStatus changes status, stamping unsubscribed_at when leaving
// the active state and clearing it when returning.
func (s *Store) SetSubscriberStatus(ctx context.Context, id int64, status, ts string) error {
	var unsub any
	if status != SubscriberActive {
		unsub = ts
	}
	res, err := s.db.ExecContext(ctx, `UPDATE newsletter_subscribers SET status = ?, unsubscribed_at = ? WHERE id = ?`,
		status, unsub, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSubscriber removes a subscriber.
func (s *Store) DeleteSubscriber(ctx context.Context, id int64) error {
	return deleteByID(ctx, s.db, "newsletter_subscribers", id)
}
