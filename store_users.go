package mkmtrees

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const userColumns = `id, email, name, password_hash, created_at`

// CreateUser stores an admin account with a bcrypt hash of password.
func (s *Store) CreateUser(ctx context.Context, email, name, password string) (int64, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO users (email, name, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		strings.ToLower(strings.TrimSpace(email)), name, string(hash), timestamp(now()))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetUser returns a user by id.
func (s *Store) GetUser(ctx context.Context, id int64) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

// Authenticate returns the user whose email and password match. Unknown
// emails and wrong passwords both yield ErrNotFound.
func (s *Store) Authenticate(ctx context.Context, email, password string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email))).
		Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, ErrNotFound
	}
	return u, nil
}
