package database

import (
	"context"
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/phone-storefront/app/internal/models"
)

var (
	// ErrDuplicateEmail is returned when the users.email unique constraint fails.
	ErrDuplicateEmail = errors.New("database: email already exists")
	// ErrDuplicateUsername is returned when the users.username unique constraint fails.
	ErrDuplicateUsername = errors.New("database: username already exists")
)

const userColumns = "id, username, email, password_hash, created_at"

// CreateUser inserts a new user row. The password must already be hashed.
func (s *Store) CreateUser(ctx context.Context, username, email, passwordHash string) (*models.User, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users(username, email, password_hash) VALUES(?, ?, ?)",
		username, email, passwordHash)
	if err != nil {
		return nil, translateUserConstraint(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	// Re-read so created_at carries the database default.
	return s.GetUserByID(ctx, id)
}

// EmailExists reports whether a user with this email is already registered.
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM users WHERE email = ?)", email).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// GetUserByEmail retrieves a user by their email address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
	return scanUser(row)
}

// GetUserByID retrieves a user by their ID.
func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return nil, err // This will include sql.ErrNoRows if not found
	}
	return user, nil
}

func translateUserConstraint(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.ExtendedCode != sqlite3.ErrConstraintUnique {
		return err
	}
	msg := sqliteErr.Error()
	switch {
	case strings.Contains(msg, "users.email"):
		return ErrDuplicateEmail
	case strings.Contains(msg, "users.username"):
		return ErrDuplicateUsername
	}
	return err
}
