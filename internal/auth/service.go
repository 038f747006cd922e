// Package auth registers users, checks their credentials and resolves the
// logged-in user of a session.
package auth

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-logr/logr"

	"github.com/phone-storefront/app/internal/database"
	"github.com/phone-storefront/app/internal/logging"
	"github.com/phone-storefront/app/internal/models"
	"github.com/phone-storefront/app/internal/session"
)

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("not logged in")
)

// UserStore is the slice of the data store the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// Service registers and authenticates users against a UserStore.
type Service struct {
	users  UserStore
	hasher Hasher
	log    logr.Logger
}

// NewService returns a Service that hashes passwords with hasher.
func NewService(users UserStore, hasher Hasher, logger logr.Logger) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		log:    logger,
	}
}

// Register creates a user with a hashed password.
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, logging.LogAndWrapErr(s.log, "failed to check email", err)
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, logging.LogAndWrapErr(s.log, "failed to hash password", err)
	}

	user, err := s.users.CreateUser(ctx, username, email, hash)
	switch {
	case errors.Is(err, database.ErrDuplicateEmail):
		// lost a race with a concurrent registration
		return nil, ErrDuplicateEmail
	case errors.Is(err, database.ErrDuplicateUsername):
		return nil, ErrDuplicateUsername
	case err != nil:
		return nil, logging.LogAndWrapErr(s.log, "failed to create user", err)
	}

	s.log.V(1).Info("registered user", "user_id", user.ID)
	return user, nil
}

// Authenticate returns the ID of the user owning email if password matches.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (int64, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, logging.DebugAndWrapErr(s.log, "login for unknown email", ErrInvalidCredentials)
	}
	if err != nil {
		return 0, logging.LogAndWrapErr(s.log, "failed to load user", err)
	}

	if err := s.hasher.Verify(user.PasswordHash, password); err != nil {
		if !errors.Is(err, ErrMismatchedPassword) {
			s.log.Error(err, "password verification failed", "user_id", user.ID)
		}
		return 0, logging.DebugAndWrapErr(s.log, "login with wrong password", ErrInvalidCredentials, "user_id", user.ID)
	}

	s.log.V(1).Info("authenticated user", "user_id", user.ID)
	return user.ID, nil
}

// CurrentUser resolves the session identity to a user.
// It returns ErrUnauthenticated if the session is anonymous or the user no longer exists.
func (s *Service) CurrentUser(ctx context.Context, sess *session.Session) (*models.User, error) {
	if sess == nil || !sess.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}

	user, err := s.users.GetUserByID(ctx, *sess.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, logging.DebugAndWrapErr(s.log, "session user no longer exists", ErrUnauthenticated, "user_id", *sess.UserID)
	}
	if err != nil {
		return nil, logging.LogAndWrapErr(s.log, "failed to load current user", err, "user_id", *sess.UserID)
	}
	return user, nil
}
